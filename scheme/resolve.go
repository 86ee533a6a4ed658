/**
 * Copyright 2024 MaxPoint Interactive, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package scheme

import (
	"github.com/hamba/avro/v2"
	"github.com/maxpoint/cascading-avro-go/cache"
	"github.com/maxpoint/cascading-avro-go/generic"
	"github.com/maxpoint/cascading-avro-go/tuple"
)

// FieldType describes how the values of one record field are converted
type FieldType struct {
	Name     string
	Kind     Kind
	Nullable bool
	Pos      int
	// Schema is the declared field schema, union included
	Schema avro.Schema
}

// Branch returns the non-null schema of a nullable union, or the field
// schema itself.
func (t FieldType) Branch() avro.Schema {
	if u, ok := generic.Deref(t.Schema).(*avro.UnionSchema); ok {
		for _, s := range u.Types() {
			if generic.Deref(s).Type() != avro.Null {
				return generic.Deref(s)
			}
		}
	}
	return generic.Deref(t.Schema)
}

// Resolution is the ordered list of resolved fields of a record schema
type Resolution struct {
	schema *avro.RecordSchema
	types  []FieldType
	index  map[string]int
}

// Schema returns the resolved record schema
func (r *Resolution) Schema() *avro.RecordSchema {
	return r.schema
}

// Names returns the field names in declaration order
func (r *Resolution) Names() []string {
	names := make([]string, len(r.types))
	for i, t := range r.types {
		names[i] = t.Name
	}
	return names
}

// Types returns the resolved fields in declaration order
func (r *Resolution) Types() []FieldType {
	return r.types
}

// Lookup returns the resolved field of the given name
func (r *Resolution) Lookup(name string) (FieldType, bool) {
	i, ok := r.index[name]
	if !ok {
		return FieldType{}, false
	}
	return r.types[i], true
}

// Len returns the number of fields
func (r *Resolution) Len() int {
	return len(r.types)
}

// Fields returns the tuple field names of the resolution
func (r *Resolution) Fields() tuple.Fields {
	return tuple.NewFields(r.Names()...)
}

// Resolve maps each field of a record schema to its FieldType. Field kinds
// must be in allowed, where unions count as Union. A union must consist of
// null and one other allowed kind and resolves to that kind.
func Resolve(schema avro.Schema, allowed KindSet) (*Resolution, error) {
	rs, ok := generic.Deref(schema).(*avro.RecordSchema)
	if !ok {
		return nil, &SchemaShapeError{Type: generic.Deref(schema).Type()}
	}
	fields := rs.Fields()
	r := &Resolution{
		schema: rs,
		types:  make([]FieldType, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for pos, f := range fields {
		t, err := resolveField(f, pos, allowed)
		if err != nil {
			return nil, err
		}
		r.index[t.Name] = len(r.types)
		r.types = append(r.types, t)
	}
	return r, nil
}

func resolveField(f *avro.Field, pos int, allowed KindSet) (FieldType, error) {
	kind := KindOf(f.Type())
	if !allowed.Contains(kind) {
		return FieldType{}, &UnsupportedFieldTypeError{Field: f.Name(), Kind: kind}
	}
	t := FieldType{
		Name:     f.Name(),
		Kind:     kind,
		Nullable: kind == Null,
		Pos:      pos,
		Schema:   f.Type(),
	}
	if kind != Union {
		return t, nil
	}
	branch, err := resolveUnion(f, generic.Deref(f.Type()).(*avro.UnionSchema))
	if err != nil {
		return FieldType{}, err
	}
	if branch == Union || !allowed.Contains(branch) {
		return FieldType{}, &UnsupportedFieldTypeError{Field: f.Name(), Kind: branch}
	}
	t.Kind = branch
	t.Nullable = true
	return t, nil
}

func resolveUnion(f *avro.Field, u *avro.UnionSchema) (Kind, error) {
	types := u.Types()
	if len(types) == 2 {
		k0, k1 := KindOf(types[0]), KindOf(types[1])
		if k0 == Null && k1 != Null {
			return k1, nil
		}
		if k1 == Null && k0 != Null {
			return k0, nil
		}
	}
	return 0, &UnsupportedUnionShapeError{Field: f.Name(), Schema: u.String()}
}

// InferClass returns the value class that represents values of t
func InferClass(t FieldType) (tuple.Class, error) {
	switch t.Kind {
	case Boolean:
		return tuple.Boolean, nil
	case Bytes, Fixed:
		return tuple.Binary, nil
	case Double:
		return tuple.Double, nil
	case Float:
		return tuple.Float, nil
	case Int:
		return tuple.Integer, nil
	case Long:
		return tuple.Long, nil
	case Null:
		return tuple.Any, nil
	case String:
		return tuple.Text, nil
	}
	return tuple.Any, &UnresolvableValueClassError{Field: t.Name, Kind: t.Kind}
}

// InferClasses returns the value class of each type, in order
func InferClasses(types []FieldType) ([]tuple.Class, error) {
	result := make([]tuple.Class, len(types))
	for i, t := range types {
		c, err := InferClass(t)
		if err != nil {
			return nil, err
		}
		result[i] = c
	}
	return result, nil
}

const schemaCacheCapacity = 1000

var parsedSchemas, _ = cache.NewLRU[string, avro.Schema](schemaCacheCapacity)

// ParseSchema parses schema text. Parsed schemas are cached by text; each
// parse uses its own name cache so that unrelated schemas may reuse names.
func ParseSchema(text string) (avro.Schema, error) {
	return parsedSchemas.GetOrLoad(text, func(text string) (avro.Schema, error) {
		return avro.ParseWithCache(text, "", &avro.SchemaCache{})
	})
}

// ParseRecordSchema parses schema text that must describe a record
func ParseRecordSchema(text string) (*avro.RecordSchema, error) {
	s, err := ParseSchema(text)
	if err != nil {
		return nil, err
	}
	rs, ok := generic.Deref(s).(*avro.RecordSchema)
	if !ok {
		return nil, &SchemaShapeError{Type: s.Type()}
	}
	return rs, nil
}
