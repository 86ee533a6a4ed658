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

// Package generic holds a schema-driven, reflection-free representation of
// Avro data: records addressed by field position and fixed-size byte values.
package generic

import (
	"fmt"
	"strings"

	"github.com/hamba/avro/v2"
)

// IndexedRecord is a record whose field values are addressed by position
type IndexedRecord interface {
	Schema() *avro.RecordSchema
	Get(pos int) interface{}
	Put(pos int, v interface{})
}

// Record is the generic IndexedRecord implementation
type Record struct {
	schema *avro.RecordSchema
	values []interface{}
}

// NewRecord returns a record of the given schema with all fields nil.
// When reuse already carries schema it is returned instead of allocating.
func NewRecord(reuse *Record, schema *avro.RecordSchema) *Record {
	if reuse != nil && reuse.schema == schema {
		return reuse
	}
	return &Record{
		schema: schema,
		values: make([]interface{}, len(schema.Fields())),
	}
}

// Schema returns the record schema
func (r *Record) Schema() *avro.RecordSchema {
	return r.schema
}

// Get returns the value at pos
func (r *Record) Get(pos int) interface{} {
	return r.values[pos]
}

// Put sets the value at pos
func (r *Record) Put(pos int, v interface{}) {
	r.values[pos] = v
}

// Lookup returns the value of the named field
func (r *Record) Lookup(name string) (interface{}, bool) {
	pos := FieldPos(r.schema, name)
	if pos < 0 {
		return nil, false
	}
	return r.values[pos], true
}

func (r *Record) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range r.schema.Fields() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q: %v", f.Name(), r.values[i])
	}
	b.WriteByte('}')
	return b.String()
}

// FieldPos returns the position of the named field in schema, or -1
func FieldPos(schema *avro.RecordSchema, name string) int {
	for i, f := range schema.Fields() {
		if f.Name() == name {
			return i
		}
	}
	return -1
}

// Fixed is a value of an Avro fixed type
type Fixed struct {
	schema *avro.FixedSchema
	bytes  []byte
}

// NewFixed copies b into a value of the given fixed schema. The length of b
// must equal the declared size.
func NewFixed(schema *avro.FixedSchema, b []byte) (*Fixed, error) {
	if len(b) != schema.Size() {
		return nil, fmt.Errorf("fixed %s holds %d bytes, got %d", schema.FullName(), schema.Size(), len(b))
	}
	c := make([]byte, len(b))
	copy(c, b)
	return &Fixed{schema: schema, bytes: c}, nil
}

// Schema returns the fixed schema
func (f *Fixed) Schema() *avro.FixedSchema {
	return f.schema
}

// Bytes returns the value. The slice is shared with f.
func (f *Fixed) Bytes() []byte {
	return f.bytes
}

func (f *Fixed) String() string {
	return fmt.Sprintf("%x", f.bytes)
}

// Project converts rec to the reader schema by field name. Fields missing
// from rec take the reader field's default, or nil. Values are promoted the
// way Avro schema resolution allows: int to long, float or double, long to
// float or double, float to double, and string to and from bytes.
func Project(rec IndexedRecord, reader *avro.RecordSchema) *Record {
	if rec.Schema() == reader {
		if r, ok := rec.(*Record); ok {
			return r
		}
	}
	out := NewRecord(nil, reader)
	writer := rec.Schema()
	for i, f := range reader.Fields() {
		if pos := FieldPos(writer, f.Name()); pos >= 0 {
			out.values[i] = Promote(rec.Get(pos), f.Type())
			continue
		}
		if f.HasDefault() {
			out.values[i] = f.Default()
		}
	}
	return out
}

// Promote widens v to the type schema reads it as. Values that need no
// promotion, or cannot be promoted, are returned unchanged.
func Promote(v interface{}, schema avro.Schema) interface{} {
	if v == nil {
		return nil
	}
	switch s := Deref(schema).(type) {
	case *avro.PrimitiveSchema:
		if p, ok := promote(v, s.Type()); ok {
			return p
		}
	case *avro.UnionSchema:
		var target avro.Type
		for _, t := range s.Types() {
			typ := Deref(t).Type()
			if _, ok := promote(v, typ); !ok {
				continue
			}
			if natural(v) == typ {
				return v
			}
			if target == "" {
				target = typ
			}
		}
		if target != "" {
			p, _ := promote(v, target)
			return p
		}
	}
	return v
}

// natural is the Avro type v decodes from.
func natural(v interface{}) avro.Type {
	switch v.(type) {
	case bool:
		return avro.Boolean
	case int32:
		return avro.Int
	case int64:
		return avro.Long
	case float32:
		return avro.Float
	case float64:
		return avro.Double
	case []byte:
		return avro.Bytes
	case string:
		return avro.String
	}
	return ""
}

func promote(v interface{}, typ avro.Type) (interface{}, bool) {
	switch x := v.(type) {
	case int32:
		switch typ {
		case avro.Int:
			return x, true
		case avro.Long:
			return int64(x), true
		case avro.Float:
			return float32(x), true
		case avro.Double:
			return float64(x), true
		}
	case int64:
		switch typ {
		case avro.Long:
			return x, true
		case avro.Float:
			return float32(x), true
		case avro.Double:
			return float64(x), true
		}
	case float32:
		switch typ {
		case avro.Float:
			return x, true
		case avro.Double:
			return float64(x), true
		}
	case string:
		switch typ {
		case avro.String:
			return x, true
		case avro.Bytes:
			return []byte(x), true
		}
	case []byte:
		switch typ {
		case avro.Bytes:
			return x, true
		case avro.String:
			return string(x), true
		}
	}
	return nil, false
}
