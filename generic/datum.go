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

package generic

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/hamba/avro/v2"
	"github.com/maxpoint/cascading-avro-go/tuple"
)

// Deref resolves named references to the schema they name
func Deref(s avro.Schema) avro.Schema {
	for {
		ref, ok := s.(*avro.RefSchema)
		if !ok {
			return s
		}
		s = ref.Schema()
	}
}

// ReadRecord decodes one record of schema from r
func ReadRecord(r *avro.Reader, schema *avro.RecordSchema) (*Record, error) {
	v := readDatum(r, schema)
	if r.Error != nil {
		return nil, r.Error
	}
	return v.(*Record), nil
}

// ReadDatum decodes one value of schema from r.
//
// Values decode as nil, bool, int32, int64, float32, float64, []byte,
// string, *Fixed, []interface{}, map[string]interface{} and *Record.
// Enum symbols decode as their string name.
func ReadDatum(r *avro.Reader, schema avro.Schema) (interface{}, error) {
	v := readDatum(r, schema)
	if r.Error != nil {
		return nil, r.Error
	}
	return v, nil
}

func readDatum(r *avro.Reader, schema avro.Schema) interface{} {
	if r.Error != nil {
		return nil
	}
	switch s := Deref(schema).(type) {
	case *avro.NullSchema:
		return nil
	case *avro.PrimitiveSchema:
		switch s.Type() {
		case avro.Null:
			return nil
		case avro.Boolean:
			return r.ReadBool()
		case avro.Int:
			return r.ReadInt()
		case avro.Long:
			return r.ReadLong()
		case avro.Float:
			return r.ReadFloat()
		case avro.Double:
			return r.ReadDouble()
		case avro.Bytes:
			return r.ReadBytes()
		case avro.String:
			return r.ReadString()
		}
	case *avro.FixedSchema:
		b := make([]byte, s.Size())
		r.Read(b)
		return &Fixed{schema: s, bytes: b}
	case *avro.EnumSchema:
		i := int(r.ReadInt())
		symbols := s.Symbols()
		if i < 0 || i >= len(symbols) {
			r.ReportError("read enum", fmt.Sprintf("symbol index %d out of range for %s", i, s.FullName()))
			return nil
		}
		return symbols[i]
	case *avro.ArraySchema:
		var items []interface{}
		for {
			n, _ := r.ReadBlockHeader()
			if n == 0 || r.Error != nil {
				break
			}
			for i := int64(0); i < n && r.Error == nil; i++ {
				items = append(items, readDatum(r, s.Items()))
			}
		}
		if items == nil {
			items = []interface{}{}
		}
		return items
	case *avro.MapSchema:
		m := make(map[string]interface{})
		for {
			n, _ := r.ReadBlockHeader()
			if n == 0 || r.Error != nil {
				break
			}
			for i := int64(0); i < n && r.Error == nil; i++ {
				k := r.ReadString()
				m[k] = readDatum(r, s.Values())
			}
		}
		return m
	case *avro.UnionSchema:
		i := int(r.ReadLong())
		types := s.Types()
		if i < 0 || i >= len(types) {
			r.ReportError("read union", fmt.Sprintf("branch index %d out of range", i))
			return nil
		}
		return readDatum(r, types[i])
	case *avro.RecordSchema:
		rec := NewRecord(nil, s)
		for i, f := range s.Fields() {
			rec.values[i] = readDatum(r, f.Type())
		}
		return rec
	}
	r.ReportError("read", "unsupported schema "+schema.String())
	return nil
}

// WriteDatum encodes v as a value of schema to w.
//
// Numbers are coerced losslessly to the schema's numeric type. Records may
// be given as IndexedRecord or map[string]interface{}, arrays as any slice
// and maps as any map with string keys.
func WriteDatum(w *avro.Writer, schema avro.Schema, v interface{}) error {
	if err := writeDatum(w, schema, v); err != nil {
		return err
	}
	return w.Error
}

func writeDatum(w *avro.Writer, schema avro.Schema, v interface{}) error {
	switch s := Deref(schema).(type) {
	case *avro.NullSchema:
		return writePrimitive(w, avro.Null, v)
	case *avro.PrimitiveSchema:
		return writePrimitive(w, s.Type(), v)
	case *avro.FixedSchema:
		var b []byte
		switch x := v.(type) {
		case *Fixed:
			b = x.bytes
		case []byte:
			b = x
		default:
			return fmt.Errorf("fixed %s: unsupported value %T", s.FullName(), v)
		}
		if len(b) != s.Size() {
			return fmt.Errorf("fixed %s holds %d bytes, got %d", s.FullName(), s.Size(), len(b))
		}
		_, err := w.Write(b)
		return err
	case *avro.EnumSchema:
		sym, err := tuple.AsText(v)
		if err != nil {
			return err
		}
		for i, symbol := range s.Symbols() {
			if symbol == sym {
				w.WriteInt(int32(i))
				return nil
			}
		}
		return fmt.Errorf("enum %s: unknown symbol %q", s.FullName(), sym)
	case *avro.ArraySchema:
		return writeArray(w, s, v)
	case *avro.MapSchema:
		return writeMap(w, s, v)
	case *avro.UnionSchema:
		i, err := unionBranch(s, v)
		if err != nil {
			return err
		}
		w.WriteLong(int64(i))
		return writeDatum(w, s.Types()[i], v)
	case *avro.RecordSchema:
		return writeRecord(w, s, v)
	}
	return fmt.Errorf("unsupported schema %s", schema.String())
}

func writePrimitive(w *avro.Writer, typ avro.Type, v interface{}) error {
	if typ == avro.Null {
		if v != nil {
			return fmt.Errorf("null: unexpected value %T", v)
		}
		return nil
	}
	if v == nil {
		return fmt.Errorf("%s: unexpected nil", typ)
	}
	switch typ {
	case avro.Boolean:
		b, err := tuple.Bool(v)
		if err != nil {
			return err
		}
		w.WriteBool(b)
	case avro.Int:
		i, err := tuple.Int32(v)
		if err != nil {
			return err
		}
		w.WriteInt(i)
	case avro.Long:
		l, err := tuple.Int64(v)
		if err != nil {
			return err
		}
		w.WriteLong(l)
	case avro.Float:
		f, err := tuple.Float32(v)
		if err != nil {
			return err
		}
		w.WriteFloat(f)
	case avro.Double:
		d, err := tuple.Float64(v)
		if err != nil {
			return err
		}
		w.WriteDouble(d)
	case avro.Bytes:
		switch x := v.(type) {
		case []byte:
			w.WriteBytes(x)
		case string:
			w.WriteBytes([]byte(x))
		default:
			return &tuple.CoercionError{Value: v, Target: "bytes"}
		}
	case avro.String:
		s, err := tuple.AsText(v)
		if err != nil {
			return err
		}
		w.WriteString(s)
	default:
		return fmt.Errorf("unsupported primitive type %s", typ)
	}
	return nil
}

func writeArray(w *avro.Writer, s *avro.ArraySchema, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("array: unsupported value %T", v)
	}
	if n := rv.Len(); n > 0 {
		w.WriteLong(int64(n))
		for i := 0; i < n; i++ {
			if err := writeDatum(w, s.Items(), rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("array item %d: %w", i, err)
			}
		}
	}
	w.WriteLong(0)
	return nil
}

func writeMap(w *avro.Writer, s *avro.MapSchema, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("map: unsupported value %T", v)
	}
	if n := rv.Len(); n > 0 {
		w.WriteLong(int64(n))
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			w.WriteString(k)
			if err := writeDatum(w, s.Values(), iter.Value().Interface()); err != nil {
				return fmt.Errorf("map value %q: %w", k, err)
			}
		}
	}
	w.WriteLong(0)
	return nil
}

func writeRecord(w *avro.Writer, s *avro.RecordSchema, v interface{}) error {
	switch x := v.(type) {
	case IndexedRecord:
		if x.Schema().FullName() != s.FullName() {
			return fmt.Errorf("record %s: got a record of %s", s.FullName(), x.Schema().FullName())
		}
		for i, f := range s.Fields() {
			if err := writeDatum(w, f.Type(), x.Get(i)); err != nil {
				return fmt.Errorf("field %s: %w", f.Name(), err)
			}
		}
		return nil
	case map[string]interface{}:
		for _, f := range s.Fields() {
			fv, ok := x[f.Name()]
			if !ok && f.HasDefault() {
				fv = f.Default()
			}
			if err := writeDatum(w, f.Type(), fv); err != nil {
				return fmt.Errorf("field %s: %w", f.Name(), err)
			}
		}
		return nil
	}
	return fmt.Errorf("record %s: unsupported value %T", s.FullName(), v)
}

var errNoBranch = errors.New("no union branch accepts the value")

// unionBranch picks the branch for v: the null branch for nil, otherwise the
// first branch whose natural representation matches v, otherwise the first
// non-null branch.
func unionBranch(s *avro.UnionSchema, v interface{}) (int, error) {
	types := s.Types()
	fallback := -1
	for i, t := range types {
		typ := Deref(t).Type()
		if v == nil {
			if typ == avro.Null {
				return i, nil
			}
			continue
		}
		if typ == avro.Null {
			continue
		}
		if matches(Deref(t), v) {
			return i, nil
		}
		if fallback < 0 {
			fallback = i
		}
	}
	if fallback < 0 {
		return 0, fmt.Errorf("%w: %T for %s", errNoBranch, v, s.String())
	}
	return fallback, nil
}

func matches(s avro.Schema, v interface{}) bool {
	switch s.Type() {
	case avro.Boolean:
		_, ok := v.(bool)
		return ok
	case avro.Int:
		_, ok := v.(int32)
		return ok
	case avro.Long:
		switch v.(type) {
		case int64, int:
			return true
		}
	case avro.Float:
		_, ok := v.(float32)
		return ok
	case avro.Double:
		_, ok := v.(float64)
		return ok
	case avro.Bytes:
		_, ok := v.([]byte)
		return ok
	case avro.String, avro.Enum:
		_, ok := v.(string)
		return ok
	case avro.Fixed:
		f, ok := v.(*Fixed)
		return ok && f.schema.FullName() == s.(*avro.FixedSchema).FullName()
	case avro.Array:
		_, ok := v.([]interface{})
		return ok
	case avro.Map:
		_, ok := v.(map[string]interface{})
		return ok
	case avro.Record:
		switch x := v.(type) {
		case IndexedRecord:
			return x.Schema().FullName() == s.(*avro.RecordSchema).FullName()
		case map[string]interface{}:
			return true
		}
	}
	return false
}
