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

package tuple

import (
	"errors"
	"fmt"
)

// ErrFieldNotFound is returned when a field name is not part of an entry
var ErrFieldNotFound = errors.New("tuple: field not found")

// Tuple is an ordered list of values
type Tuple []interface{}

// Size returns a tuple of n nil values
func Size(n int) Tuple {
	return make(Tuple, n)
}

// Of returns a tuple holding the given values
func Of(values ...interface{}) Tuple {
	t := make(Tuple, len(values))
	copy(t, values)
	return t
}

// TupleEntry is a Tuple whose values can be addressed by field name
type TupleEntry struct {
	fields Fields
	tuple  Tuple
}

// NewEntry pairs fields with a tuple of the same size
func NewEntry(fields Fields, t Tuple) (*TupleEntry, error) {
	if len(fields) != len(t) {
		return nil, fmt.Errorf("tuple: %d fields %v for a tuple of size %d", len(fields), fields, len(t))
	}
	return &TupleEntry{fields: fields, tuple: t}, nil
}

// Fields returns the field names of the entry
func (e *TupleEntry) Fields() Fields {
	return e.fields
}

// Tuple returns the values of the entry
func (e *TupleEntry) Tuple() Tuple {
	return e.tuple
}

// Get returns the value of the named field
func (e *TupleEntry) Get(name string) (interface{}, error) {
	i := e.fields.Index(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s not in %v", ErrFieldNotFound, name, e.fields)
	}
	return e.tuple[i], nil
}

// Object returns the value of the named field, or nil when the field is absent.
func (e *TupleEntry) Object(name string) interface{} {
	v, err := e.Get(name)
	if err != nil {
		return nil
	}
	return v
}

// Select returns the values of the selected fields, in the order of sel
func (e *TupleEntry) Select(sel Fields) (Tuple, error) {
	result := make(Tuple, len(sel))
	for i, name := range sel {
		v, err := e.Get(name)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

// Boolean returns the named field coerced to a bool
func (e *TupleEntry) Boolean(name string) (bool, error) {
	v, err := e.Get(name)
	if err != nil {
		return false, err
	}
	return Bool(v)
}

// Integer returns the named field coerced to an int32
func (e *TupleEntry) Integer(name string) (int32, error) {
	v, err := e.Get(name)
	if err != nil {
		return 0, err
	}
	return Int32(v)
}

// Long returns the named field coerced to an int64
func (e *TupleEntry) Long(name string) (int64, error) {
	v, err := e.Get(name)
	if err != nil {
		return 0, err
	}
	return Int64(v)
}

// Double returns the named field coerced to a float64
func (e *TupleEntry) Double(name string) (float64, error) {
	v, err := e.Get(name)
	if err != nil {
		return 0, err
	}
	return Float64(v)
}

// Float returns the named field coerced to a float32
func (e *TupleEntry) Float(name string) (float32, error) {
	v, err := e.Get(name)
	if err != nil {
		return 0, err
	}
	return Float32(v)
}

func (e *TupleEntry) String() string {
	return fmt.Sprintf("fields: %v tuple: %v", e.fields, e.tuple)
}
