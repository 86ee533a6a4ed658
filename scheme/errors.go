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
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/maxpoint/cascading-avro-go/tuple"
)

// SchemaShapeError is returned when a scheme is built from a schema whose
// root is not a record.
type SchemaShapeError struct {
	Type avro.Type
}

func (e *SchemaShapeError) Error() string {
	return fmt.Sprintf("base schema must be of type record, found %s", e.Type)
}

// UnsupportedFieldTypeError is returned when a field has a kind the scheme
// does not handle.
type UnsupportedFieldTypeError struct {
	Field string
	Kind  Kind
}

func (e *UnsupportedFieldTypeError) Error() string {
	return fmt.Sprintf("don't know how to handle field %s of type %s", e.Field, e.Kind)
}

// UnsupportedUnionShapeError is returned for unions other than a null and
// exactly one other branch.
type UnsupportedUnionShapeError struct {
	Field  string
	Schema string
}

func (e *UnsupportedUnionShapeError) Error() string {
	return fmt.Sprintf("field %s: only unions of null and one other type are supported, found %s", e.Field, e.Schema)
}

// NonNullableFieldError is returned when a nil value is written to a field
// that is not nullable.
type NonNullableFieldError struct {
	Field string
}

func (e *NonNullableFieldError) Error() string {
	return fmt.Sprintf("field %s is not nullable", e.Field)
}

// UnresolvableValueClassError is returned when no value class represents
// the kind.
type UnresolvableValueClassError struct {
	Field string
	Kind  Kind
}

func (e *UnresolvableValueClassError) Error() string {
	return fmt.Sprintf("can't resolve field %s of type %s to a value class", e.Field, e.Kind)
}

// FieldProjectionMismatchError is returned when renamed fields are not all
// sink fields of the wrapped scheme.
type FieldProjectionMismatchError struct {
	To        tuple.Fields
	Available tuple.Fields
}

func (e *FieldProjectionMismatchError) Error() string {
	return fmt.Sprintf("can't use %v with %v", e.To, e.Available)
}

// FixedLengthMismatchError is returned when a value written to a fixed field
// does not have the declared length.
type FixedLengthMismatchError struct {
	Field    string
	Expected int
	Actual   int
}

func (e *FixedLengthMismatchError) Error() string {
	return fmt.Sprintf("field %s is fixed to %d bytes, got %d", e.Field, e.Expected, e.Actual)
}

// ValueConversionError is returned when a value cannot be represented as the
// kind of its field.
type ValueConversionError struct {
	Field string
	Kind  Kind
	Value interface{}
	Err   error
}

func (e *ValueConversionError) Error() string {
	return fmt.Sprintf("field %s: can't convert %T to %s: %v", e.Field, e.Value, e.Kind, e.Err)
}

func (e *ValueConversionError) Unwrap() error {
	return e.Err
}
