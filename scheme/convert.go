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
	"github.com/maxpoint/cascading-avro-go/tuple"
)

// ToInt64 converts a numeric value losslessly to an int64
func ToInt64(v interface{}) (int64, error) {
	l, err := tuple.Int64(v)
	if err != nil {
		return 0, &ValueConversionError{Kind: Long, Value: v, Err: err}
	}
	return l, nil
}

// ToInt32 converts a numeric value losslessly to an int32
func ToInt32(v interface{}) (int32, error) {
	i, err := tuple.Int32(v)
	if err != nil {
		return 0, &ValueConversionError{Kind: Int, Value: v, Err: err}
	}
	return i, nil
}

// ToFloat64 converts a numeric value to a float64
func ToFloat64(v interface{}) (float64, error) {
	d, err := tuple.Float64(v)
	if err != nil {
		return 0, &ValueConversionError{Kind: Double, Value: v, Err: err}
	}
	return d, nil
}

// ToFloat32 converts a numeric value to a float32 when its magnitude fits
func ToFloat32(v interface{}) (float32, error) {
	f, err := tuple.Float32(v)
	if err != nil {
		return 0, &ValueConversionError{Kind: Float, Value: v, Err: err}
	}
	return f, nil
}

// ToText converts strings, byte slices and fmt.Stringer values to a string.
// Any other value is formatted with fmt.Sprint.
func ToText(v interface{}) (string, error) {
	s, err := tuple.AsText(v)
	if err != nil {
		return "", &ValueConversionError{Kind: String, Value: v, Err: err}
	}
	return s, nil
}

// ToBytes returns the bytes of a []byte, string or generic.Fixed value
func ToBytes(v interface{}) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	case interface{ Bytes() []byte }:
		return x.Bytes(), nil
	}
	return nil, &ValueConversionError{Kind: Bytes, Value: v, Err: &tuple.CoercionError{Value: v, Target: "bytes"}}
}
