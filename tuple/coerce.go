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
	"fmt"
	"math"
)

// CoercionError is returned when a value has no lossless representation in
// the requested type.
type CoercionError struct {
	Value  interface{}
	Target string
	Reason string
}

func (e *CoercionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("cannot convert %v (%T) to %s", e.Value, e.Value, e.Target)
	}
	return fmt.Sprintf("cannot convert %v (%T) to %s: %s", e.Value, e.Value, e.Target, e.Reason)
}

// Bool converts v to a bool. Only bool values are accepted.
func Bool(v interface{}) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case *bool:
		if x != nil {
			return *x, nil
		}
	}
	return false, &CoercionError{Value: v, Target: "boolean"}
}

// Int64 converts any integral or float value to an int64 when the value is
// integral and fits.
func Int64(v interface{}) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return uint64ToInt64(v, uint64(x))
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return uint64ToInt64(v, x)
	case float32:
		return floatToInt64(v, float64(x))
	case float64:
		return floatToInt64(v, x)
	}
	return 0, &CoercionError{Value: v, Target: "long"}
}

func uint64ToInt64(v interface{}, x uint64) (int64, error) {
	if x > math.MaxInt64 {
		return 0, &CoercionError{Value: v, Target: "long", Reason: "out of range"}
	}
	return int64(x), nil
}

func floatToInt64(v interface{}, x float64) (int64, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
		return 0, &CoercionError{Value: v, Target: "long", Reason: "not integral"}
	}
	// 2^63 is the first float64 above MaxInt64
	if x < math.MinInt64 || x >= math.MaxInt64 {
		return 0, &CoercionError{Value: v, Target: "long", Reason: "out of range"}
	}
	return int64(x), nil
}

// Int32 converts v to an int32 when the value is integral and fits.
func Int32(v interface{}) (int32, error) {
	i, err := Int64(v)
	if err != nil {
		return 0, &CoercionError{Value: v, Target: "int", Reason: reason(err)}
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		return 0, &CoercionError{Value: v, Target: "int", Reason: "out of range"}
	}
	return int32(i), nil
}

// Float64 converts any numeric value to a float64
func Float64(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	}
	i, err := Int64(v)
	if err != nil {
		if u, ok := v.(uint64); ok {
			return float64(u), nil
		}
		if u, ok := v.(uint); ok {
			return float64(u), nil
		}
		return 0, &CoercionError{Value: v, Target: "double"}
	}
	return float64(i), nil
}

// Float32 converts any numeric value to a float32 when its magnitude fits.
func Float32(v interface{}) (float32, error) {
	if x, ok := v.(float32); ok {
		return x, nil
	}
	f, err := Float64(v)
	if err != nil {
		return 0, &CoercionError{Value: v, Target: "float"}
	}
	if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
		return 0, &CoercionError{Value: v, Target: "float", Reason: "out of range"}
	}
	return float32(f), nil
}

// AsText converts v to a string. Byte slices are taken as UTF-8 and any
// fmt.Stringer is rendered with its String method.
func AsText(v interface{}) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case fmt.Stringer:
		return x.String(), nil
	case nil:
		return "", &CoercionError{Value: v, Target: "string"}
	}
	return fmt.Sprint(v), nil
}

func reason(err error) string {
	if ce, ok := err.(*CoercionError); ok {
		return ce.Reason
	}
	return err.Error()
}
