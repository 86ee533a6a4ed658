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
	"encoding/base64"
	"fmt"
	"strconv"
)

// Class is the concrete representation used for the values of a field
type Class int

const (
	// Any keeps values as they are
	Any Class = iota
	// Boolean values are bool
	Boolean
	// Binary values are []byte
	Binary
	// Double values are float64
	Double
	// Float values are float32
	Float
	// Integer values are int32
	Integer
	// Long values are int64
	Long
	// Text values are string
	Text
)

var classNames = map[Class]string{
	Any:     "any",
	Boolean: "boolean",
	Binary:  "binary",
	Double:  "double",
	Float:   "float",
	Integer: "integer",
	Long:    "long",
	Text:    "text",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return "Class(" + strconv.Itoa(int(c)) + ")"
}

// Coerce converts v to the representation of the class. nil stays nil.
func (c Class) Coerce(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch c {
	case Boolean:
		return Bool(v)
	case Binary:
		switch x := v.(type) {
		case []byte:
			return x, nil
		case string:
			return []byte(x), nil
		}
		return nil, &CoercionError{Value: v, Target: c.String()}
	case Double:
		return Float64(v)
	case Float:
		return Float32(v)
	case Integer:
		return Int32(v)
	case Long:
		return Int64(v)
	case Text:
		return AsText(v)
	}
	return v, nil
}

// Parse reads a value of the class from its text form. The empty string
// parses to nil for every class.
func (c Class) Parse(s string) (interface{}, error) {
	if s == "" {
		return nil, nil
	}
	switch c {
	case Boolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, &CoercionError{Value: s, Target: c.String(), Reason: err.Error()}
		}
		return b, nil
	case Binary:
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, &CoercionError{Value: s, Target: c.String(), Reason: err.Error()}
		}
		return b, nil
	case Double:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &CoercionError{Value: s, Target: c.String(), Reason: err.Error()}
		}
		return f, nil
	case Float:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, &CoercionError{Value: s, Target: c.String(), Reason: err.Error()}
		}
		return float32(f), nil
	case Integer:
		i, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, &CoercionError{Value: s, Target: c.String(), Reason: err.Error()}
		}
		return int32(i), nil
	case Long:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, &CoercionError{Value: s, Target: c.String(), Reason: err.Error()}
		}
		return i, nil
	}
	return s, nil
}

// Format renders v in the text form read back by Parse. nil renders as the
// empty string.
func (c Class) Format(v interface{}) (string, error) {
	if v == nil {
		return "", nil
	}
	cv, err := c.Coerce(v)
	if err != nil {
		return "", err
	}
	switch x := cv.(type) {
	case bool:
		return strconv.FormatBool(x), nil
	case []byte:
		return base64.StdEncoding.EncodeToString(x), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case string:
		return x, nil
	}
	return fmt.Sprint(cv), nil
}
