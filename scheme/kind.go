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
	"strings"

	"github.com/hamba/avro/v2"
	"github.com/maxpoint/cascading-avro-go/generic"
)

// Kind is the logical type of a record field
type Kind int

const (
	// Boolean is an avro boolean
	Boolean Kind = iota
	// Bytes is a variable length byte sequence
	Bytes
	// Double is a 64 bit float
	Double
	// Fixed is a byte sequence of a declared length
	Fixed
	// Float is a 32 bit float
	Float
	// Int is a 32 bit integer
	Int
	// Long is a 64 bit integer
	Long
	// Null holds no value
	Null
	// String is UTF-8 text
	String
	// Array is a list of items of one schema
	Array
	// Map is a string keyed map of values of one schema
	Map
	// Union is a choice between schemas
	Union
	// Enum is a named symbol set; no scheme accepts it
	Enum
	// Record is a nested record; no scheme accepts it
	Record
)

var kindNames = [...]string{
	Boolean: "BOOLEAN",
	Bytes:   "BYTES",
	Double:  "DOUBLE",
	Fixed:   "FIXED",
	Float:   "FLOAT",
	Int:     "INT",
	Long:    "LONG",
	Null:    "NULL",
	String:  "STRING",
	Array:   "ARRAY",
	Map:     "MAP",
	Union:   "UNION",
	Enum:    "ENUM",
	Record:  "RECORD",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("unknown kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a kind name, case insensitively
func (k *Kind) UnmarshalText(b []byte) error {
	name := strings.ToUpper(string(b))
	for i, n := range kindNames {
		if n == name {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown kind %q", string(b))
}

// KindOf returns the kind of an avro schema. Named references are
// resolved first.
func KindOf(s avro.Schema) Kind {
	switch generic.Deref(s).Type() {
	case avro.Boolean:
		return Boolean
	case avro.Bytes:
		return Bytes
	case avro.Double:
		return Double
	case avro.Fixed:
		return Fixed
	case avro.Float:
		return Float
	case avro.Int:
		return Int
	case avro.Long:
		return Long
	case avro.Null:
		return Null
	case avro.String:
		return String
	case avro.Array:
		return Array
	case avro.Map:
		return Map
	case avro.Union:
		return Union
	case avro.Enum:
		return Enum
	}
	return Record
}

// KindSet is a set of kinds
type KindSet uint32

// NewKindSet returns the set of the given kinds
func NewKindSet(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s |= 1 << uint(k)
	}
	return s
}

// Contains reports whether k is in the set
func (s KindSet) Contains(k Kind) bool {
	return k >= 0 && s&(1<<uint(k)) != 0
}

// Kinds returns the members of the set in declaration order
func (s KindSet) Kinds() []Kind {
	var result []Kind
	for k := Kind(0); int(k) < len(kindNames); k++ {
		if s.Contains(k) {
			result = append(result, k)
		}
	}
	return result
}

func (s KindSet) String() string {
	kinds := s.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return "{" + strings.Join(names, ", ") + "}"
}
