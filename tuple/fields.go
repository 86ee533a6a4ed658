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

import "strings"

// Fields is an ordered list of field names. The position of a name is the
// position of its value in a Tuple.
type Fields []string

// NewFields returns the given names as Fields
func NewFields(names ...string) Fields {
	f := make(Fields, len(names))
	copy(f, names)
	return f
}

// Size returns the number of fields
func (f Fields) Size() int {
	return len(f)
}

// Index returns the position of name, or -1 if name is not present.
func (f Fields) Index(name string) int {
	for i, n := range f {
		if n == name {
			return i
		}
	}
	return -1
}

// Contains reports whether name is one of the fields
func (f Fields) Contains(name string) bool {
	return f.Index(name) >= 0
}

// Select returns the names of sel that are present in f, in the order of sel.
// Callers compare the size of the result with sel to detect missing names.
func (f Fields) Select(sel Fields) Fields {
	result := make(Fields, 0, len(sel))
	for _, name := range sel {
		if f.Contains(name) {
			result = append(result, name)
		}
	}
	return result
}

// Equal reports whether both lists hold the same names in the same order
func (f Fields) Equal(other Fields) bool {
	if len(f) != len(other) {
		return false
	}
	for i := range f {
		if f[i] != other[i] {
			return false
		}
	}
	return true
}

func (f Fields) String() string {
	return "[" + strings.Join(f, ", ") + "]"
}
