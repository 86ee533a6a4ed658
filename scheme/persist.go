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

	"github.com/bytedance/sonic"
)

// FieldState is the persisted form of a FieldType. The field schema is not
// stored; it is taken from the record schema by position on restore.
type FieldState struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	Nullable bool   `json:"nullable"`
	Pos      int    `json:"pos"`
}

// State is the persisted form of a scheme: its schema text, resolved
// fields and scheme specific options.
type State struct {
	Type    string            `json:"type"`
	Schema  string            `json:"schema"`
	Fields  []FieldState      `json:"fields"`
	Options map[string]string `json:"options,omitempty"`
}

// State returns the persisted form of the resolution
func (r *Resolution) State(typ string) State {
	fields := make([]FieldState, len(r.types))
	for i, t := range r.types {
		fields[i] = FieldState{Name: t.Name, Kind: t.Kind, Nullable: t.Nullable, Pos: t.Pos}
	}
	return State{Type: typ, Schema: r.schema.String(), Fields: fields}
}

// Restore rebuilds the resolution described by s
func Restore(s State) (*Resolution, error) {
	rs, err := ParseRecordSchema(s.Schema)
	if err != nil {
		return nil, fmt.Errorf("restoring scheme: %w", err)
	}
	schemaFields := rs.Fields()
	r := &Resolution{
		schema: rs,
		types:  make([]FieldType, len(s.Fields)),
		index:  make(map[string]int, len(s.Fields)),
	}
	for i, f := range s.Fields {
		if f.Pos < 0 || f.Pos >= len(schemaFields) || schemaFields[f.Pos].Name() != f.Name {
			return nil, fmt.Errorf("restoring scheme: field %s at %d is not in %s", f.Name, f.Pos, rs.FullName())
		}
		r.types[i] = FieldType{
			Name:     f.Name,
			Kind:     f.Kind,
			Nullable: f.Nullable,
			Pos:      f.Pos,
			Schema:   schemaFields[f.Pos].Type(),
		}
		r.index[f.Name] = i
	}
	return r, nil
}

// MarshalState encodes s as JSON
func MarshalState(s State) ([]byte, error) {
	return sonic.ConfigStd.Marshal(s)
}

// UnmarshalState decodes a JSON encoded State of the expected type
func UnmarshalState(data []byte, typ string) (State, error) {
	var s State
	if err := sonic.ConfigStd.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("decoding scheme state: %w", err)
	}
	if s.Type != typ {
		return State{}, fmt.Errorf("decoding scheme state: expected a %s scheme, got %q", typ, s.Type)
	}
	return s, nil
}
