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

// Renamer adapts the sink fields of a wrapped scheme. Entries sunk through
// a Renamer carry the `from` names and reach the wrapped scheme under the
// corresponding `to` names.
type Renamer struct {
	inner tuple.Scheme
	from  tuple.Fields
	to    tuple.Fields
}

var _ tuple.Scheme = new(Renamer)

// NewRenamer wraps inner so that it sinks entries named from. Every name in
// to must be a sink field of inner, and from and to must have the same size.
func NewRenamer(inner tuple.Scheme, from, to tuple.Fields) (*Renamer, error) {
	available := inner.SinkFields()
	if len(from) != len(to) || len(available.Select(to)) != len(to) {
		return nil, &FieldProjectionMismatchError{To: to, Available: available}
	}
	return &Renamer{inner: inner, from: from, to: to}, nil
}

// SourceFields returns the source fields of the wrapped scheme
func (r *Renamer) SourceFields() tuple.Fields {
	return r.inner.SourceFields()
}

// SinkFields returns the `from` names
func (r *Renamer) SinkFields() tuple.Fields {
	return r.from
}

// SourceInit delegates to the wrapped scheme
func (r *Renamer) SourceInit(conf tuple.JobConf) error {
	return r.inner.SourceInit(conf)
}

// SinkInit delegates to the wrapped scheme
func (r *Renamer) SinkInit(conf tuple.JobConf) error {
	return r.inner.SinkInit(conf)
}

// Source delegates to the wrapped scheme
func (r *Renamer) Source(key, value interface{}) (tuple.Tuple, error) {
	return r.inner.Source(key, value)
}

// Sink selects the `from` values of entry and sinks them as `to`
func (r *Renamer) Sink(entry *tuple.TupleEntry, out tuple.OutputCollector) error {
	values, err := entry.Select(r.from)
	if err != nil {
		return err
	}
	renamed, err := tuple.NewEntry(r.to, values)
	if err != nil {
		return err
	}
	return r.inner.Sink(renamed, out)
}
