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

// OutputCollector receives the key/value pairs produced by a scheme sink
type OutputCollector interface {
	Collect(key, value interface{}) error
}

// OutputCollectorFunc adapts a function to an OutputCollector
type OutputCollectorFunc func(key, value interface{}) error

// Collect calls f(key, value)
func (f OutputCollectorFunc) Collect(key, value interface{}) error {
	return f(key, value)
}

// Scheme converts between the key/value records of a storage format and
// tuples. A Scheme is bound to a job configuration once per side before use.
// Implementations are not safe for concurrent use.
type Scheme interface {
	// SourceFields returns the names of the tuples produced by Source
	SourceFields() Fields
	// SinkFields returns the names Sink reads from incoming entries
	SinkFields() Fields
	// SourceInit configures conf for reading
	SourceInit(conf JobConf) error
	// SinkInit configures conf for writing
	SinkInit(conf JobConf) error
	// Source converts one input record to a tuple
	Source(key, value interface{}) (Tuple, error)
	// Sink converts entry to an output record and hands it to out
	Sink(entry *TupleEntry, out OutputCollector) error
}
