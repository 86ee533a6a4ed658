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
	"io"
	"sort"
	"sync"
)

// RecordReader iterates over the key/value records of one input stream.
// Next returns io.EOF once the stream is exhausted.
type RecordReader interface {
	Next() (key, value interface{}, err error)
	Close() error
}

// RecordWriter writes key/value records to one output stream
type RecordWriter interface {
	OutputCollector
	Close() error
}

// InputFormat opens record readers for a storage format
type InputFormat interface {
	Name() string
	Open(r io.Reader, conf JobConf) (RecordReader, error)
}

// OutputFormat creates record writers for a storage format
type OutputFormat interface {
	Name() string
	// Extension is the file name extension of the written files, without dot
	Extension() string
	Create(w io.Writer, conf JobConf) (RecordWriter, error)
}

var (
	globalFormats = FormatRegistry{
		inputs:  make(map[string]InputFormat),
		outputs: make(map[string]OutputFormat),
	}
)

// FormatRegistry is used to store all registered input and output formats.
type FormatRegistry struct {
	inputsMu  sync.RWMutex
	inputs    map[string]InputFormat
	outputsMu sync.RWMutex
	outputs   map[string]OutputFormat
}

// RegisterInput is used to register a new input format.
func (r *FormatRegistry) RegisterInput(f InputFormat) {
	r.inputsMu.Lock()
	defer r.inputsMu.Unlock()
	r.inputs[f.Name()] = f
}

// RegisterOutput is used to register a new output format.
func (r *FormatRegistry) RegisterOutput(f OutputFormat) {
	r.outputsMu.Lock()
	defer r.outputsMu.Unlock()
	r.outputs[f.Name()] = f
}

// GetInput fetches an input format by a given name.
func (r *FormatRegistry) GetInput(name string) InputFormat {
	r.inputsMu.RLock()
	defer r.inputsMu.RUnlock()
	return r.inputs[name]
}

// GetOutput fetches an output format by a given name.
func (r *FormatRegistry) GetOutput(name string) OutputFormat {
	r.outputsMu.RLock()
	defer r.outputsMu.RUnlock()
	return r.outputs[name]
}

// InputNames returns the sorted names of all input formats
func (r *FormatRegistry) InputNames() []string {
	r.inputsMu.RLock()
	defer r.inputsMu.RUnlock()
	result := make([]string, 0, len(r.inputs))
	for k := range r.inputs {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// OutputNames returns the sorted names of all output formats
func (r *FormatRegistry) OutputNames() []string {
	r.outputsMu.RLock()
	defer r.outputsMu.RUnlock()
	result := make([]string, 0, len(r.outputs))
	for k := range r.outputs {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// GlobalFormatRegistry returns the global format registry.
func GlobalFormatRegistry() *FormatRegistry {
	return &globalFormats
}

// RegisterInputFormat is used to register a new global input format.
func RegisterInputFormat(f InputFormat) {
	globalFormats.RegisterInput(f)
}

// RegisterOutputFormat is used to register a new global output format.
func RegisterOutputFormat(f OutputFormat) {
	globalFormats.RegisterOutput(f)
}

// InputFormatFor returns the global input format selected by conf
func InputFormatFor(conf JobConf) (InputFormat, error) {
	name := conf.GetString(InputFormatKey, "")
	if name == "" {
		return nil, fmt.Errorf("no input format configured (%s)", InputFormatKey)
	}
	f := globalFormats.GetInput(name)
	if f == nil {
		return nil, fmt.Errorf("unknown input format %q, registered: %v", name, globalFormats.InputNames())
	}
	return f, nil
}

// OutputFormatFor returns the global output format selected by conf
func OutputFormatFor(conf JobConf) (OutputFormat, error) {
	name := conf.GetString(OutputFormatKey, "")
	if name == "" {
		return nil, fmt.Errorf("no output format configured (%s)", OutputFormatKey)
	}
	f := globalFormats.GetOutput(name)
	if f == nil {
		return nil, fmt.Errorf("unknown output format %q, registered: %v", name, globalFormats.OutputNames())
	}
	return f, nil
}
