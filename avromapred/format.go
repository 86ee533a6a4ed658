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

package avromapred

import (
	"errors"
	"fmt"
	"io"

	"github.com/hamba/avro/v2"
	"github.com/maxpoint/cascading-avro-go/container"
	"github.com/maxpoint/cascading-avro-go/generic"
	"github.com/maxpoint/cascading-avro-go/scheme"
	"github.com/maxpoint/cascading-avro-go/tuple"
)

func init() {
	tuple.RegisterInputFormat(InputFormat{})
	tuple.RegisterOutputFormat(OutputFormat{})
}

// ErrSerializationMissing is returned when reading without the avro
// serialization registered in io.serializations.
var ErrSerializationMissing = errors.New("avro serialization is not registered in " + tuple.SerializationsKey)

// InputFormat reads avro container files. Records are keyed by a *Wrapper
// holding a *generic.Record; values are nil.
type InputFormat struct{}

// Name returns FormatName
func (InputFormat) Name() string {
	return FormatName
}

// Open reads the container header from r. When conf holds an input schema
// that differs from the writer schema, records are projected onto it by
// field name.
func (InputFormat) Open(r io.Reader, conf tuple.JobConf) (tuple.RecordReader, error) {
	if !HasSerialization(conf) {
		return nil, ErrSerializationMissing
	}
	cr, err := container.NewReader(r)
	if err != nil {
		return nil, err
	}
	rr := &recordReader{in: cr}
	if text := conf.GetString(InputSchemaKey, ""); text != "" {
		rs, err := scheme.ParseRecordSchema(text)
		if err != nil {
			_ = cr.Close()
			return nil, fmt.Errorf("%s: %w", InputSchemaKey, err)
		}
		if rs.Fingerprint() != cr.Schema().Fingerprint() {
			rr.project = rs
		}
	}
	return rr, nil
}

type recordReader struct {
	in      *container.Reader
	project *avro.RecordSchema
}

func (r *recordReader) Next() (key, value interface{}, err error) {
	v, err := r.in.Next()
	if err != nil {
		return nil, nil, err
	}
	if r.project != nil {
		rec, ok := v.(generic.IndexedRecord)
		if !ok {
			return nil, nil, fmt.Errorf("can't project %T onto %s", v, r.project.FullName())
		}
		v = generic.Project(rec, r.project)
	}
	return &Wrapper{Datum: v}, nil, nil
}

func (r *recordReader) Close() error {
	return r.in.Close()
}

// OutputFormat writes avro container files from *Wrapper keys
type OutputFormat struct{}

// Name returns FormatName
func (OutputFormat) Name() string {
	return FormatName
}

// Extension returns the avro file extension
func (OutputFormat) Extension() string {
	return "avro"
}

// Create writes a container header for the output schema of conf to w
func (OutputFormat) Create(w io.Writer, conf tuple.JobConf) (tuple.RecordWriter, error) {
	text := conf.GetString(OutputSchemaKey, "")
	if text == "" {
		return nil, fmt.Errorf("no output schema configured (%s)", OutputSchemaKey)
	}
	schema, err := scheme.ParseSchema(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", OutputSchemaKey, err)
	}
	opts, err := writerOptions(conf)
	if err != nil {
		return nil, err
	}
	cw, err := container.NewWriter(w, schema, opts...)
	if err != nil {
		return nil, err
	}
	return &recordWriter{out: cw}, nil
}

type recordWriter struct {
	out *container.Writer
}

func (w *recordWriter) Collect(key, value interface{}) error {
	wrapper, ok := key.(*Wrapper)
	if !ok {
		return fmt.Errorf("avro output expects a *avromapred.Wrapper key, got %T", key)
	}
	return w.out.Append(wrapper.Datum)
}

func (w *recordWriter) Close() error {
	return w.out.Close()
}
