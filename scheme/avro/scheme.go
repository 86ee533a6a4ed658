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

// Package avro provides the scheme that reads and writes tuples as records
// of Avro object container files.
package avro

import (
	"errors"
	"fmt"
	"strconv"

	hamba "github.com/hamba/avro/v2"
	"github.com/maxpoint/cascading-avro-go/avromapred"
	"github.com/maxpoint/cascading-avro-go/container"
	"github.com/maxpoint/cascading-avro-go/generic"
	"github.com/maxpoint/cascading-avro-go/scheme"
	"github.com/maxpoint/cascading-avro-go/tuple"
)

// Allowed is the set of field kinds the scheme converts
var Allowed = scheme.NewKindSet(scheme.Boolean, scheme.Bytes, scheme.Double, scheme.Fixed,
	scheme.Float, scheme.Int, scheme.Long, scheme.Null, scheme.String, scheme.Union,
	scheme.Array, scheme.Map)

// Output defaults applied by SinkInit
const (
	DefaultCodec        = container.Deflate
	DefaultDeflateLevel = 6
	DefaultSyncInterval = 1 << 20
)

const stateType = "avro"

type config struct {
	codec        string
	deflateLevel int
	syncInterval int
}

func defaultConfig() config {
	return config{
		codec:        DefaultCodec,
		deflateLevel: DefaultDeflateLevel,
		syncInterval: DefaultSyncInterval,
	}
}

// Option configures the output settings of a Scheme
type Option func(*config)

// WithCodec sets the output block codec
func WithCodec(codec string) Option {
	return func(c *config) {
		c.codec = codec
	}
}

// WithDeflateLevel sets the output deflate level
func WithDeflateLevel(level int) Option {
	return func(c *config) {
		c.deflateLevel = level
	}
}

// WithSyncInterval sets the output block size in uncompressed bytes
func WithSyncInterval(n int) Option {
	return func(c *config) {
		c.syncInterval = n
	}
}

// Scheme sources and sinks tuples whose fields are named and ordered as the
// fields of a record schema.
//
// Values convert as follows: strings as string, bytes and fixed as []byte,
// numbers and booleans as their Go equivalents. Arrays and maps surface as
// the generic values []interface{} and map[string]interface{} without
// converting their contents. A union of null and one other type is a
// nullable value of that type.
//
// A Scheme is not safe for concurrent use. The record handed to the output
// collector by Sink is reused by the next call.
type Scheme struct {
	res    *scheme.Resolution
	fields tuple.Fields
	cfg    config
	cached *generic.Record
}

var _ tuple.Scheme = new(Scheme)

// New creates a Scheme for a record schema
func New(schema hamba.Schema, opts ...Option) (*Scheme, error) {
	res, err := scheme.Resolve(schema, Allowed)
	if err != nil {
		return nil, err
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Scheme{res: res, fields: res.Fields(), cfg: cfg}, nil
}

// Parse creates a Scheme for the record schema text
func Parse(text string, opts ...Option) (*Scheme, error) {
	schema, err := scheme.ParseSchema(text)
	if err != nil {
		return nil, err
	}
	return New(schema, opts...)
}

// Schema returns the record schema
func (s *Scheme) Schema() *hamba.RecordSchema {
	return s.res.Schema()
}

// FieldTypes returns the resolved fields in tuple order
func (s *Scheme) FieldTypes() []scheme.FieldType {
	return s.res.Types()
}

// SourceFields returns the record field names
func (s *Scheme) SourceFields() tuple.Fields {
	return s.fields
}

// SinkFields returns the record field names
func (s *Scheme) SinkFields() tuple.Fields {
	return s.fields
}

// SourceInit selects the avro input format for the record schema
func (s *Scheme) SourceInit(conf tuple.JobConf) error {
	conf.SetString(avromapred.InputSchemaKey, s.res.Schema().String())
	conf.SetString(tuple.InputFormatKey, avromapred.FormatName)
	avromapred.AddSerialization(conf)
	return nil
}

// SinkInit selects the avro output format for the record schema along
// with the configured codec, deflate level and sync interval.
func (s *Scheme) SinkInit(conf tuple.JobConf) error {
	conf.SetString(avromapred.OutputSchemaKey, s.res.Schema().String())
	conf.SetString(tuple.OutputFormatKey, avromapred.FormatName)
	conf.SetString(tuple.OutputKeyClassKey, avromapred.WrapperClass)
	avromapred.SetDeflateLevel(conf, s.cfg.deflateLevel)
	avromapred.SetOutputCodec(conf, s.cfg.codec)
	avromapred.SetSyncInterval(conf, s.cfg.syncInterval)
	return nil
}

// Source converts the record held by a *avromapred.Wrapper key
func (s *Scheme) Source(key, value interface{}) (tuple.Tuple, error) {
	wrapper, ok := key.(*avromapred.Wrapper)
	if !ok {
		return nil, fmt.Errorf("avro scheme expects a *avromapred.Wrapper key, got %T", key)
	}
	record, ok := wrapper.Datum.(generic.IndexedRecord)
	if !ok {
		return nil, fmt.Errorf("avro scheme expects an indexed record, got %T", wrapper.Datum)
	}

	types := s.res.Types()
	result := tuple.Size(len(types))
	for i, t := range types {
		v, err := fromAvro(t, record.Get(t.Pos))
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

func fromAvro(t scheme.FieldType, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch t.Kind {
	case scheme.String:
		return scheme.ToText(v)
	case scheme.Fixed, scheme.Bytes:
		b, err := scheme.ToBytes(v)
		if err != nil {
			return nil, named(err, t.Name)
		}
		c := make([]byte, len(b))
		copy(c, b)
		return c, nil
	}
	return v, nil
}

// Sink converts entry to a record and collects it wrapped in a
// *avromapred.Wrapper key with a nil value.
func (s *Scheme) Sink(entry *tuple.TupleEntry, out tuple.OutputCollector) error {
	s.cached = generic.NewRecord(s.cached, s.res.Schema())

	for i, t := range s.res.Types() {
		name := s.fields[i]
		v, err := entry.Get(name)
		if err != nil {
			return err
		}
		av, err := toAvro(name, t, v)
		if err != nil {
			return err
		}
		s.cached.Put(t.Pos, av)
	}
	return out.Collect(&avromapred.Wrapper{Datum: s.cached}, nil)
}

func toAvro(name string, t scheme.FieldType, v interface{}) (interface{}, error) {
	if v == nil {
		if t.Nullable {
			return nil, nil
		}
		return nil, &scheme.NonNullableFieldError{Field: name}
	}

	var (
		av  interface{}
		err error
	)
	switch t.Kind {
	case scheme.String:
		av, err = scheme.ToText(v)
	case scheme.Fixed:
		av, err = toFixed(name, t, v)
	case scheme.Bytes:
		av, err = scheme.ToBytes(v)
	case scheme.Long:
		av, err = scheme.ToInt64(v)
	case scheme.Int:
		av, err = scheme.ToInt32(v)
	case scheme.Double:
		av, err = scheme.ToFloat64(v)
	case scheme.Float:
		av, err = scheme.ToFloat32(v)
	default:
		av = v
	}
	if err != nil {
		return nil, named(err, name)
	}
	return av, nil
}

func toFixed(name string, t scheme.FieldType, v interface{}) (interface{}, error) {
	b, err := scheme.ToBytes(v)
	if err != nil {
		return nil, err
	}
	fs, ok := t.Branch().(*hamba.FixedSchema)
	if !ok {
		return nil, fmt.Errorf("field %s: %s is not a fixed schema", name, t.Branch().Type())
	}
	if len(b) != fs.Size() {
		return nil, &scheme.FixedLengthMismatchError{Field: name, Expected: fs.Size(), Actual: len(b)}
	}
	return generic.NewFixed(fs, b)
}

func named(err error, field string) error {
	var conv *scheme.ValueConversionError
	if errors.As(err, &conv) && conv.Field == "" {
		conv.Field = field
	}
	return err
}

// MarshalJSON encodes the schema, resolved fields and output settings
func (s *Scheme) MarshalJSON() ([]byte, error) {
	state := s.res.State(stateType)
	state.Options = map[string]string{
		"codec":        s.cfg.codec,
		"deflateLevel": strconv.Itoa(s.cfg.deflateLevel),
		"syncInterval": strconv.Itoa(s.cfg.syncInterval),
	}
	return scheme.MarshalState(state)
}

// UnmarshalJSON restores a Scheme encoded by MarshalJSON
func (s *Scheme) UnmarshalJSON(data []byte) error {
	state, err := scheme.UnmarshalState(data, stateType)
	if err != nil {
		return err
	}
	res, err := scheme.Restore(state)
	if err != nil {
		return err
	}
	cfg := defaultConfig()
	if v, ok := state.Options["codec"]; ok {
		cfg.codec = v
	}
	if v, ok := state.Options["deflateLevel"]; ok {
		if cfg.deflateLevel, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("decoding avro scheme: deflateLevel: %w", err)
		}
	}
	if v, ok := state.Options["syncInterval"]; ok {
		if cfg.syncInterval, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("decoding avro scheme: syncInterval: %w", err)
		}
	}
	*s = Scheme{res: res, fields: res.Fields(), cfg: cfg}
	return nil
}
