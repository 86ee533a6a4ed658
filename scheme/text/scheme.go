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

// Package text provides a delimited text scheme whose field names and value
// classes come from an Avro record schema.
package text

import (
	"github.com/hamba/avro/v2"
	"github.com/maxpoint/cascading-avro-go/delimited"
	"github.com/maxpoint/cascading-avro-go/scheme"
	"github.com/maxpoint/cascading-avro-go/tuple"
)

// Allowed is the set of field kinds the scheme converts
var Allowed = scheme.NewKindSet(scheme.Boolean, scheme.Double, scheme.Float, scheme.Int,
	scheme.Long, scheme.Null, scheme.String, scheme.Union)

// DefaultDelimiter separates values unless WithDelimiter is given
const DefaultDelimiter = "\t"

const stateType = "text"

type config struct {
	delimiter string
	quote     string
}

// Option configures a Scheme
type Option func(*config)

// WithDelimiter sets the value separator
func WithDelimiter(delimiter string) Option {
	return func(c *config) {
		c.delimiter = delimiter
	}
}

// WithQuote sets the quote used around values containing the delimiter
func WithQuote(quote string) Option {
	return func(c *config) {
		c.quote = quote
	}
}

// Scheme reads and writes delimited text lines whose values are the fields
// of a record schema, in declaration order.
type Scheme struct {
	*delimited.TextDelimited
	res *scheme.Resolution
}

var _ tuple.Scheme = new(Scheme)

// New creates a Scheme for a record schema
func New(schema avro.Schema, opts ...Option) (*Scheme, error) {
	res, err := scheme.Resolve(schema, Allowed)
	if err != nil {
		return nil, err
	}
	cfg := config{delimiter: DefaultDelimiter}
	for _, opt := range opts {
		opt(&cfg)
	}
	return build(res, cfg)
}

// Parse creates a Scheme for the record schema text
func Parse(text string, opts ...Option) (*Scheme, error) {
	schema, err := scheme.ParseSchema(text)
	if err != nil {
		return nil, err
	}
	return New(schema, opts...)
}

func build(res *scheme.Resolution, cfg config) (*Scheme, error) {
	classes, err := scheme.InferClasses(res.Types())
	if err != nil {
		return nil, err
	}
	td, err := delimited.New(res.Fields(), cfg.delimiter, cfg.quote, classes)
	if err != nil {
		return nil, err
	}
	return &Scheme{TextDelimited: td, res: res}, nil
}

// Schema returns the record schema
func (s *Scheme) Schema() *avro.RecordSchema {
	return s.res.Schema()
}

// MarshalJSON encodes the schema, resolved fields, delimiter and quote
func (s *Scheme) MarshalJSON() ([]byte, error) {
	state := s.res.State(stateType)
	state.Options = map[string]string{
		"delimiter": s.Delimiter(),
		"quote":     s.Quote(),
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
	cfg := config{delimiter: DefaultDelimiter, quote: state.Options["quote"]}
	if d, ok := state.Options["delimiter"]; ok {
		cfg.delimiter = d
	}
	restored, err := build(res, cfg)
	if err != nil {
		return err
	}
	*s = *restored
	return nil
}
