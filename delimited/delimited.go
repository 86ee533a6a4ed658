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

// Package delimited converts tuples to and from lines of delimiter
// separated text.
package delimited

import (
	"errors"
	"fmt"
	"strings"

	"github.com/maxpoint/cascading-avro-go/tuple"
)

// ErrUnterminatedQuote is returned for a line whose quoted value has no
// closing quote.
var ErrUnterminatedQuote = errors.New("unterminated quoted value")

// TextDelimited is a scheme for lines of delimited text read and written by
// the text line formats. Each value is parsed and formatted according to
// the class of its field.
type TextDelimited struct {
	fields    tuple.Fields
	delimiter string
	quote     string
	classes   []tuple.Class
}

var _ tuple.Scheme = new(TextDelimited)

// New returns a TextDelimited scheme. quote may be empty to disable
// quoting. classes may be nil, in which case every field is Text.
func New(fields tuple.Fields, delimiter, quote string, classes []tuple.Class) (*TextDelimited, error) {
	if delimiter == "" {
		return nil, errors.New("delimiter must not be empty")
	}
	if quote != "" && strings.Contains(delimiter, quote) {
		return nil, fmt.Errorf("quote %q must not be part of delimiter %q", quote, delimiter)
	}
	if classes == nil {
		classes = make([]tuple.Class, len(fields))
		for i := range classes {
			classes[i] = tuple.Text
		}
	}
	if len(classes) != len(fields) {
		return nil, fmt.Errorf("%d classes for %d fields", len(classes), len(fields))
	}
	return &TextDelimited{fields: fields, delimiter: delimiter, quote: quote, classes: classes}, nil
}

// Delimiter returns the value separator
func (d *TextDelimited) Delimiter() string {
	return d.delimiter
}

// Quote returns the quote string, empty if quoting is disabled
func (d *TextDelimited) Quote() string {
	return d.quote
}

// Classes returns the value class of each field
func (d *TextDelimited) Classes() []tuple.Class {
	return d.classes
}

// SourceFields returns the field names
func (d *TextDelimited) SourceFields() tuple.Fields {
	return d.fields
}

// SinkFields returns the field names
func (d *TextDelimited) SinkFields() tuple.Fields {
	return d.fields
}

// SourceInit selects the text line input format
func (d *TextDelimited) SourceInit(conf tuple.JobConf) error {
	conf.SetString(tuple.InputFormatKey, FormatName)
	return nil
}

// SinkInit selects the text line output format
func (d *TextDelimited) SinkInit(conf tuple.JobConf) error {
	conf.SetString(tuple.OutputFormatKey, FormatName)
	return nil
}

// Source parses a line given as the record value. The key is the line
// offset and is ignored.
func (d *TextDelimited) Source(key, value interface{}) (tuple.Tuple, error) {
	line, err := tuple.AsText(value)
	if err != nil {
		return nil, fmt.Errorf("text line: %w", err)
	}
	parts, err := d.Split(line)
	if err != nil {
		return nil, err
	}
	if len(parts) != len(d.fields) {
		return nil, fmt.Errorf("line has %d values, expected %d for %v", len(parts), len(d.fields), d.fields)
	}
	result := tuple.Size(len(parts))
	for i, part := range parts {
		v, err := d.classes[i].Parse(part)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", d.fields[i], err)
		}
		result[i] = v
	}
	return result, nil
}

// Sink formats the sink fields of entry as one line and collects it as the
// value of a record with a nil key.
func (d *TextDelimited) Sink(entry *tuple.TupleEntry, out tuple.OutputCollector) error {
	values, err := entry.Select(d.fields)
	if err != nil {
		return err
	}
	parts := make([]string, len(values))
	for i, v := range values {
		s, err := d.classes[i].Format(v)
		if err != nil {
			return fmt.Errorf("field %s: %w", d.fields[i], err)
		}
		parts[i] = s
	}
	return out.Collect(nil, d.Join(parts))
}

// Join concatenates values with the delimiter, quoting values that contain
// the delimiter, the quote or a line break.
func (d *TextDelimited) Join(values []string) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteString(d.delimiter)
		}
		if d.quote != "" && d.needsQuote(v) {
			b.WriteString(d.quote)
			b.WriteString(strings.ReplaceAll(v, d.quote, d.quote+d.quote))
			b.WriteString(d.quote)
			continue
		}
		b.WriteString(v)
	}
	return b.String()
}

func (d *TextDelimited) needsQuote(v string) bool {
	return strings.Contains(v, d.delimiter) || strings.Contains(v, d.quote) ||
		strings.ContainsAny(v, "\r\n")
}

// Split breaks line into values. With quoting enabled, a value starting with
// the quote extends to the matching closing quote and a doubled quote
// inside it stands for one quote.
func (d *TextDelimited) Split(line string) ([]string, error) {
	if d.quote == "" {
		return strings.Split(line, d.delimiter), nil
	}
	var result []string
	rest := line
	for {
		if !strings.HasPrefix(rest, d.quote) {
			i := strings.Index(rest, d.delimiter)
			if i < 0 {
				return append(result, rest), nil
			}
			result = append(result, rest[:i])
			rest = rest[i+len(d.delimiter):]
			continue
		}

		var b strings.Builder
		rest = rest[len(d.quote):]
		for {
			i := strings.Index(rest, d.quote)
			if i < 0 {
				return nil, fmt.Errorf("%w in %q", ErrUnterminatedQuote, line)
			}
			b.WriteString(rest[:i])
			rest = rest[i+len(d.quote):]
			if strings.HasPrefix(rest, d.quote) {
				b.WriteString(d.quote)
				rest = rest[len(d.quote):]
				continue
			}
			break
		}
		result = append(result, b.String())
		if rest == "" {
			return result, nil
		}
		if !strings.HasPrefix(rest, d.delimiter) {
			return nil, fmt.Errorf("unexpected text after quoted value in %q", line)
		}
		rest = rest[len(d.delimiter):]
	}
}
