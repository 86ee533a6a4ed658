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

package delimited

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/maxpoint/cascading-avro-go/tuple"
)

// FormatName selects the text line input and output formats
const FormatName = "text"

const maxLineSize = 64 << 20

func init() {
	tuple.RegisterInputFormat(LineInputFormat{})
	tuple.RegisterOutputFormat(LineOutputFormat{})
}

// LineInputFormat reads newline terminated text. Records are keyed by the
// int64 byte offset of the line; values are the line without its line
// break. Gzip compressed input is detected and decompressed.
type LineInputFormat struct{}

// Name returns FormatName
func (LineInputFormat) Name() string {
	return FormatName
}

// Open returns a reader over the lines of r
func (LineInputFormat) Open(r io.Reader, conf tuple.JobConf) (tuple.RecordReader, error) {
	br := bufio.NewReader(r)
	lr := &lineReader{}
	magic, err := br.Peek(2)
	if err == nil && isGzip(magic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("text input: %w", err)
		}
		lr.closer = zr
		br = bufio.NewReader(zr)
	}
	lr.scanner = bufio.NewScanner(br)
	lr.scanner.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	lr.scanner.Split(lr.scanLines)
	return lr, nil
}

type lineReader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	offset  int64
}

// scanLines is bufio.ScanLines that also tracks the byte offset of each line
func (r *lineReader) scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	advance, token, err = bufio.ScanLines(data, atEOF)
	r.offset += int64(advance)
	return
}

func (r *lineReader) Next() (key, value interface{}, err error) {
	start := r.offset
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, nil, fmt.Errorf("text input: %w", err)
		}
		return nil, nil, io.EOF
	}
	return start, r.scanner.Text(), nil
}

func (r *lineReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// LineOutputFormat writes one line per record value. Keys are ignored.
// The output is gzip compressed when mapred.output.compress is set.
type LineOutputFormat struct{}

// Name returns FormatName
func (LineOutputFormat) Name() string {
	return FormatName
}

// Extension returns the text file extension
func (LineOutputFormat) Extension() string {
	return "txt"
}

// Create returns a writer of lines to w
func (LineOutputFormat) Create(w io.Writer, conf tuple.JobConf) (tuple.RecordWriter, error) {
	compress, err := conf.GetBool(tuple.OutputCompressKey, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tuple.OutputCompressKey, err)
	}
	lw := &lineWriter{}
	if compress {
		lw.gz = gzip.NewWriter(w)
		w = lw.gz
	}
	lw.out = bufio.NewWriter(w)
	return lw, nil
}

type lineWriter struct {
	out *bufio.Writer
	gz  *gzip.Writer
}

func (w *lineWriter) Collect(key, value interface{}) error {
	var line string
	switch v := value.(type) {
	case string:
		line = v
	case []byte:
		line = string(v)
	case fmt.Stringer:
		line = v.String()
	default:
		return fmt.Errorf("text output expects a string value, got %T", value)
	}
	if strings.ContainsAny(line, "\r\n") {
		return fmt.Errorf("text output: value %q spans lines", line)
	}
	if _, err := w.out.WriteString(line); err != nil {
		return err
	}
	return w.out.WriteByte('\n')
}

func (w *lineWriter) Close() error {
	if err := w.out.Flush(); err != nil {
		return err
	}
	if w.gz != nil {
		return w.gz.Close()
	}
	return nil
}

// isGzip reports whether data starts with the gzip magic
func isGzip(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0x1f, 0x8b})
}
