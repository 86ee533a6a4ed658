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

// Package container reads and writes Avro object container files.
package container

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"
	"github.com/hamba/avro/v2"
	"github.com/maxpoint/cascading-avro-go/generic"
)

// Metadata keys reserved by the container format
const (
	SchemaKey = "avro.schema"
	CodecKey  = "avro.codec"
)

// DefaultSyncInterval is the default number of uncompressed bytes buffered
// before a block is written.
const DefaultSyncInterval = 1 << 20

const syncSize = 16

// MaxBlockSize bounds the stored size of a block the Reader will load.
const MaxBlockSize = 1 << 30

var magic = []byte{'O', 'b', 'j', 1}

type config struct {
	codec        string
	level        int
	syncInterval int
	metadata     map[string][]byte
}

// Option configures a Writer
type Option func(*config)

// WithCodec sets the block compression codec
func WithCodec(name string) Option {
	return func(c *config) {
		c.codec = name
	}
}

// WithCompressionLevel sets the deflate compression level
func WithCompressionLevel(level int) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithSyncInterval sets the approximate block size in uncompressed bytes
func WithSyncInterval(n int) Option {
	return func(c *config) {
		c.syncInterval = n
	}
}

// WithMetadata adds user metadata to the file header
func WithMetadata(meta map[string][]byte) Option {
	return func(c *config) {
		for k, v := range meta {
			c.metadata[k] = v
		}
	}
}

// Writer appends datums of one schema to a container file.
// A Writer is not safe for concurrent use.
type Writer struct {
	out          *avro.Writer
	schema       avro.Schema
	codec        Codec
	sync         [syncSize]byte
	syncInterval int

	block    bytes.Buffer
	blockEnc *avro.Writer
	count    int64
	closed   bool
}

// NewWriter writes the container header to w and returns a Writer for datums
// of schema.
func NewWriter(w io.Writer, schema avro.Schema, opts ...Option) (*Writer, error) {
	cfg := config{
		codec:        Null,
		level:        DefaultDeflateLevel,
		syncInterval: DefaultSyncInterval,
		metadata:     make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.syncInterval <= 0 {
		return nil, fmt.Errorf("sync interval must be positive, got %d", cfg.syncInterval)
	}
	codec, err := NewCodec(cfg.codec, cfg.level)
	if err != nil {
		return nil, err
	}
	cw := &Writer{
		out:          avro.NewWriter(w, 512),
		schema:       schema,
		codec:        codec,
		sync:         uuid.New(),
		syncInterval: cfg.syncInterval,
	}
	cw.blockEnc = avro.NewWriter(&cw.block, 512)

	cfg.metadata[SchemaKey] = []byte(schema.String())
	cfg.metadata[CodecKey] = []byte(codec.Name())
	if err := cw.writeHeader(cfg.metadata); err != nil {
		return nil, err
	}
	return cw, nil
}

func (w *Writer) writeHeader(meta map[string][]byte) error {
	_, _ = w.out.Write(magic)
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	w.out.WriteLong(int64(len(keys)))
	for _, k := range keys {
		w.out.WriteString(k)
		w.out.WriteBytes(meta[k])
	}
	w.out.WriteLong(0)
	_, _ = w.out.Write(w.sync[:])
	return w.out.Flush()
}

// Schema returns the schema of the written datums
func (w *Writer) Schema() avro.Schema {
	return w.schema
}

// Append encodes v into the current block, writing the block once it holds
// at least the sync interval of uncompressed bytes. A value that fails to
// encode leaves the block unchanged.
func (w *Writer) Append(v interface{}) error {
	if w.closed {
		return errors.New("container: append to closed writer")
	}
	mark := w.block.Len()
	if err := generic.WriteDatum(w.blockEnc, w.schema, v); err != nil {
		w.blockEnc.Reset(&w.block)
		w.blockEnc.Error = nil
		w.block.Truncate(mark)
		return err
	}
	if err := w.blockEnc.Flush(); err != nil {
		return err
	}
	w.count++
	if w.block.Len() >= w.syncInterval {
		return w.Sync()
	}
	return nil
}

// Sync writes the buffered datums as one block
func (w *Writer) Sync() error {
	if w.count == 0 {
		return nil
	}
	data, err := w.codec.Encode(w.block.Bytes())
	if err != nil {
		return fmt.Errorf("container: %s encode: %w", w.codec.Name(), err)
	}
	w.out.WriteLong(w.count)
	w.out.WriteLong(int64(len(data)))
	_, _ = w.out.Write(data)
	_, _ = w.out.Write(w.sync[:])
	w.count = 0
	w.block.Reset()
	return w.out.Flush()
}

// Close writes any buffered datums. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.Sync()
	if cerr := closeCodec(w.codec); err == nil {
		err = cerr
	}
	return err
}

// Reader iterates over the datums of a container file
type Reader struct {
	in       *avro.Reader
	schema   avro.Schema
	metadata map[string][]byte
	codec    Codec
	sync     [syncSize]byte

	block     *avro.Reader
	remaining int64
	err       error
}

// NewReader reads the container header from r
func NewReader(r io.Reader) (*Reader, error) {
	in := avro.NewReader(r, 1024)

	var m [4]byte
	in.Read(m[:])
	if in.Error != nil {
		return nil, fmt.Errorf("container: reading header: %w", in.Error)
	}
	if !bytes.Equal(m[:], magic) {
		return nil, errors.New("container: not an avro object container file")
	}

	meta := make(map[string][]byte)
	for {
		n, _ := in.ReadBlockHeader()
		if n == 0 || in.Error != nil {
			break
		}
		for i := int64(0); i < n; i++ {
			k := in.ReadString()
			meta[k] = in.ReadBytes()
		}
	}
	cr := &Reader{in: in, metadata: meta}
	in.Read(cr.sync[:])
	if in.Error != nil {
		return nil, fmt.Errorf("container: reading header: %w", in.Error)
	}

	schema, err := avro.ParseWithCache(string(meta[SchemaKey]), "", &avro.SchemaCache{})
	if err != nil {
		return nil, fmt.Errorf("container: header schema: %w", err)
	}
	cr.schema = schema
	codec, err := NewCodec(string(meta[CodecKey]), DefaultDeflateLevel)
	if err != nil {
		return nil, fmt.Errorf("container: %w", err)
	}
	cr.codec = codec
	cr.block = avro.NewReader(bytes.NewReader(nil), 1024)
	return cr, nil
}

// Schema returns the writer schema stored in the header
func (r *Reader) Schema() avro.Schema {
	return r.schema
}

// Metadata returns the header metadata
func (r *Reader) Metadata() map[string][]byte {
	return r.metadata
}

// Codec returns the name of the block codec
func (r *Reader) Codec() string {
	return r.codec.Name()
}

// Next decodes the next datum. It returns io.EOF after the last datum.
func (r *Reader) Next() (interface{}, error) {
	if r.err != nil {
		return nil, r.err
	}
	for r.remaining == 0 {
		if err := r.nextBlock(); err != nil {
			r.err = err
			return nil, err
		}
	}
	v, err := generic.ReadDatum(r.block, r.schema)
	if err != nil {
		r.err = fmt.Errorf("container: decoding datum: %w", err)
		return nil, r.err
	}
	r.remaining--
	return v, nil
}

func (r *Reader) nextBlock() error {
	count := r.in.ReadLong()
	if r.in.Error != nil {
		if errors.Is(r.in.Error, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("container: reading block: %w", r.in.Error)
	}
	size := r.in.ReadLong()
	if r.in.Error != nil {
		return blockError(r.in.Error)
	}
	if count < 0 || size < 0 || size > MaxBlockSize {
		return fmt.Errorf("container: invalid block of %d datums and %d bytes", count, size)
	}
	data := make([]byte, size)
	r.in.Read(data)
	var sync [syncSize]byte
	r.in.Read(sync[:])
	if r.in.Error != nil {
		return blockError(r.in.Error)
	}
	if sync != r.sync {
		return errors.New("container: invalid sync marker")
	}
	decoded, err := r.codec.Decode(data)
	if err != nil {
		return fmt.Errorf("container: %w", err)
	}
	r.block.Reset(decoded)
	r.remaining = count
	return nil
}

// blockError reports a failure inside a block. The end of input there
// means the file was truncated.
func blockError(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("container: reading block: %w", err)
}

// Close releases codec resources. It does not close the underlying reader.
func (r *Reader) Close() error {
	return closeCodec(r.codec)
}
