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

package container

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// Codec names as stored under the avro.codec metadata key
const (
	Null      = "null"
	Deflate   = "deflate"
	Snappy    = "snappy"
	ZStandard = "zstandard"
)

// DefaultDeflateLevel is used when no compression level is configured
const DefaultDeflateLevel = 6

// Codec compresses and decompresses block data
type Codec interface {
	Name() string
	Encode(b []byte) ([]byte, error)
	Decode(b []byte) ([]byte, error)
}

// NewCodec returns the codec registered under name. level only applies to
// deflate, where it must be between 1 and 9.
func NewCodec(name string, level int) (Codec, error) {
	switch name {
	case Null, "":
		return nullCodec{}, nil
	case Deflate:
		if level < flate.BestSpeed || level > flate.BestCompression {
			return nil, fmt.Errorf("deflate level %d is outside [%d, %d]", level, flate.BestSpeed, flate.BestCompression)
		}
		return &deflateCodec{level: level}, nil
	case Snappy:
		return snappyCodec{}, nil
	case ZStandard:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		return &zstdCodec{enc: enc, dec: dec}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

type nullCodec struct{}

func (nullCodec) Name() string { return Null }

func (nullCodec) Encode(b []byte) ([]byte, error) { return b, nil }

func (nullCodec) Decode(b []byte) ([]byte, error) { return b, nil }

type deflateCodec struct {
	level int
	buf   bytes.Buffer
	w     *flate.Writer
}

func (c *deflateCodec) Name() string { return Deflate }

func (c *deflateCodec) Encode(b []byte) ([]byte, error) {
	c.buf.Reset()
	if c.w == nil {
		w, err := flate.NewWriter(&c.buf, c.level)
		if err != nil {
			return nil, err
		}
		c.w = w
	} else {
		c.w.Reset(&c.buf)
	}
	if _, err := c.w.Write(b); err != nil {
		return nil, err
	}
	if err := c.w.Close(); err != nil {
		return nil, err
	}
	return c.buf.Bytes(), nil
}

func (c *deflateCodec) Decode(b []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(b))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	return out, nil
}

type snappyCodec struct{}

func (snappyCodec) Name() string { return Snappy }

// Encode writes a snappy block followed by the big endian CRC32 of b
func (snappyCodec) Encode(b []byte) ([]byte, error) {
	out := s2.EncodeSnappy(nil, b)
	return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(b)), nil
}

func (snappyCodec) Decode(b []byte) ([]byte, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("snappy: block of %d bytes has no checksum", len(b))
	}
	out, err := s2.Decode(nil, b[:len(b)-4])
	if err != nil {
		return nil, fmt.Errorf("snappy: %w", err)
	}
	if crc := binary.BigEndian.Uint32(b[len(b)-4:]); crc != crc32.ChecksumIEEE(out) {
		return nil, fmt.Errorf("snappy: checksum mismatch")
	}
	return out, nil
}

type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func (c *zstdCodec) Name() string { return ZStandard }

func (c *zstdCodec) Encode(b []byte) ([]byte, error) {
	return c.enc.EncodeAll(b, nil), nil
}

func (c *zstdCodec) Decode(b []byte) ([]byte, error) {
	out, err := c.dec.DecodeAll(b, nil)
	if err != nil {
		return nil, fmt.Errorf("zstandard: %w", err)
	}
	return out, nil
}

func (c *zstdCodec) Close() error {
	c.dec.Close()
	return c.enc.Close()
}

func closeCodec(c Codec) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
