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


// Package tap binds a scheme to part files in a blob bucket, so tuples can
// be written to and read from local directories, memory or cloud storage.
package tap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"

	"github.com/maxpoint/cascading-avro-go/tuple"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/gcsblob"  // gs:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets
	_ "gocloud.dev/blob/s3blob"   // s3:// buckets
)

// Option configures a Tap
type Option func(*Tap)

// WithLogger sets the logger used for part file events
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tap) {
		t.logger = logger
	}
}

// WithMetrics sets the metrics updated by the tap
func WithMetrics(m *Metrics) Option {
	return func(t *Tap) {
		t.metrics = m
	}
}

// Tap reads and writes the part files under a prefix of a bucket using a
// scheme. A Tap is not safe for concurrent use of the same scheme.
type Tap struct {
	bucket  *blob.Bucket
	owned   bool
	prefix  string
	scheme  tuple.Scheme
	logger  *slog.Logger
	metrics *Metrics
}

// New returns a tap over prefix in bucket. The caller keeps ownership of the
// bucket.
func New(bucket *blob.Bucket, prefix string, scheme tuple.Scheme, opts ...Option) *Tap {
	t := &Tap{
		bucket: bucket,
		prefix: path.Clean("/" + prefix)[1:],
		scheme: scheme,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Open opens the bucket at bucketURL, such as file:///tmp/out or
// s3://bucket?region=us-east-1, and returns a tap over prefix in it.
// Closing the tap closes the bucket.
func Open(ctx context.Context, bucketURL, prefix string, scheme tuple.Scheme, opts ...Option) (*Tap, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucketURL, err)
	}
	t := New(bucket, prefix, scheme, opts...)
	t.owned = true
	return t, nil
}

// Scheme returns the scheme of the tap
func (t *Tap) Scheme() tuple.Scheme {
	return t.scheme
}

// Prefix returns the key prefix of the part files
func (t *Tap) Prefix() string {
	return t.prefix
}

// Close releases the bucket when it was opened by the tap
func (t *Tap) Close() error {
	if !t.owned {
		return nil
	}
	return t.bucket.Close()
}

func (t *Tap) listPrefix() string {
	if t.prefix == "" {
		return ""
	}
	return t.prefix + "/"
}

// Parts returns the keys of all part files under the prefix, in key order.
// Nested directories are not descended.
func (t *Tap) Parts(ctx context.Context) ([]string, error) {
	var keys []string

	iter := t.bucket.List(&blob.ListOptions{
		Prefix:    t.listPrefix(),
		Delimiter: "/",
	})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list parts under %q: %w", t.prefix, err)
		}
		if obj.IsDir || !isPart(obj.Key) {
			continue
		}
		keys = append(keys, obj.Key)
	}

	sort.Strings(keys)
	return keys, nil
}

// Delete removes all part files under the prefix
func (t *Tap) Delete(ctx context.Context) error {
	keys, err := t.Parts(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := t.bucket.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete part %s: %w", key, err)
		}
		t.logger.Debug("deleted part", "key", key)
	}
	return nil
}

// OpenForWrite initializes the scheme for writing and creates a new part
// file. conf is not modified.
func (t *Tap) OpenForWrite(ctx context.Context, conf tuple.JobConf) (*Collector, error) {
	conf = conf.Clone()
	conf.SetString(tuple.OutputPathKey, t.prefix)
	if err := t.scheme.SinkInit(conf); err != nil {
		return nil, fmt.Errorf("sink init: %w", err)
	}
	format, err := tuple.OutputFormatFor(conf)
	if err != nil {
		return nil, err
	}

	key := path.Join(t.prefix, newPartName(format.Extension()))
	// Cancelling wctx before the blob writer closes discards the part.
	wctx, cancel := context.WithCancel(ctx)
	bw, err := t.bucket.NewWriter(wctx, key, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create writer for %s: %w", key, err)
	}
	rw, err := format.Create(bw, conf)
	if err != nil {
		cancel()
		bw.Close()
		return nil, fmt.Errorf("create %s output for %s: %w", format.Name(), key, err)
	}

	t.logger.Debug("opened part for write", "key", key, "format", format.Name())
	return &Collector{
		tap:    t,
		key:    key,
		format: format.Name(),
		blob:   bw,
		out:    rw,
		cancel: cancel,
	}, nil
}

// Collector writes tuples to one part file through the tap's scheme
type Collector struct {
	tap    *Tap
	key    string
	format string
	blob   *blob.Writer
	out    tuple.RecordWriter
	cancel context.CancelFunc
	count  int64
	closed bool
}

// Key returns the key of the part file being written
func (c *Collector) Key() string {
	return c.key
}

// Count returns the number of tuples written so far
func (c *Collector) Count() int64 {
	return c.count
}

// Add writes a tuple whose values follow the scheme's sink fields
func (c *Collector) Add(t tuple.Tuple) error {
	entry, err := tuple.NewEntry(c.tap.scheme.SinkFields(), t)
	if err != nil {
		return err
	}
	return c.AddEntry(entry)
}

// AddEntry writes the sink fields of entry
func (c *Collector) AddEntry(entry *tuple.TupleEntry) error {
	if c.closed {
		return errors.New("tap: collector is closed")
	}
	if err := c.tap.scheme.Sink(entry, c.out); err != nil {
		return err
	}
	c.count++
	c.tap.metrics.tupleWritten(c.format)
	return nil
}

// Close flushes and commits the part file. If flushing fails the part is
// discarded. Calling Close more than once is a no-op.
func (c *Collector) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	defer c.cancel()

	err := c.out.Close()
	if err != nil {
		c.cancel()
	}
	if cerr := c.blob.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("close part %s: %w", c.key, err)
	}

	c.tap.metrics.partWritten(c.format)
	c.tap.logger.Debug("closed part", "key", c.key, "format", c.format, "tuples", c.count)
	return nil
}

// Abort discards the part file. Nothing written through the collector is
// committed to the bucket. Abort after Close is a no-op.
func (c *Collector) Abort() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.cancel()

	_ = c.out.Close()
	if err := c.blob.Close(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("abort part %s: %w", c.key, err)
	}
	c.tap.logger.Debug("aborted part", "key", c.key, "format", c.format, "tuples", c.count)
	return nil
}

// OpenForRead initializes the scheme for reading and returns an iterator
// over the tuples of all part files under the prefix. conf is not modified.
func (t *Tap) OpenForRead(ctx context.Context, conf tuple.JobConf) (*Iterator, error) {
	conf = conf.Clone()
	conf.SetString(tuple.InputPathKey, t.prefix)
	if err := t.scheme.SourceInit(conf); err != nil {
		return nil, fmt.Errorf("source init: %w", err)
	}
	format, err := tuple.InputFormatFor(conf)
	if err != nil {
		return nil, err
	}
	keys, err := t.Parts(ctx)
	if err != nil {
		return nil, err
	}
	return &Iterator{
		ctx:    ctx,
		tap:    t,
		conf:   conf,
		format: format,
		keys:   keys,
	}, nil
}

// Iterator reads the tuples of a tap's part files in key order
type Iterator struct {
	ctx    context.Context
	tap    *Tap
	conf   tuple.JobConf
	format tuple.InputFormat
	keys   []string

	key  string
	blob *blob.Reader
	in   tuple.RecordReader
}

// Next returns the next tuple as an entry of the scheme's source fields, or
// io.EOF when all parts are exhausted.
func (it *Iterator) Next() (*tuple.TupleEntry, error) {
	for {
		if it.in == nil {
			if len(it.keys) == 0 {
				return nil, io.EOF
			}
			if err := it.open(it.keys[0]); err != nil {
				return nil, err
			}
			it.keys = it.keys[1:]
		}

		key, value, err := it.in.Next()
		if err == io.EOF {
			if err := it.closePart(); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", it.key, err)
		}

		t, err := it.tap.scheme.Source(key, value)
		if err != nil {
			return nil, fmt.Errorf("source part %s: %w", it.key, err)
		}
		it.tap.metrics.tupleRead(it.format.Name())
		return tuple.NewEntry(it.tap.scheme.SourceFields(), t)
	}
}

func (it *Iterator) open(key string) error {
	br, err := it.tap.bucket.NewReader(it.ctx, key, nil)
	if err != nil {
		return fmt.Errorf("open part %s: %w", key, err)
	}
	in, err := it.format.Open(br, it.conf)
	if err != nil {
		br.Close()
		return fmt.Errorf("open %s input for %s: %w", it.format.Name(), key, err)
	}
	it.key, it.blob, it.in = key, br, in
	it.tap.logger.Debug("opened part for read", "key", key, "format", it.format.Name())
	return nil
}

func (it *Iterator) closePart() error {
	if it.in == nil {
		return nil
	}
	err := it.in.Close()
	if cerr := it.blob.Close(); err == nil {
		err = cerr
	}
	key := it.key
	it.key, it.blob, it.in = "", nil, nil
	if err != nil {
		return fmt.Errorf("close part %s: %w", key, err)
	}
	it.tap.metrics.partRead(it.format.Name())
	it.tap.logger.Debug("closed part", "key", key, "format", it.format.Name())
	return nil
}

// Close releases the part being read, if any
func (it *Iterator) Close() error {
	it.keys = nil
	return it.closePart()
}
