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


package tap

import (
	"context"
	"io"
	"path"
	"testing"

	"github.com/maxpoint/cascading-avro-go/scheme"
	"github.com/maxpoint/cascading-avro-go/scheme/avro"
	"github.com/maxpoint/cascading-avro-go/scheme/text"
	"github.com/maxpoint/cascading-avro-go/tuple"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/memblob"
)

const scenario = `{
  "type": "record",
  "name": "Scenario",
  "fields": [
    {"name": "aBoolean", "type": "boolean"},
    {"name": "anInt", "type": "int"},
    {"name": "aString", "type": ["string", "null"]}
  ]
}`

func writeAll(t *testing.T, tp *Tap, tuples ...tuple.Tuple) string {
	t.Helper()
	c, err := tp.OpenForWrite(context.Background(), tuple.NewJobConf())
	require.NoError(t, err)
	for _, v := range tuples {
		require.NoError(t, c.Add(v))
	}
	require.NoError(t, c.Close())
	return c.Key()
}

func readAll(t *testing.T, tp *Tap) []tuple.Tuple {
	t.Helper()
	it, err := tp.OpenForRead(context.Background(), tuple.NewJobConf())
	require.NoError(t, err)
	defer it.Close()

	var result []tuple.Tuple
	for {
		entry, err := it.Next()
		if err == io.EOF {
			return result
		}
		require.NoError(t, err)
		assert.Equal(t, tp.Scheme().SourceFields(), entry.Fields())
		result = append(result, entry.Tuple())
	}
}

func TestAvroTapScenario(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	s, err := avro.Parse(scenario)
	require.NoError(t, err)
	tp := New(bucket, "out", s)

	key := writeAll(t, tp,
		tuple.Of(false, 0, "0"),
		tuple.Of(true, 1, nil),
		tuple.Of(false, int64(2), "2"),
	)
	assert.Equal(t, "out", path.Dir(key))
	assert.Equal(t, ".avro", path.Ext(key))

	assert.Equal(t, []tuple.Tuple{
		{false, int32(0), "0"},
		{true, int32(1), nil},
		{false, int32(2), "2"},
	}, readAll(t, tp))
}

func TestPartsInKeyOrder(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	s, err := avro.Parse(scenario)
	require.NoError(t, err)
	tp := New(bucket, "/runs/1/", s)
	assert.Equal(t, "runs/1", tp.Prefix())

	first := writeAll(t, tp, tuple.Of(true, 1, "a"))
	second := writeAll(t, tp, tuple.Of(false, 2, "b"))
	require.Less(t, first, second)

	// neither a part nor directly under the prefix
	ctx := context.Background()
	require.NoError(t, bucket.WriteAll(ctx, "runs/1/_SUCCESS", nil, nil))
	require.NoError(t, bucket.WriteAll(ctx, "runs/1/nested/part-0.avro", []byte("x"), nil))

	parts, err := tp.Parts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{first, second}, parts)

	assert.Equal(t, []tuple.Tuple{
		{true, int32(1), "a"},
		{false, int32(2), "b"},
	}, readAll(t, tp))

	require.NoError(t, tp.Delete(ctx))
	parts, err = tp.Parts(ctx)
	require.NoError(t, err)
	assert.Empty(t, parts)
	ok, err := bucket.Exists(ctx, "runs/1/_SUCCESS")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTextTapOnFileBucket(t *testing.T) {
	bucket, err := fileblob.OpenBucket(t.TempDir(), nil)
	require.NoError(t, err)
	defer bucket.Close()

	s, err := text.Parse(scenario, text.WithDelimiter(","), text.WithQuote(`"`))
	require.NoError(t, err)
	tp := New(bucket, "csv", s)

	key := writeAll(t, tp,
		tuple.Of(true, 7, "a,b"),
		tuple.Of(false, -1, nil),
	)
	data, err := bucket.ReadAll(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "true,7,\"a,b\"\nfalse,-1,\n", string(data))

	assert.Equal(t, []tuple.Tuple{
		{true, int32(7), "a,b"},
		{false, int32(-1), nil},
	}, readAll(t, tp))
}

func TestRenamedSink(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	s, err := avro.Parse(scenario)
	require.NoError(t, err)
	r, err := scheme.NewRenamer(s,
		tuple.NewFields("flag", "count", "label"),
		tuple.NewFields("aBoolean", "anInt", "aString"))
	require.NoError(t, err)

	c, err := New(bucket, "renamed", r).OpenForWrite(context.Background(), tuple.NewJobConf())
	require.NoError(t, err)
	require.NoError(t, c.Add(tuple.Of(true, 3, "x")))
	require.NoError(t, c.Close())

	assert.Equal(t, []tuple.Tuple{{true, int32(3), "x"}}, readAll(t, New(bucket, "renamed", s)))
}

func TestMetrics(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NoError(t, m.Register())
	require.NoError(t, m.Register())

	s, err := avro.Parse(scenario)
	require.NoError(t, err)
	tp := New(bucket, "m", s, WithMetrics(m))

	writeAll(t, tp, tuple.Of(true, 1, "a"), tuple.Of(true, 2, "b"))
	writeAll(t, tp, tuple.Of(true, 3, "c"))
	assert.Len(t, readAll(t, tp), 3)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.tuplesWritten.WithLabelValues("avro")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.tuplesRead.WithLabelValues("avro")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.partsWritten.WithLabelValues("avro")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.partsRead.WithLabelValues("avro")))

	// a second instance against the same registry is tolerated
	require.NoError(t, NewMetrics(reg).Register())
}

func TestCollectorErrors(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	s, err := avro.Parse(scenario)
	require.NoError(t, err)
	c, err := New(bucket, "e", s).OpenForWrite(context.Background(), tuple.NewJobConf())
	require.NoError(t, err)

	err = c.Add(tuple.Of(true, 1))
	assert.Error(t, err)

	var nonNull *scheme.NonNullableFieldError
	err = c.Add(tuple.Of(nil, 1, "a"))
	assert.ErrorAs(t, err, &nonNull)

	require.NoError(t, c.Add(tuple.Of(true, 1, "a")))
	assert.EqualValues(t, 1, c.Count())
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Error(t, c.Add(tuple.Of(true, 1, "a")))
}

func TestOpenBucketURL(t *testing.T) {
	ctx := context.Background()
	s, err := avro.Parse(scenario)
	require.NoError(t, err)

	tp, err := Open(ctx, "file://"+t.TempDir(), "x", s)
	require.NoError(t, err)
	writeAll(t, tp, tuple.Of(true, 1, "a"))
	assert.Len(t, readAll(t, tp), 1)
	require.NoError(t, tp.Close())

	_, err = Open(ctx, "nosuch://bucket", "x", s)
	assert.Error(t, err)
}

func TestAbortLeavesNoPart(t *testing.T) {
	ctx := context.Background()
	s, err := avro.Parse(scenario)
	require.NoError(t, err)

	fileBucket, err := fileblob.OpenBucket(t.TempDir(), nil)
	require.NoError(t, err)
	defer fileBucket.Close()
	memBucket := memblob.OpenBucket(nil)
	defer memBucket.Close()

	for name, tp := range map[string]*Tap{
		"file": New(fileBucket, "aborted", s),
		"mem":  New(memBucket, "aborted", s),
	} {
		t.Run(name, func(t *testing.T) {
			c, err := tp.OpenForWrite(ctx, tuple.NewJobConf())
			require.NoError(t, err)
			require.NoError(t, c.Add(tuple.Of(true, 1, "a")))
			require.NoError(t, c.Abort())
			require.NoError(t, c.Abort())
			require.NoError(t, c.Close())
			assert.Error(t, c.Add(tuple.Of(true, 2, "b")))

			parts, err := tp.Parts(ctx)
			require.NoError(t, err)
			assert.Empty(t, parts)

			writeAll(t, tp, tuple.Of(false, 3, nil))
			assert.Equal(t, []tuple.Tuple{{false, int32(3), nil}}, readAll(t, tp))
		})
	}
}
