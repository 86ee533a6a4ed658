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
	"bytes"
	"io"
	"testing"

	"github.com/maxpoint/cascading-avro-go/tuple"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitJoin(t *testing.T) {
	d, err := New(tuple.NewFields("a", "b", "c"), "::", `"`, nil)
	require.NoError(t, err)

	cases := []struct {
		values []string
		line   string
	}{
		{[]string{"x", "y", "z"}, "x::y::z"},
		{[]string{"a::b", `say "hi"`, ""}, `"a::b"::"say ""hi"""::`},
		{[]string{"", "", ""}, "::::"},
	}
	for _, c := range cases {
		assert.Equal(t, c.line, d.Join(c.values))
		parts, err := d.Split(c.line)
		require.NoError(t, err)
		assert.Equal(t, c.values, parts)
	}

	_, err = d.Split(`"open::x`)
	assert.ErrorIs(t, err, ErrUnterminatedQuote)
	_, err = d.Split(`"a"b::c`)
	assert.Error(t, err)

	plain, err := New(tuple.NewFields("a"), "\t", "", nil)
	require.NoError(t, err)
	parts, err := plain.Split(`"a"	b`)
	require.NoError(t, err)
	assert.Equal(t, []string{`"a"`, "b"}, parts)
}

func TestNewValidates(t *testing.T) {
	_, err := New(tuple.NewFields("a"), "", "", nil)
	assert.Error(t, err)
	_, err = New(tuple.NewFields("a"), ",", ",", nil)
	assert.Error(t, err)
	_, err = New(tuple.NewFields("a", "b"), ",", "", []tuple.Class{tuple.Long})
	assert.Error(t, err)
}

func TestSchemeRoundTrip(t *testing.T) {
	fields := tuple.NewFields("flag", "n", "name")
	d, err := New(fields, "\t", "", []tuple.Class{tuple.Boolean, tuple.Long, tuple.Text})
	require.NoError(t, err)

	conf := tuple.NewJobConf()
	require.NoError(t, d.SinkInit(conf))
	require.NoError(t, d.SourceInit(conf))
	conf.SetBool(tuple.OutputCompressKey, true)

	out, err := tuple.OutputFormatFor(conf)
	require.NoError(t, err)
	var buf bytes.Buffer
	w, err := out.Create(&buf, conf)
	require.NoError(t, err)
	for _, values := range []tuple.Tuple{tuple.Of(true, 7, "seven"), tuple.Of(false, int64(-1), nil)} {
		entry, err := tuple.NewEntry(fields, values)
		require.NoError(t, err)
		require.NoError(t, d.Sink(entry, w))
	}
	require.NoError(t, w.Close())
	assert.True(t, isGzip(buf.Bytes()))

	in, err := tuple.InputFormatFor(conf)
	require.NoError(t, err)
	r, err := in.Open(&buf, conf)
	require.NoError(t, err)
	defer r.Close()

	key, value, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(0), key)
	assert.Equal(t, "true\t7\tseven", value)
	first, err := d.Source(key, value)
	require.NoError(t, err)
	assert.Equal(t, tuple.Of(true, int64(7), "seven"), first)

	key, value, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(13), key)
	second, err := d.Source(key, value)
	require.NoError(t, err)
	assert.Equal(t, tuple.Of(false, int64(-1), nil), second)

	_, _, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestSourceErrors(t *testing.T) {
	d, err := New(tuple.NewFields("n", "s"), ",", "", []tuple.Class{tuple.Integer, tuple.Text})
	require.NoError(t, err)

	_, err = d.Source(int64(0), "1,a,b")
	assert.ErrorContains(t, err, "expected 2")
	_, err = d.Source(int64(0), "x,a")
	var ce *tuple.CoercionError
	assert.ErrorAs(t, err, &ce)

	got, err := d.Source(int64(0), ",a")
	require.NoError(t, err)
	assert.Equal(t, tuple.Of(nil, "a"), got)
}

func TestLineInput(t *testing.T) {
	r, err := LineInputFormat{}.Open(bytes.NewReader([]byte("a\r\nbc\n\nlast")), tuple.NewJobConf())
	require.NoError(t, err)
	var keys []interface{}
	var values []interface{}
	for {
		k, v, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		keys = append(keys, k)
		values = append(values, v)
	}
	assert.Equal(t, []interface{}{int64(0), int64(3), int64(6), int64(7)}, keys)
	assert.Equal(t, []interface{}{"a", "bc", "", "last"}, values)
}

func TestLineOutputRejectsLineBreaks(t *testing.T) {
	w, err := LineOutputFormat{}.Create(io.Discard, tuple.NewJobConf())
	require.NoError(t, err)
	assert.Error(t, w.Collect(nil, "a\nb"))
	assert.Error(t, w.Collect(nil, 12))
	require.NoError(t, w.Collect(nil, []byte("ok")))
	require.NoError(t, w.Close())
}
