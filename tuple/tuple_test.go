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

package tuple

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsSelect(t *testing.T) {
	f := NewFields("a", "b", "c")
	assert.Equal(t, 3, f.Size())
	assert.Equal(t, 1, f.Index("b"))
	assert.Equal(t, -1, f.Index("z"))
	assert.Equal(t, Fields{"c", "a"}, f.Select(Fields{"c", "a"}))
	assert.Equal(t, Fields{"a"}, f.Select(Fields{"z", "a"}))
	assert.True(t, f.Equal(Fields{"a", "b", "c"}))
	assert.False(t, f.Equal(Fields{"a", "c", "b"}))
	assert.Equal(t, "[a, b, c]", f.String())
}

func TestEntry(t *testing.T) {
	_, err := NewEntry(NewFields("a"), Of(1, 2))
	require.Error(t, err)

	e, err := NewEntry(NewFields("flag", "n", "s", "f"), Of(true, int64(7), "x", 1.5))
	require.NoError(t, err)

	b, err := e.Boolean("flag")
	require.NoError(t, err)
	assert.True(t, b)

	i, err := e.Integer("n")
	require.NoError(t, err)
	assert.Equal(t, int32(7), i)

	d, err := e.Double("f")
	require.NoError(t, err)
	assert.Equal(t, 1.5, d)

	_, err = e.Get("missing")
	assert.True(t, errors.Is(err, ErrFieldNotFound))
	assert.Nil(t, e.Object("missing"))

	sel, err := e.Select(NewFields("s", "flag"))
	require.NoError(t, err)
	assert.Equal(t, Of("x", true), sel)
}

func TestCoerceNumbers(t *testing.T) {
	l, err := Int64(int32(-3))
	require.NoError(t, err)
	assert.Equal(t, int64(-3), l)

	l, err = Int64(float64(42))
	require.NoError(t, err)
	assert.Equal(t, int64(42), l)

	_, err = Int64(4.5)
	var ce *CoercionError
	assert.ErrorAs(t, err, &ce)

	_, err = Int64(uint64(math.MaxUint64))
	assert.ErrorAs(t, err, &ce)

	_, err = Int64(math.Inf(1))
	assert.ErrorAs(t, err, &ce)

	_, err = Int32(int64(math.MaxInt32) + 1)
	assert.ErrorAs(t, err, &ce)

	i, err := Int32(uint8(200))
	require.NoError(t, err)
	assert.Equal(t, int32(200), i)

	f, err := Float32(2)
	require.NoError(t, err)
	assert.Equal(t, float32(2), f)

	_, err = Float32(math.MaxFloat64)
	assert.ErrorAs(t, err, &ce)

	d, err := Float64(uint64(math.MaxUint64))
	require.NoError(t, err)
	assert.Equal(t, float64(math.MaxUint64), d)

	_, err = Float64("1")
	assert.ErrorAs(t, err, &ce)

	_, err = Bool(1)
	assert.ErrorAs(t, err, &ce)
}

func TestAsText(t *testing.T) {
	s, err := AsText([]byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, "raw", s)

	s, err = AsText(int32(12))
	require.NoError(t, err)
	assert.Equal(t, "12", s)

	v, err := Text.Coerce([]byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, "plain", v)

	_, err = AsText(nil)
	var ce *CoercionError
	assert.ErrorAs(t, err, &ce)
}

func TestClassParseFormat(t *testing.T) {
	cases := []struct {
		class Class
		text  string
		value interface{}
	}{
		{Boolean, "true", true},
		{Binary, "AQI=", []byte{1, 2}},
		{Double, "0.25", 0.25},
		{Float, "1.5", float32(1.5)},
		{Integer, "-12", int32(-12)},
		{Long, "9007199254740993", int64(9007199254740993)},
		{Text, "hello", "hello"},
		{Any, "raw", "raw"},
	}
	for _, c := range cases {
		t.Run(c.class.String(), func(t *testing.T) {
			v, err := c.class.Parse(c.text)
			require.NoError(t, err)
			assert.Equal(t, c.value, v)

			s, err := c.class.Format(v)
			require.NoError(t, err)
			assert.Equal(t, c.text, s)
		})
	}

	v, err := Integer.Parse("")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = Integer.Parse("3000000000")
	var ce *CoercionError
	assert.ErrorAs(t, err, &ce)

	s, err := Long.Format(nil)
	require.NoError(t, err)
	assert.Equal(t, "", s)
}

func TestJobConf(t *testing.T) {
	conf := NewJobConf()
	conf.SetInt("n", 3)
	conf.SetBool("b", true)
	require.NoError(t, conf.Set("k=v=w"))
	require.Error(t, conf.Set("novalue"))

	n, err := conf.GetInt("n", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = conf.GetInt("absent", 9)
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	b, err := conf.GetBool("b", false)
	require.NoError(t, err)
	assert.True(t, b)

	assert.Equal(t, "v=w", conf.GetString("k", ""))

	assert.True(t, conf.AppendString(SerializationsKey, "x"))
	assert.True(t, conf.AppendString(SerializationsKey, "y"))
	assert.False(t, conf.AppendString(SerializationsKey, "x"))
	assert.Equal(t, []string{"x", "y"}, conf.GetStrings(SerializationsKey))

	clone := conf.Clone()
	clone.SetString("k", "other")
	assert.Equal(t, "v=w", conf.GetString("k", ""))
	assert.Equal(t, "b=true,io.serializations=x,y,k=v=w,n=3", conf.String())
}
