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

package generic

import (
	"bytes"
	"testing"

	"github.com/hamba/avro/v2"
	"github.com/maxpoint/cascading-avro-go/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const allTypesSchema = `{
  "type": "record",
  "name": "AllTypes",
  "namespace": "test",
  "fields": [
    {"name": "b", "type": "boolean"},
    {"name": "i", "type": "int"},
    {"name": "l", "type": "long"},
    {"name": "f", "type": "float"},
    {"name": "d", "type": "double"},
    {"name": "raw", "type": "bytes"},
    {"name": "s", "type": ["null", "string"]},
    {"name": "fx", "type": {"type": "fixed", "name": "Four", "size": 4}},
    {"name": "color", "type": {"type": "enum", "name": "Color", "symbols": ["RED", "GREEN"]}},
    {"name": "nums", "type": {"type": "array", "items": "int"}},
    {"name": "tags", "type": {"type": "map", "values": "string"}},
    {"name": "again", "type": ["null", "long"]},
    {"name": "four", "type": ["null", "Four"]}
  ]
}`

type allTypes struct {
	B     bool              `avro:"b"`
	I     int32             `avro:"i"`
	L     int64             `avro:"l"`
	F     float32           `avro:"f"`
	D     float64           `avro:"d"`
	Raw   []byte            `avro:"raw"`
	S     *string           `avro:"s"`
	Fx    [4]byte           `avro:"fx"`
	Color string            `avro:"color"`
	Nums  []int32           `avro:"nums"`
	Tags  map[string]string `avro:"tags"`
	Again *int64            `avro:"again"`
	Four  *[4]byte          `avro:"four"`
}

func parseRecord(t *testing.T, text string) *avro.RecordSchema {
	t.Helper()
	s, err := avro.ParseWithCache(text, "", &avro.SchemaCache{})
	require.NoError(t, err)
	rs, ok := s.(*avro.RecordSchema)
	require.True(t, ok)
	return rs
}

func encode(t *testing.T, schema avro.Schema, v interface{}) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := avro.NewWriter(&buf, 64)
	require.NoError(t, WriteDatum(w, schema, v))
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

func TestDecodeMatchesStructEncoding(t *testing.T) {
	testutil.MaybeFail = testutil.InitFailFunc(t)
	schema := parseRecord(t, allTypesSchema)

	s := "text"
	in := allTypes{
		B: true, I: -7, L: 1 << 40, F: 1.5, D: -0.125,
		Raw:   []byte{0, 1, 2},
		S:     &s,
		Fx:    [4]byte{1, 2, 3, 4},
		Color: "GREEN",
		Nums:  []int32{3, 1},
		Tags:  map[string]string{"k": "v"},
	}
	data, err := avro.Marshal(schema, in)
	testutil.MaybeFail("marshal", err)

	rec, err := ReadRecord(avro.NewReader(bytes.NewReader(data), 64), schema)
	testutil.MaybeFail("read record", err)

	testutil.MaybeFail("values",
		testutil.Expect(rec.Get(0), true),
		testutil.Expect(rec.Get(1), int32(-7)),
		testutil.Expect(rec.Get(2), int64(1<<40)),
		testutil.Expect(rec.Get(3), float32(1.5)),
		testutil.Expect(rec.Get(4), -0.125),
		testutil.Expect(rec.Get(5), []byte{0, 1, 2}),
		testutil.Expect(rec.Get(6), "text"),
		testutil.Expect(rec.Get(7).(*Fixed).Bytes(), []byte{1, 2, 3, 4}),
		testutil.Expect(rec.Get(8), "GREEN"),
		testutil.Expect(rec.Get(9), []interface{}{int32(3), int32(1)}),
		testutil.Expect(rec.Get(10), map[string]interface{}{"k": "v"}),
		testutil.Expect(rec.Get(11), nil),
		testutil.Expect(rec.Get(12), nil))

	again, err := ReadRecord(avro.NewReader(bytes.NewReader(encode(t, schema, rec)), 64), schema)
	testutil.MaybeFail("re-read", err)
	testutil.MaybeFail("round trip", testutil.Expect(again.String(), rec.String()))
}

func TestEncodeReadableAsStruct(t *testing.T) {
	schema := parseRecord(t, allTypesSchema)
	four := schema.Fields()[7].Type().(*avro.FixedSchema)
	fx, err := NewFixed(four, []byte{9, 8, 7, 6})
	require.NoError(t, err)

	rec := NewRecord(nil, schema)
	rec.Put(0, false)
	rec.Put(1, 12)
	rec.Put(2, int32(5))
	rec.Put(3, 0.5)
	rec.Put(4, float32(2))
	rec.Put(5, "abc")
	rec.Put(6, nil)
	rec.Put(7, fx)
	rec.Put(8, "RED")
	rec.Put(9, []int{1, 2, 3})
	rec.Put(10, map[string]string{})
	rec.Put(11, int64(9))
	rec.Put(12, nil)

	var out allTypes
	require.NoError(t, avro.Unmarshal(schema, encode(t, schema, rec), &out))
	assert.False(t, out.B)
	assert.Equal(t, int32(12), out.I)
	assert.Equal(t, int64(5), out.L)
	assert.Equal(t, float32(0.5), out.F)
	assert.Equal(t, 2.0, out.D)
	assert.Equal(t, []byte("abc"), out.Raw)
	assert.Nil(t, out.S)
	assert.Equal(t, [4]byte{9, 8, 7, 6}, out.Fx)
	assert.Equal(t, "RED", out.Color)
	assert.Equal(t, []int32{1, 2, 3}, out.Nums)
	require.NotNil(t, out.Again)
	assert.Equal(t, int64(9), *out.Again)
	assert.Nil(t, out.Four)
}

func TestEncodeErrors(t *testing.T) {
	schema := parseRecord(t, allTypesSchema)
	rec := NewRecord(nil, schema)
	var buf bytes.Buffer
	w := avro.NewWriter(&buf, 64)
	assert.Error(t, WriteDatum(w, schema, rec), "nil into boolean")

	assert.Error(t, WriteDatum(w, avro.NewPrimitiveSchema(avro.Int, nil), int64(1)<<40))
	assert.Error(t, WriteDatum(w, schema.Fields()[7].Type(), []byte{1}))
	assert.Error(t, WriteDatum(w, schema.Fields()[8].Type(), "BLUE"))
}

func TestProject(t *testing.T) {
	writer := parseRecord(t, `{"type":"record","name":"R","fields":[
		{"name":"a","type":"int"},{"name":"b","type":"string"}]}`)
	reader := parseRecord(t, `{"type":"record","name":"R","fields":[
		{"name":"b","type":"string"},{"name":"c","type":"long","default":3},
		{"name":"d","type":["null","int"],"default":null}]}`)

	rec := NewRecord(nil, writer)
	rec.Put(0, int32(1))
	rec.Put(1, "x")

	p := Project(rec, reader)
	assert.Equal(t, "x", p.Get(0))
	assert.NotNil(t, p.Get(1))
	assert.Nil(t, p.Get(2))
	assert.Same(t, rec, Project(rec, writer))

	v, ok := p.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	_, ok = p.Lookup("a")
	assert.False(t, ok)
}

func TestNewRecordReuse(t *testing.T) {
	schema := parseRecord(t, allTypesSchema)
	r1 := NewRecord(nil, schema)
	assert.Same(t, r1, NewRecord(r1, schema))
	other := parseRecord(t, `{"type":"record","name":"O","fields":[]}`)
	assert.NotSame(t, r1, NewRecord(r1, other))
}

func TestUnionOfNamedReference(t *testing.T) {
	schema := parseRecord(t, allTypesSchema)
	four := schema.Fields()[7].Type().(*avro.FixedSchema)
	fx, err := NewFixed(four, []byte{1, 1, 2, 3})
	require.NoError(t, err)

	union := schema.Fields()[12].Type()
	data := encode(t, union, fx)
	v, err := ReadDatum(avro.NewReader(bytes.NewReader(data), 16), union)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 1, 2, 3}, v.(*Fixed).Bytes())
	assert.Equal(t, "test.Four", v.(*Fixed).Schema().FullName())
}

func TestNullSchema(t *testing.T) {
	testutil.MaybeFail = testutil.InitFailFunc(t)
	schema := parseRecord(t, `{"type":"record","name":"N","fields":[
		{"name":"none","type":"null"},{"name":"opt","type":["null","string"]}]}`)

	rec := NewRecord(nil, schema)
	data := encode(t, schema, rec)
	testutil.MaybeFail("encoded", testutil.Expect(data, []byte{0}))

	back, err := ReadRecord(avro.NewReader(bytes.NewReader(data), 16), schema)
	testutil.MaybeFail("read record", err)
	testutil.MaybeFail("values",
		testutil.Expect(back.Get(0), nil),
		testutil.Expect(back.Get(1), nil))

	rec.Put(0, "x")
	w := avro.NewWriter(&bytes.Buffer{}, 16)
	assert.Error(t, WriteDatum(w, schema, rec), "value into null")
}

func TestTruncatedCollections(t *testing.T) {
	// Block headers promise 1<<40 items that never arrive.
	var buf bytes.Buffer
	w := avro.NewWriter(&buf, 16)
	w.WriteLong(1 << 40)
	require.NoError(t, w.Flush())

	for _, schema := range []avro.Schema{
		avro.NewArraySchema(avro.NewPrimitiveSchema(avro.Long, nil)),
		avro.NewMapSchema(avro.NewPrimitiveSchema(avro.Long, nil)),
	} {
		_, err := ReadDatum(avro.NewReader(bytes.NewReader(buf.Bytes()), 16), schema)
		assert.Error(t, err, schema.String())
	}
}

func TestProjectPromotes(t *testing.T) {
	testutil.MaybeFail = testutil.InitFailFunc(t)
	writer := parseRecord(t, `{"type":"record","name":"R","fields":[
		{"name":"i","type":"int"},{"name":"l","type":"long"},
		{"name":"f","type":"float"},{"name":"s","type":"string"},
		{"name":"raw","type":"bytes"},{"name":"opt","type":["null","int"]}]}`)
	reader := parseRecord(t, `{"type":"record","name":"R","fields":[
		{"name":"i","type":"long"},{"name":"l","type":"double"},
		{"name":"f","type":"double"},{"name":"s","type":"bytes"},
		{"name":"raw","type":"string"},{"name":"opt","type":["null","long"]}]}`)

	rec := NewRecord(nil, writer)
	rec.Put(0, int32(7))
	rec.Put(1, int64(1<<40))
	rec.Put(2, float32(0.5))
	rec.Put(3, "abc")
	rec.Put(4, []byte("xyz"))
	rec.Put(5, int32(-2))

	p := Project(rec, reader)
	testutil.MaybeFail("promoted",
		testutil.Expect(p.Get(0), int64(7)),
		testutil.Expect(p.Get(1), float64(1<<40)),
		testutil.Expect(p.Get(2), 0.5),
		testutil.Expect(p.Get(3), []byte("abc")),
		testutil.Expect(p.Get(4), "xyz"),
		testutil.Expect(p.Get(5), int64(-2)))

	union := parseRecord(t, `{"type":"record","name":"U","fields":[
		{"name":"v","type":["null","int","long"]}]}`)
	testutil.MaybeFail("union keeps exact branch",
		testutil.Expect(Promote(int32(3), union.Fields()[0].Type()), int32(3)),
		testutil.Expect(Promote(true, union.Fields()[0].Type()), true))
}
