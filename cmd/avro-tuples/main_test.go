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


package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schema = `{
  "type": "record",
  "name": "Scenario",
  "fields": [
    {"name": "aBoolean", "type": "boolean"},
    {"name": "anInt", "type": "int"},
    {"name": "aString", "type": ["string", "null"]}
  ]
}`

func TestTextToAvroAndBack(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "scenario.avsc")
	require.NoError(t, os.WriteFile(schemaPath, []byte(schema), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "in"), 0755))
	input := "false\t0\t0\ntrue\t1\t\nfalse\t2\t2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "in", "part-00000.txt"), []byte(input), 0644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bucket := "file://" + filepath.ToSlash(dir)

	o, err := parseArgs([]string{
		"-schema", schemaPath,
		"-from", bucket, "-from-prefix", "in",
		"-to", bucket, "-to-prefix", "avro", "-codec", "snappy",
	})
	require.NoError(t, err)
	n, err := run(context.Background(), o, logger)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	parts, err := filepath.Glob(filepath.Join(dir, "avro", "part-*.avro"))
	require.NoError(t, err)
	require.Len(t, parts, 1)

	o, err = parseArgs([]string{
		"-schema", schemaPath,
		"-from", bucket, "-from-prefix", "avro", "-from-format", "avro",
		"-to", bucket, "-to-prefix", "out", "-to-format", "text",
		"-X", "mapred.output.compress=false",
	})
	require.NoError(t, err)
	n, err = run(context.Background(), o, logger)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	parts, err = filepath.Glob(filepath.Join(dir, "out", "part-*.txt"))
	require.NoError(t, err)
	require.Len(t, parts, 1)
	data, err := os.ReadFile(parts[0])
	require.NoError(t, err)
	assert.Equal(t, input, string(data))
}

func TestFailedCopyLeavesNoPart(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "scenario.avsc")
	require.NoError(t, os.WriteFile(schemaPath, []byte(schema), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "in"), 0755))
	input := "false\t0\t0\ntrue\tone\tx\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "in", "part-00000.txt"), []byte(input), 0644))

	bucket := "file://" + filepath.ToSlash(dir)
	o, err := parseArgs([]string{
		"-schema", schemaPath,
		"-from", bucket, "-from-prefix", "in",
		"-to", bucket, "-to-prefix", "avro",
	})
	require.NoError(t, err)
	_, err = run(context.Background(), o, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorContains(t, err, "anInt")

	parts, err := filepath.Glob(filepath.Join(dir, "avro", "part-*"))
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestArguments(t *testing.T) {
	_, err := parseArgs([]string{"-schema", "x.avsc"})
	assert.Error(t, err)

	o, err := parseArgs([]string{"-schema", "x.avsc", "-from", "mem://", "-to", "mem://", "-X", "novalue"})
	require.NoError(t, err)
	_, err = o.jobConf()
	assert.Error(t, err)

	_, err = o.newScheme("parquet", schema)
	assert.ErrorContains(t, err, `unknown format "parquet"`)
}
