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

// Package avromapred binds Avro container files to the job configuration:
// well-known keys, the record wrapper and the avro input and output formats.
package avromapred

import (
	"github.com/maxpoint/cascading-avro-go/container"
	"github.com/maxpoint/cascading-avro-go/tuple"
)

// Job configuration keys
const (
	InputSchemaKey  = "avro.input.schema"
	OutputSchemaKey = "avro.output.schema"
	OutputCodecKey  = "avro.output.codec"
	DeflateLevelKey = "avro.mapred.deflate.level"
	SyncIntervalKey = "avro.mapred.sync.interval"
)

const (
	// FormatName selects the avro input and output formats
	FormatName = "avro"
	// Serialization is the io.serializations entry required to read avro
	Serialization = "avromapred.Serialization"
	// WrapperClass is the output key class of the avro output format
	WrapperClass = "avromapred.Wrapper"
)

// Wrapper carries one datum as the key of a record
type Wrapper struct {
	Datum interface{}
}

// AddSerialization registers the avro serialization in conf unless it is
// already present.
func AddSerialization(conf tuple.JobConf) {
	conf.AppendString(tuple.SerializationsKey, Serialization)
}

// HasSerialization reports whether the avro serialization is registered
func HasSerialization(conf tuple.JobConf) bool {
	for _, s := range conf.GetStrings(tuple.SerializationsKey) {
		if s == Serialization {
			return true
		}
	}
	return false
}

// SetOutputCodec sets the block codec of written files
func SetOutputCodec(conf tuple.JobConf, codec string) {
	conf.SetString(OutputCodecKey, codec)
}

// SetDeflateLevel sets the deflate level of written files
func SetDeflateLevel(conf tuple.JobConf, level int) {
	conf.SetInt(DeflateLevelKey, level)
}

// SetSyncInterval sets the approximate block size of written files
func SetSyncInterval(conf tuple.JobConf, n int) {
	conf.SetInt(SyncIntervalKey, n)
}

func writerOptions(conf tuple.JobConf) ([]container.Option, error) {
	codec := conf.GetString(OutputCodecKey, container.Null)
	compress, err := conf.GetBool(tuple.OutputCompressKey, true)
	if err != nil {
		return nil, err
	}
	if !compress {
		codec = container.Null
	}
	level, err := conf.GetInt(DeflateLevelKey, container.DefaultDeflateLevel)
	if err != nil {
		return nil, err
	}
	interval, err := conf.GetInt(SyncIntervalKey, container.DefaultSyncInterval)
	if err != nil {
		return nil, err
	}
	return []container.Option{
		container.WithCodec(codec),
		container.WithCompressionLevel(level),
		container.WithSyncInterval(interval),
	}, nil
}
