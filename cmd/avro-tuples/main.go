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


// Command avro-tuples copies the tuples of a record schema between Avro
// container files and delimited text, in local directories or buckets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maxpoint/cascading-avro-go/internal/cli"
	"github.com/maxpoint/cascading-avro-go/internal/logging"
	"github.com/maxpoint/cascading-avro-go/scheme"
	avroscheme "github.com/maxpoint/cascading-avro-go/scheme/avro"
	"github.com/maxpoint/cascading-avro-go/scheme/text"
	"github.com/maxpoint/cascading-avro-go/tap"
	"github.com/maxpoint/cascading-avro-go/tuple"
)

// Storage formats accepted by -from-format and -to-format
const (
	FormatAvro = "avro"
	FormatText = "text"
)

type endpoint struct {
	url    string
	prefix string
	format string
}

type options struct {
	schemaPath string
	from, to   endpoint
	delimiter  string
	quote      string
	codec      string
	level      int
	overrides  cli.Strings
	log        logging.Config
}

func parseArgs(args []string) (*options, error) {
	fs := flag.NewFlagSet("avro-tuples", flag.ContinueOnError)
	o := &options{}
	fs.StringVar(&o.schemaPath, "schema", "", "Record schema file (.avsc)")
	fs.StringVar(&o.from.url, "from", "", "Source bucket URL, e.g. file:///data or s3://bucket")
	fs.StringVar(&o.from.prefix, "from-prefix", "", "Key prefix of the source part files")
	fs.StringVar(&o.from.format, "from-format", FormatText, "Source format (avro, text)")
	fs.StringVar(&o.to.url, "to", "", "Destination bucket URL")
	fs.StringVar(&o.to.prefix, "to-prefix", "", "Key prefix of the destination part file")
	fs.StringVar(&o.to.format, "to-format", FormatAvro, "Destination format (avro, text)")
	fs.StringVar(&o.delimiter, "delimiter", text.DefaultDelimiter, "Text value delimiter")
	fs.StringVar(&o.quote, "quote", "", "Text quote, empty to disable quoting")
	fs.StringVar(&o.codec, "codec", avroscheme.DefaultCodec, "Avro output codec (null, deflate, snappy, zstandard)")
	fs.IntVar(&o.level, "level", avroscheme.DefaultDeflateLevel, "Deflate level (1-9)")
	fs.Var(&o.overrides, "X", "Job configuration override key=value, may be repeated")
	fs.StringVar(&o.log.Level, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&o.log.Format, "log-format", "text", "Log format (text, json)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.schemaPath == "" || o.from.url == "" || o.to.url == "" {
		return nil, errors.New("-schema, -from and -to are required")
	}
	return o, nil
}

func (o *options) newScheme(format string, schema string) (tuple.Scheme, error) {
	switch format {
	case FormatAvro:
		return avroscheme.Parse(schema, avroscheme.WithCodec(o.codec), avroscheme.WithDeflateLevel(o.level))
	case FormatText:
		return text.Parse(schema, text.WithDelimiter(o.delimiter), text.WithQuote(o.quote))
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func (o *options) jobConf() (tuple.JobConf, error) {
	conf := tuple.NewJobConf()
	for _, kv := range o.overrides {
		if err := conf.Set(kv); err != nil {
			return nil, err
		}
	}
	return conf, nil
}

// copyTuples reads every tuple of from and writes it to one new part of to.
// A failed copy leaves no part behind.
func copyTuples(ctx context.Context, from, to *tap.Tap, conf tuple.JobConf) (n int64, err error) {
	it, err := from.OpenForRead(ctx, conf)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	out, err := to.OpenForWrite(ctx, conf)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			out.Abort()
			return
		}
		err = out.Close()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return out.Count(), err
		}
		entry, err := it.Next()
		if err == io.EOF {
			return out.Count(), nil
		}
		if err != nil {
			return out.Count(), err
		}
		if err := out.AddEntry(entry); err != nil {
			return out.Count(), err
		}
	}
}

func run(ctx context.Context, o *options, logger *slog.Logger) (int64, error) {
	data, err := os.ReadFile(o.schemaPath)
	if err != nil {
		return 0, err
	}
	if _, err := scheme.ParseRecordSchema(string(data)); err != nil {
		return 0, fmt.Errorf("schema %s: %w", o.schemaPath, err)
	}
	conf, err := o.jobConf()
	if err != nil {
		return 0, err
	}

	metrics := tap.NewMetrics(nil)
	if err := metrics.Register(); err != nil {
		return 0, err
	}
	open := func(e endpoint) (*tap.Tap, error) {
		s, err := o.newScheme(e.format, string(data))
		if err != nil {
			return nil, err
		}
		return tap.Open(ctx, e.url, e.prefix, s, tap.WithLogger(logger), tap.WithMetrics(metrics))
	}

	from, err := open(o.from)
	if err != nil {
		return 0, err
	}
	defer from.Close()
	to, err := open(o.to)
	if err != nil {
		return 0, err
	}
	defer to.Close()

	return copyTuples(ctx, from, to, conf)
}

func main() {
	o, err := parseArgs(os.Args[1:])
	if err == flag.ErrHelp {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := logging.Setup(o.log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	n, err := run(ctx, o, logger)
	if err != nil {
		logger.Error("copy failed", "error", err, "tuples", n)
		os.Exit(1)
	}
	logger.Info("copy finished", "tuples", n,
		"from", o.from.url, "fromFormat", o.from.format, "to", o.to.url, "toFormat", o.to.format)
}
