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


// Command avro-fields generates Go variables holding the field names of
// Avro record schemas.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maxpoint/cascading-avro-go/generator"
	"github.com/maxpoint/cascading-avro-go/internal/logging"
)

func main() {
	cfg, opts, err := parseArgs(os.Args[1:])
	if err == flag.ErrHelp {
		os.Exit(0)
	}
	if err != nil {
		slog.Error("invalid arguments", "error", err)
		os.Exit(2)
	}

	logger := logging.Setup(cfg.Log)
	build := cfg.Build(generator.New(generator.WithLogger(logger)))

	generated, err := build.Run()
	if err != nil {
		logger.Error("generation failed", "error", err)
		os.Exit(1)
	}
	logger.Info("generation finished", "files", len(generated))

	if !opts.watch {
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("watching for schema changes",
		"source", cfg.SourceDirectory, "testSource", cfg.TestSourceDirectory)
	if err := build.Watch(ctx, generator.DefaultDebounce, nil); err != nil {
		logger.Error("watch failed", "error", err)
		os.Exit(1)
	}
}
