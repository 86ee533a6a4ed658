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
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/maxpoint/cascading-avro-go/generator"
	"github.com/maxpoint/cascading-avro-go/internal/cli"
	"github.com/maxpoint/cascading-avro-go/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config is the avro-fields configuration file
type Config struct {
	SourceDirectory     string         `yaml:"sourceDirectory"`
	OutputDirectory     string         `yaml:"outputDirectory"`
	TestSourceDirectory string         `yaml:"testSourceDirectory"`
	TestOutputDirectory string         `yaml:"testOutputDirectory"`
	Includes            []string       `yaml:"includes"`
	Excludes            []string       `yaml:"excludes"`
	TestIncludes        []string       `yaml:"testIncludes"`
	TestExcludes        []string       `yaml:"testExcludes"`
	Log                 logging.Config `yaml:"log"`
}

// DefaultConfig returns the configuration used for absent settings
func DefaultConfig() Config {
	return Config{
		SourceDirectory:     "src/main/avro",
		OutputDirectory:     "gen/avro",
		TestSourceDirectory: "src/test/avro",
		TestOutputDirectory: "gen/avro-test",
		Includes:            append([]string(nil), generator.DefaultIncludes...),
		TestIncludes:        append([]string(nil), generator.DefaultIncludes...),
		Log:                 logging.Config{Format: "text", Level: "info"},
	}
}

// LoadConfig reads path over the defaults. A missing file yields the
// defaults unless required is set.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Build returns the generator build described by the configuration
func (c Config) Build(g *generator.Generator) *generator.Build {
	return &generator.Build{
		Main: generator.Set{
			SourceDirectory: c.SourceDirectory,
			OutputDirectory: c.OutputDirectory,
			Includes:        c.Includes,
			Excludes:        c.Excludes,
		},
		Test: generator.Set{
			SourceDirectory: c.TestSourceDirectory,
			OutputDirectory: c.TestOutputDirectory,
			Includes:        c.TestIncludes,
			Excludes:        c.TestExcludes,
		},
		Generator: g,
	}
}

type options struct {
	configPath string
	watch      bool
}

// parseArgs loads the configuration named by -config and applies the
// flags given on the command line over it.
func parseArgs(args []string) (Config, options, error) {
	fs := flag.NewFlagSet("avro-fields", flag.ContinueOnError)
	var (
		opts                       options
		includes, excludes         cli.Strings
		testIncludes, testExcludes cli.Strings
		source, output             string
		testSource, testOutput     string
		logLevel, logFormat        string
	)
	fs.StringVar(&opts.configPath, "config", "avro-fields.yaml", "YAML configuration file")
	fs.BoolVar(&opts.watch, "watch", false, "Regenerate whenever a schema file changes")
	fs.StringVar(&source, "source", "", "Schema source directory")
	fs.StringVar(&output, "output", "", "Output directory for generated files")
	fs.StringVar(&testSource, "test-source", "", "Test schema source directory")
	fs.StringVar(&testOutput, "test-output", "", "Output directory for generated test files")
	fs.Var(&includes, "include", "Include pattern, may be repeated")
	fs.Var(&excludes, "exclude", "Exclude pattern, may be repeated")
	fs.Var(&testIncludes, "test-include", "Test include pattern, may be repeated")
	fs.Var(&testExcludes, "test-exclude", "Test exclude pattern, may be repeated")
	fs.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&logFormat, "log-format", "", "Log format (text, json)")
	if err := fs.Parse(args); err != nil {
		return Config{}, opts, err
	}

	cfg, err := LoadConfig(opts.configPath, cli.IsSet(fs, "config"))
	if err != nil {
		return cfg, opts, err
	}
	for name, apply := range map[string]func(){
		"source":       func() { cfg.SourceDirectory = source },
		"output":       func() { cfg.OutputDirectory = output },
		"test-source":  func() { cfg.TestSourceDirectory = testSource },
		"test-output":  func() { cfg.TestOutputDirectory = testOutput },
		"include":      func() { cfg.Includes = includes },
		"exclude":      func() { cfg.Excludes = excludes },
		"test-include": func() { cfg.TestIncludes = testIncludes },
		"test-exclude": func() { cfg.TestExcludes = testExcludes },
		"log-level":    func() { cfg.Log.Level = logLevel },
		"log-format":   func() { cfg.Log.Format = logFormat },
	} {
		if cli.IsSet(fs, name) {
			apply()
		}
	}
	return cfg, opts, nil
}
