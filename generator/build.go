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


package generator

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// DefaultIncludes selects every schema file below a source directory
var DefaultIncludes = []string{"**/*.avsc"}

// FileSet selects files below a directory by include and exclude patterns
type FileSet struct {
	Directory string
	Includes  []string
	Excludes  []string
}

// Files returns the slash separated paths, relative to the directory, of
// the regular files matching an include and no exclude pattern. Symbolic
// links are not followed.
func (f FileSet) Files() ([]string, error) {
	includes := f.Includes
	if len(includes) == 0 {
		includes = DefaultIncludes
	}

	var result []string
	err := filepath.WalkDir(f.Directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(f.Directory, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matchAny(rel, includes) && !matchAny(rel, f.Excludes) {
			result = append(result, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(result)
	return result, nil
}

func matchAny(path string, patterns []string) bool {
	for _, p := range patterns {
		if Match(path, p) {
			return true
		}
	}
	return false
}

// Set is a source directory compiled into an output directory
type Set struct {
	SourceDirectory string
	OutputDirectory string
	Includes        []string
	Excludes        []string
}

func (s Set) present() bool {
	if s.SourceDirectory == "" {
		return false
	}
	info, err := os.Stat(s.SourceDirectory)
	return err == nil && info.IsDir()
}

// Build compiles the main and test schema sets
type Build struct {
	Main      Set
	Test      Set
	Generator *Generator
}

// Run compiles every selected file of each present set and returns the
// generated files. It fails if neither source directory exists and stops
// at the first file that cannot be compiled.
func (b *Build) Run() ([]string, error) {
	hasMain, hasTest := b.Main.present(), b.Test.present()
	if !hasMain && !hasTest {
		return nil, fmt.Errorf("neither sourceDirectory: %s or testSourceDirectory: %s are directories",
			b.Main.SourceDirectory, b.Test.SourceDirectory)
	}

	g := b.Generator
	if g == nil {
		g = New()
	}

	var generated []string
	for _, set := range []struct {
		Set
		ok bool
	}{{b.Main, hasMain}, {b.Test, hasTest}} {
		if !set.ok {
			continue
		}
		files, err := FileSet{
			Directory: set.SourceDirectory,
			Includes:  set.Includes,
			Excludes:  set.Excludes,
		}.Files()
		if err != nil {
			return generated, err
		}
		for _, filename := range files {
			dest, err := g.CompileFile(filename, set.SourceDirectory, set.OutputDirectory)
			if err != nil {
				return generated, fmt.Errorf("error compiling schema file %s to %s: %w", filename, set.OutputDirectory, err)
			}
			generated = append(generated, dest)
		}
	}
	return generated, nil
}
