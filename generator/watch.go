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
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for changes to settle
const DefaultDebounce = 500 * time.Millisecond

// Watch runs the build whenever a schema file below one of its source
// directories is created, written, renamed or removed, until ctx is done.
// Changes arriving within debounce of each other trigger a single run.
// Build failures are logged and do not stop the watch.
func (b *Build) Watch(ctx context.Context, debounce time.Duration, done func([]string, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	g := b.Generator
	if g == nil {
		g = New()
	}
	for _, set := range []Set{b.Main, b.Test} {
		if !set.present() {
			continue
		}
		if err := addTree(watcher, set.SourceDirectory); err != nil {
			return err
		}
	}

	trigger := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				// new directories are watched too
				addTree(watcher, event.Name)
			}
			if event.Op == fsnotify.Chmod || !strings.HasSuffix(event.Name, ".avsc") {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
		case <-trigger:
			generated, err := b.Run()
			if err != nil {
				g.logger.Error("build failed", "error", err)
			} else {
				g.logger.Info("build finished", "files", len(generated))
			}
			if done != nil {
				done(generated, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.logger.Warn("watch error", "error", err)
		}
	}
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
