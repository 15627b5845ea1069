// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package depgraph

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits after the last change before
// calling back.
const DefaultDebounce = 300 * time.Millisecond

// Watch calls onChange whenever a source file under root is written,
// created, removed or renamed, coalescing bursts of events.
//
// # Description
//
// Every directory under root that the scanner would not exclude is added to
// an fsnotify watcher; directories created later are added as they appear.
// Watch blocks on the calling goroutine until ctx is cancelled (which
// returns nil) or onChange returns an error (which is returned).
//
// # Limitations
//
//   - Directories moved into the tree are watched but not walked
func (s *Scanner) Watch(ctx context.Context, root string, debounce time.Duration, onChange func(context.Context) error) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := s.addTree(watcher, root); err != nil {
		return err
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if s.relevant(root, watcher, event) {
				timer.Reset(debounce)
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", "error", werr)

		case <-timer.C:
			if err := onChange(ctx); err != nil {
				return err
			}
		}
	}
}

func (s *Scanner) addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Debug("watch walk error", "path", p, "error", err)
			if d != nil && d.IsDir() && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root {
			rel, _ := filepath.Rel(root, p)
			if s.Excluded(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

// relevant filters events down to source files, registering new
// directories on the way.
func (s *Scanner) relevant(root string, watcher *fsnotify.Watcher, event fsnotify.Event) bool {
	rel, err := filepath.Rel(root, event.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if s.Excluded(rel) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
			if addErr := watcher.Add(event.Name); addErr != nil {
				s.logger.Debug("watch add failed", "path", event.Name, "error", addErr)
			}
			return false
		}
	}

	if !s.isSource(rel) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
