// Package filewatcher reports settled changes to dataset files using fsnotify.
package filewatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/assetchat/internal/core/ports/driven"
	"github.com/custodia-labs/assetchat/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.FileWatcher = (*Watcher)(nil)

// DefaultDebounce is how long the directory must be quiet before a burst
// of changes is reported.
const DefaultDebounce = 500 * time.Millisecond

// Config holds watcher configuration.
type Config struct {
	// Files are the base names to report. Empty means every .json file.
	Files []string

	// Debounce is the quiet period (default: 500ms).
	Debounce time.Duration
}

// Watcher watches one directory, non-recursively.
type Watcher struct {
	files    map[string]struct{}
	debounce time.Duration
}

// New creates a watcher.
func New(cfg Config) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	files := make(map[string]struct{}, len(cfg.Files))
	for _, f := range cfg.Files {
		files[f] = struct{}{}
	}
	return &Watcher{files: files, debounce: cfg.Debounce}
}

// Watch starts monitoring dir. The returned channel is closed when ctx is
// done or the underlying watcher fails.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan driven.WatchEvent, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	events := make(chan driven.WatchEvent, 1)
	go w.loop(ctx, fw, events)
	return events, nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, out chan<- driven.WatchEvent) {
	defer close(out)
	defer fw.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod || !w.isWatched(event.Name) {
				continue
			}
			logger.Debug("Dataset change: %s %s", event.Op, filepath.Base(event.Name))
			pending[event.Name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("File watcher error: %v", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			files := make([]string, 0, len(pending))
			for f := range pending {
				files = append(files, f)
			}
			sort.Strings(files)
			pending = make(map[string]struct{})

			select {
			case out <- driven.WatchEvent{Files: files}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (w *Watcher) isWatched(path string) bool {
	name := filepath.Base(path)
	if len(w.files) == 0 {
		return filepath.Ext(name) == ".json"
	}
	_, ok := w.files[name]
	return ok
}
