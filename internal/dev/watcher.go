package dev

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches a set of files and reports which one changed.
type FileWatcher struct {
	paths    []string
	debounce time.Duration
}

// NewFileWatcher creates a FileWatcher for paths. A file is reported once
// it has been quiet for debounce after its last write.
func NewFileWatcher(debounce time.Duration, paths ...string) *FileWatcher {
	return &FileWatcher{paths: paths, debounce: debounce}
}

// Watch begins watching and returns a channel that emits the path of every
// file that was written or created. A burst of writes to one file is
// reported once, after the last write. The channel closes when ctx is done.
//
// Parent directories are watched rather than the files themselves, so
// editors that save by rename are still seen.
func (w *FileWatcher) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	wanted := make(map[string]bool, len(w.paths))
	dirs := make(map[string]bool)
	for _, p := range w.paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			watcher.Close()
			return nil, err
		}
		wanted[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	out := make(chan string)

	go func() {
		defer close(out)
		defer watcher.Close()

		done := make(chan struct{})
		defer close(done)

		// Timers send here once a file has been quiet; stale generations
		// belong to timers that were superseded by a later write.
		type settled struct {
			name string
			gen  int
		}
		ready := make(chan settled)
		timers := make(map[string]*time.Timer)
		gens := make(map[string]int)
		defer func() {
			for _, t := range timers {
				t.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				name, err := filepath.Abs(event.Name)
				if err != nil || !wanted[name] {
					continue
				}
				if t, ok := timers[name]; ok {
					t.Stop()
				}
				gens[name]++
				s := settled{name: name, gen: gens[name]}
				timers[name] = time.AfterFunc(w.debounce, func() {
					select {
					case ready <- s:
					case <-done:
					}
				})

			case s := <-ready:
				if s.gen != gens[s.name] {
					continue
				}
				delete(timers, s.name)
				select {
				case out <- s.name:
				case <-ctx.Done():
					return
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Continue watching despite errors
			}
		}
	}()

	return out, nil
}
