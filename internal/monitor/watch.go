package monitor

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// WatchActivity starts a recursive fsnotify watcher on workDir and returns a
// channel that receives a signal whenever filesystem activity is seen. The
// monitor uses it in watch mode to cut the inter-cycle sleep short; the
// channel is buffered with capacity one, so bursts of events coalesce into a
// single wake. The watcher shuts down when ctx is cancelled.
func WatchActivity(ctx context.Context, workDir string) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Walk the directory tree and add a watcher for every subdirectory,
	// skipping the git metadata directory.
	if err := filepath.WalkDir(workDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	}); err != nil {
		watcher.Close()
		return nil, err
	}

	wake := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if insideGitDir(workDir, event.Name) {
					continue
				}
				select {
				case wake <- struct{}{}:
				default: // a wake is already queued
				}
				// If a new directory was created, watch it too.
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = watcher.Add(event.Name)
					}
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Watcher errors are non-fatal; continue watching.
			}
		}
	}()
	return wake, nil
}

// insideGitDir reports whether path lies under workDir/.git.
func insideGitDir(workDir, path string) bool {
	rel, err := filepath.Rel(workDir, path)
	if err != nil {
		return false
	}
	return rel == ".git" || strings.HasPrefix(rel, ".git"+string(filepath.Separator))
}
