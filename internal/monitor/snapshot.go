// Package monitor implements the inactivity-debounced change detection at the
// heart of autocommit: observing the working tree, tracking how long the
// current change set has been quiet, and flushing it once it has settled.
package monitor

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fakeyudi/autocommit/internal/gitrepo"
)

// Snapshot is one cycle's view of the pending changes in the working tree.
type Snapshot struct {
	// LatestModification is the newest mtime among pending files that still
	// exist on disk. The zero value means no such file.
	LatestModification time.Time
	// Deleted holds the paths reported as removed.
	Deleted map[string]struct{}
}

// HasPendingChange reports whether anything at all is waiting to be committed.
func (s Snapshot) HasPendingChange() bool {
	return !s.LatestModification.IsZero() || len(s.Deleted) > 0
}

// ModTimeFunc resolves a path's last-modification time.
// ok is false when the path no longer exists.
type ModTimeFunc func(path string) (time.Time, bool)

// Observer produces a Snapshot per polling cycle. It stages all working-tree
// changes first so added, modified, renamed and untracked files show up
// uniformly in the status read.
type Observer struct {
	Repo    *gitrepo.Repo
	ModTime ModTimeFunc // if nil, stats files relative to Repo.WorkDir
}

// Observe builds a fresh Snapshot. An empty snapshot is a normal "nothing
// pending" result, not an error. Gateway failures propagate as
// *gitrepo.AccessError.
func (o *Observer) Observe() (Snapshot, error) {
	if err := o.Repo.StageAll(); err != nil {
		return Snapshot{}, err
	}

	status, err := o.Repo.ReadStatus()
	if err != nil {
		return Snapshot{}, err
	}

	modTime := o.ModTime
	if modTime == nil {
		modTime = o.statModTime
	}

	var latest time.Time
	for _, path := range status.Pending() {
		// A path can be staged and then deleted before this read; such
		// files carry no usable timestamp and are skipped.
		mtime, ok := modTime(path)
		if !ok {
			continue
		}
		if mtime.After(latest) {
			latest = mtime
		}
	}

	snap := Snapshot{LatestModification: latest}
	if len(status.Deleted) > 0 {
		snap.Deleted = make(map[string]struct{}, len(status.Deleted))
		for _, path := range status.Deleted {
			snap.Deleted[path] = struct{}{}
		}
	}
	return snap, nil
}

// statModTime is the default ModTimeFunc, reading mtimes from the filesystem.
func (o *Observer) statModTime(path string) (time.Time, bool) {
	info, err := os.Stat(filepath.Join(o.Repo.WorkDir, path))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
