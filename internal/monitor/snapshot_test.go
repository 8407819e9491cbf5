package monitor

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fakeyudi/autocommit/internal/gitrepo"
)

// fakeOracle returns a ModTimeFunc backed by a map; paths not present are
// treated as no longer existing on disk.
func fakeOracle(mtimes map[string]time.Time) ModTimeFunc {
	return func(path string) (time.Time, bool) {
		t, ok := mtimes[path]
		return t, ok
	}
}

func TestObserveStagesBeforeReadingStatus(t *testing.T) {
	var calls []string
	repo := &gitrepo.Repo{
		WorkDir: "/repo",
		Runner: func(workDir string, args ...string) (string, error) {
			calls = append(calls, strings.Join(args, " "))
			return "", nil
		},
	}
	obs := &Observer{Repo: repo, ModTime: fakeOracle(nil)}

	if _, err := obs.Observe(); err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if len(calls) != 2 || calls[0] != "add -A" || calls[1] != "status --porcelain" {
		t.Errorf("expected stage-all then status, got %v", calls)
	}
}

func TestObserveTakesMaxMtimeAcrossCategories(t *testing.T) {
	repo := &gitrepo.Repo{
		WorkDir: "/repo",
		Runner: func(workDir string, args ...string) (string, error) {
			if args[0] == "status" {
				return "A  new.go\nM  changed.go\n?? scratch.txt\n", nil
			}
			return "", nil
		},
	}
	obs := &Observer{Repo: repo, ModTime: fakeOracle(map[string]time.Time{
		"new.go":      base.Add(1 * time.Minute),
		"changed.go":  base.Add(5 * time.Minute),
		"scratch.txt": base.Add(3 * time.Minute),
	})}

	snap, err := obs.Observe()
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if !snap.LatestModification.Equal(base.Add(5 * time.Minute)) {
		t.Errorf("expected latest mtime %v, got %v", base.Add(5*time.Minute), snap.LatestModification)
	}
	if len(snap.Deleted) != 0 {
		t.Errorf("expected no deletions, got %v", snap.Deleted)
	}
}

// A path staged and then deleted before the status read has no file to stat;
// it must be excluded rather than fail the cycle.
func TestObserveSkipsVanishedFiles(t *testing.T) {
	repo := &gitrepo.Repo{
		WorkDir: "/repo",
		Runner: func(workDir string, args ...string) (string, error) {
			if args[0] == "status" {
				return "M  kept.go\nM  vanished.go\n", nil
			}
			return "", nil
		},
	}
	obs := &Observer{Repo: repo, ModTime: fakeOracle(map[string]time.Time{
		"kept.go": base,
	})}

	snap, err := obs.Observe()
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if !snap.LatestModification.Equal(base) {
		t.Errorf("expected mtime of surviving file %v, got %v", base, snap.LatestModification)
	}
}

func TestObserveReportsDeletedPaths(t *testing.T) {
	repo := &gitrepo.Repo{
		WorkDir: "/repo",
		Runner: func(workDir string, args ...string) (string, error) {
			if args[0] == "status" {
				return "D  gone.go\nD  also/gone.txt\n", nil
			}
			return "", nil
		},
	}
	obs := &Observer{Repo: repo, ModTime: fakeOracle(nil)}

	snap, err := obs.Observe()
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if !snap.LatestModification.IsZero() {
		t.Errorf("expected no mtime for delete-only status, got %v", snap.LatestModification)
	}
	want := set("gone.go", "also/gone.txt")
	if len(snap.Deleted) != len(want) {
		t.Fatalf("expected deleted set %v, got %v", want, snap.Deleted)
	}
	for p := range want {
		if _, ok := snap.Deleted[p]; !ok {
			t.Errorf("missing deleted path %q", p)
		}
	}
	if !snap.HasPendingChange() {
		t.Error("delete-only snapshot should count as a pending change")
	}
}

// A filename with a space arrives C-quoted from git; the observer must stat
// the real filename or the change reads as a clean tree and never commits.
func TestObserveResolvesQuotedPaths(t *testing.T) {
	repo := &gitrepo.Repo{
		WorkDir: "/repo",
		Runner: func(workDir string, args ...string) (string, error) {
			if args[0] == "status" {
				return `M  "my file.txt"` + "\n", nil
			}
			return "", nil
		},
	}
	obs := &Observer{Repo: repo, ModTime: fakeOracle(map[string]time.Time{
		"my file.txt": base,
	})}

	snap, err := obs.Observe()
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if !snap.HasPendingChange() {
		t.Fatal("modified file with a space in its name was reported as a clean tree")
	}
	if !snap.LatestModification.Equal(base) {
		t.Errorf("expected mtime %v, got %v", base, snap.LatestModification)
	}
}

// A clean tree is a normal result: empty snapshot, no error.
func TestObserveCleanTree(t *testing.T) {
	repo := &gitrepo.Repo{
		WorkDir: "/repo",
		Runner: func(workDir string, args ...string) (string, error) {
			return "", nil
		},
	}
	obs := &Observer{Repo: repo, ModTime: fakeOracle(nil)}

	snap, err := obs.Observe()
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if snap.HasPendingChange() {
		t.Errorf("expected clean snapshot, got %+v", snap)
	}
}

func TestObservePropagatesGatewayFailure(t *testing.T) {
	boom := errors.New("index.lock held")
	repo := &gitrepo.Repo{
		WorkDir: "/repo",
		Runner: func(workDir string, args ...string) (string, error) {
			return "", boom
		},
	}
	obs := &Observer{Repo: repo, ModTime: fakeOracle(nil)}

	_, err := obs.Observe()
	var accessErr *gitrepo.AccessError
	if !errors.As(err, &accessErr) {
		t.Fatalf("expected *gitrepo.AccessError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}
