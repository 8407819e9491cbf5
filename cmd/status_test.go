package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/autocommit/internal/state"
)

// executeCommand runs a cobra command with the given args and captures combined output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

// isolateEnv points all config and state lookups at temp directories and
// clears the monitor environment variables.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	for _, key := range []string{
		"REPO_PATH", "AUTHOR_NAME", "AUTHOR_EMAIL",
		"CHECK_INTERVAL_MINUTES", "INACTIVITY_THRESHOLD_MINUTES", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

// TestStatusNoRun verifies the status command reports when no monitor is up.
func TestStatusNoRun(t *testing.T) {
	isolateEnv(t)

	out, err := executeCommand(rootCmd, "status")
	if err != nil {
		t.Fatalf("status command error: %v", err)
	}
	if !strings.Contains(out, "no monitor running") {
		t.Errorf("expected 'no monitor running', got:\n%s", out)
	}
}

// TestStatusShowsRunDetails verifies the status command prints the persisted
// run fields.
func TestStatusShowsRunDetails(t *testing.T) {
	isolateEnv(t)

	store, err := state.NewStore()
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	pending := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	run := &state.Run{
		ID:           "test-run",
		PID:          4242,
		RepoPath:     "/work/project",
		Branch:       "main",
		StartTime:    pending.Add(-time.Hour),
		LastCycle:    pending,
		PendingSince: &pending,
		CommitCount:  7,
	}
	if err := store.Save(run); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := executeCommand(rootCmd, "status")
	if err != nil {
		t.Fatalf("status command error: %v", err)
	}
	for _, want := range []string{"/work/project", "branch main", "pid 4242", "Commits: 7", "Pending since:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}
