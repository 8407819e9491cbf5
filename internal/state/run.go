package state

import "time"

// Run is the observable status of a monitor process. It is written after
// every polling cycle and read by the status and view commands. It is not
// tracker state: a restarted daemon starts measuring inactivity from scratch.
type Run struct {
	ID        string    `json:"id"`
	PID       int       `json:"pid"`
	RepoPath  string    `json:"repo_path"`
	Branch    string    `json:"branch"`
	StartTime time.Time `json:"start_time"`
	LastCycle time.Time `json:"last_cycle"`
	// PendingSince is the reference time of the change set currently aging
	// toward a flush; nil when the tree is clean.
	PendingSince   *time.Time `json:"pending_since,omitempty"`
	CommitCount    int        `json:"commit_count"`
	LastCommitTime *time.Time `json:"last_commit_time,omitempty"`
	LastCommitHash string     `json:"last_commit_hash,omitempty"`
	// PushPending is true when a commit succeeded but its push has not yet.
	PushPending bool   `json:"push_pending,omitempty"`
	LastError   string `json:"last_error,omitempty"`
}
