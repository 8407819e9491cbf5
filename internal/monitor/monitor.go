package monitor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fakeyudi/autocommit/internal/gitrepo"
	"github.com/fakeyudi/autocommit/internal/state"
)

// Monitor drives the polling loop: one cycle observes the tree, evaluates the
// tracker, and flushes when the decision says so. Cycles run strictly
// sequentially; cancellation is honored only between cycles, never mid-flush.
type Monitor struct {
	Repo     *gitrepo.Repo
	Observer *Observer
	Tracker  Tracker
	Interval time.Duration

	AuthorName  string
	AuthorEmail string

	Logger *zap.Logger

	// Status, when non-nil, receives a best-effort Run update after every
	// cycle so `autocommit status` and `autocommit view` can inspect a live
	// daemon. Save failures never abort the loop.
	Status   Store
	RunState *state.Run

	// Wake, when non-nil, ends the inter-cycle sleep early (watch mode).
	Wake <-chan struct{}

	// Now allows tests to supply a deterministic clock.
	Now func() time.Time

	st          State
	pushPending bool
}

// Store is the subset of state.Store the monitor needs.
type Store interface {
	Save(r *state.Run) error
}

func (m *Monitor) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Run executes polling cycles until ctx is cancelled. Cycle errors are logged
// and leave the held tracker state untouched, so a failed flush retries from
// the same accumulated inactivity on the next cycle.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		m.Cycle()

		timer := time.NewTimer(m.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			m.Logger.Info("shutting down")
			return nil
		case <-timer.C:
		case <-m.Wake:
			// Filesystem activity noticed; poll again without waiting out
			// the full interval.
			timer.Stop()
		}
	}
}

// Cycle performs a single observe/evaluate/flush pass.
func (m *Monitor) Cycle() {
	now := m.now()

	if m.pushPending {
		m.retryPush()
	}

	snap, err := m.Observer.Observe()
	if err != nil {
		m.Logger.Error("observing working tree", zap.Error(err))
		m.recordCycle(now, err)
		return
	}

	decision, next := m.Tracker.Evaluate(now, snap, m.st)
	m.Logger.Debug("cycle evaluated",
		zap.Stringer("decision", decision),
		zap.Int("deleted", len(snap.Deleted)),
		zap.Time("latest_modification", snap.LatestModification))

	if decision == DecisionFlush {
		if err := m.flush(now); err != nil {
			m.Logger.Error("flush failed", zap.Error(err))
			m.recordCycle(now, err)
			return
		}
	}

	m.st = next
	m.recordCycle(now, nil)
}

// flush commits the staged changes and pushes the branch. A commit failure is
// returned so the cycle is abandoned with tracker state intact. A push
// failure after a successful commit is logged, not returned: the work is
// safely committed locally, and the push is retried on following cycles.
func (m *Monitor) flush(now time.Time) error {
	message := fmt.Sprintf("auto-commit %s", now.Format(time.RFC3339))
	hash, err := m.Repo.Commit(message, m.AuthorName, m.AuthorEmail, now)
	if err != nil {
		return err
	}
	m.Logger.Info("committed settled changes", zap.String("commit", hash))

	if m.RunState != nil {
		m.RunState.CommitCount++
		m.RunState.LastCommitHash = hash
		t := now
		m.RunState.LastCommitTime = &t
	}

	if err := m.Repo.Push(); err != nil {
		m.Logger.Warn("push failed, will retry next cycle", zap.Error(err))
		m.pushPending = true
		return nil
	}
	m.Logger.Info("pushed to remote")
	return nil
}

// retryPush reattempts the publish of an already-committed flush.
func (m *Monitor) retryPush() {
	if err := m.Repo.Push(); err != nil {
		m.Logger.Warn("push retry failed", zap.Error(err))
		return
	}
	m.pushPending = false
	m.Logger.Info("pushed to remote")
}

// recordCycle updates the persisted run status. Best-effort only.
func (m *Monitor) recordCycle(now time.Time, cycleErr error) {
	if m.Status == nil || m.RunState == nil {
		return
	}
	m.RunState.LastCycle = now
	m.RunState.PushPending = m.pushPending
	if m.st.Reference.IsZero() {
		m.RunState.PendingSince = nil
	} else {
		t := m.st.Reference
		m.RunState.PendingSince = &t
	}
	if cycleErr != nil {
		m.RunState.LastError = cycleErr.Error()
	} else {
		m.RunState.LastError = ""
	}
	if err := m.Status.Save(m.RunState); err != nil {
		m.Logger.Warn("saving run status", zap.Error(err))
	}
}
