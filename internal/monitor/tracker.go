package monitor

import (
	"maps"
	"time"
)

// Decision is the outcome of evaluating one polling cycle.
type Decision int

const (
	// DecisionNoOp means nothing is pending; there is nothing to track.
	DecisionNoOp Decision = iota
	// DecisionContinue means changes are pending but still too fresh to flush.
	DecisionContinue
	// DecisionFlush means the pending changes have been quiet long enough
	// and should be committed and pushed now.
	DecisionFlush
)

func (d Decision) String() string {
	switch d {
	case DecisionNoOp:
		return "noop"
	case DecisionContinue:
		return "continue"
	case DecisionFlush:
		return "flush"
	}
	return "unknown"
}

// State is the tracking state carried between cycles. The zero value is the
// empty state: nothing pending, nothing remembered.
type State struct {
	// Reference is the timestamp inactivity is measured from for the change
	// set currently being tracked. Zero means no change set is tracked.
	Reference time.Time
	// Deleted is the deleted-path set seen last cycle. Deletions carry no
	// mtime, so fresh delete activity is inferred from this set changing.
	Deleted map[string]struct{}
}

// Tracker decides, cycle by cycle, when a pending change set has been
// inactive long enough to flush.
type Tracker struct {
	// Threshold is the required quiet period. Comparison is non-strict, so a
	// zero threshold flushes on the first cycle that sees a pending change.
	Threshold time.Duration
}

// Evaluate consumes one snapshot and the previous state, returning the
// decision for this cycle and the state to carry forward. It is a pure
// function: no clock reads, no mutation of its inputs.
//
// The reference time is the maximum of three candidates: the previous
// reference, the snapshot's latest mtime, and now when the deleted set
// changed. Taking the max means the inactivity clock only ever resets
// forward on new activity, never backward — a later cycle observing an older
// mtime (filesystem granularity, a touched-then-reverted file) cannot rewind
// it.
func (t Tracker) Evaluate(now time.Time, snap Snapshot, st State) (Decision, State) {
	if !snap.HasPendingChange() {
		// Nothing pending: stale tracking state must not linger.
		return DecisionNoOp, State{}
	}

	// Zero time serves as the lower sentinel for absent candidates.
	detected := st.Reference
	if snap.LatestModification.After(detected) {
		detected = snap.LatestModification
	}
	if !sameDeleted(snap.Deleted, st.Deleted) && now.After(detected) {
		detected = now
	}

	if now.Sub(detected) >= t.Threshold {
		// The flush is expected to clear everything pending.
		return DecisionFlush, State{}
	}

	return DecisionContinue, State{
		Reference: detected,
		Deleted:   maps.Clone(snap.Deleted),
	}
}

// sameDeleted reports whether two deleted-path sets hold the same members.
func sameDeleted(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for path := range a {
		if _, ok := b[path]; !ok {
			return false
		}
	}
	return true
}
