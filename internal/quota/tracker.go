// Package quota implements the day-bounded usage tracking and quota
// arithmetic that gates networking actions. The day-boundary reset rule is
// defined once here, not re-derived per action kind.
package quota

import (
	"sync"
	"time"

	"siport/internal/types"
)

// Tracker holds the per-session counters of daily-limited actions. It is the
// single source of truth for "have I used up today's quota" within one
// session; it is never shared across devices (cross-device consistency is an
// accepted limitation, not a defect).
//
// The day boundary is the calendar midnight of the venue timezone, not a
// rolling 24-hour window. The reset is lazy: stored counters roll to zero on
// the first access of a new day, with LastReset advanced before the first
// increment of that day is recorded. There is no background timer.
type Tracker struct {
	mu    sync.Mutex
	usage types.DailyUsage
	clock types.Clock
	loc   *time.Location
}

// NewTracker creates a Tracker. clock may be nil (real time); loc may be nil
// (UTC). Production wiring passes the venue timezone from configuration.
func NewTracker(clock types.Clock, loc *time.Location) *Tracker {
	if clock == nil {
		clock = types.RealClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	t := &Tracker{clock: clock, loc: loc}
	t.usage.LastReset = t.clock.Now()
	return t
}

// localDay truncates a time to its calendar date in the venue timezone.
func (t *Tracker) localDay(at time.Time) time.Time {
	y, m, d := at.In(t.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.loc)
}

// sameDay reports whether two instants fall on the same venue-local
// calendar day.
func (t *Tracker) sameDay(a, b time.Time) bool {
	return t.localDay(a).Equal(t.localDay(b))
}

// rollLocked rewrites the stored counters to zero with LastReset advanced if
// the stored day is behind the current one. Caller holds t.mu.
func (t *Tracker) rollLocked(now time.Time) {
	if t.sameDay(t.usage.LastReset, now) {
		return
	}
	t.usage = types.DailyUsage{LastReset: now}
}

// Peek returns the counters as of now, applying the day-boundary rule to the
// returned view. Repeated calls within the same calendar day never change
// the stored counter: the stored value is only rewritten when an increment
// follows (RecordUse/Reserve).
func (t *Tracker) Peek() types.DailyUsage {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	if t.sameDay(t.usage.LastReset, now) {
		return t.usage
	}
	return types.DailyUsage{LastReset: now}
}

// RecordUse applies the day-boundary rule, increments the named counter by
// one, and returns the new counter. It does not check any cap; gated call
// sites go through Reserve instead.
func (t *Tracker) RecordUse(kind types.ActionKind) types.DailyUsage {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	t.rollLocked(now)
	t.incrementLocked(kind)
	return t.usage
}

func (t *Tracker) incrementLocked(kind types.ActionKind) {
	switch kind {
	case types.ActionConnection:
		t.usage.Connections++
	case types.ActionMessage:
		t.usage.Messages++
	case types.ActionMeeting:
		t.usage.Meetings++
	}
}

func (t *Tracker) decrementLocked(kind types.ActionKind) {
	switch kind {
	case types.ActionConnection:
		if t.usage.Connections > 0 {
			t.usage.Connections--
		}
	case types.ActionMessage:
		if t.usage.Messages > 0 {
			t.usage.Messages--
		}
	case types.ActionMeeting:
		if t.usage.Meetings > 0 {
			t.usage.Meetings--
		}
	}
}

// Reset zeroes the counters. Called by the session reset; idempotent.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage = types.DailyUsage{LastReset: t.clock.Now()}
}

// Reservation is an optimistically applied usage increment. Release rolls it
// back when the domain mutation it was reserved for fails. A reservation
// that is never released stays committed; Release is idempotent.
type Reservation struct {
	tracker *Tracker
	kind    types.ActionKind
	day     time.Time
	once    sync.Once
}

// Release rolls the reserved increment back. If the calendar day has rolled
// over since the reservation was taken, the rollback is a no-op: the fresh
// day's counter never goes negative on behalf of yesterday's failure.
func (r *Reservation) Release() {
	r.once.Do(func() {
		t := r.tracker
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.sameDay(t.usage.LastReset, r.day) {
			t.decrementLocked(r.kind)
		}
	})
}

// Reserve applies the day-boundary rule, checks the cap, and increments the
// counter -- all atomically under the tracker lock. This is what makes the
// at-most-N guarantee hold under overlapping invocations: two callers racing
// for the last unit cannot both see it free.
//
// limit uses the catalog convention: types.Unlimited (-1) means no limit and
// 0 means the action is never available. On exhaustion it returns a
// quota_exceeded_daily AppError and leaves the counter untouched.
func (t *Tracker) Reserve(kind types.ActionKind, limit int) (*Reservation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	t.rollLocked(now)

	if limit != types.Unlimited && t.usage.Count(kind) >= limit {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeQuotaExceededDaily,
			"daily quota exhausted for "+string(kind),
			nil,
			map[string]any{
				"kind": string(kind),
				"used": t.usage.Count(kind),
				"cap":  limit,
			},
		)
	}

	t.incrementLocked(kind)
	return &Reservation{tracker: t, kind: kind, day: now}, nil
}
