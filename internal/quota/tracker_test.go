package quota

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siport/internal/types"
)

// fakeClock is a settable clock for day-boundary tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(at time.Time) *fakeClock {
	return &fakeClock{now: at}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = at
}

func casablanca(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Africa/Casablanca")
	require.NoError(t, err)
	return loc
}

func TestTracker_RecordUseAccumulatesWithinDay(t *testing.T) {
	loc := casablanca(t)
	clock := newFakeClock(time.Date(2026, 5, 12, 9, 0, 0, 0, loc))
	tr := NewTracker(clock, loc)

	tr.RecordUse(types.ActionConnection)
	tr.RecordUse(types.ActionConnection)
	tr.RecordUse(types.ActionMessage)

	u := tr.Peek()
	assert.Equal(t, 2, u.Connections)
	assert.Equal(t, 1, u.Messages)
	assert.Zero(t, u.Meetings)
}

func TestTracker_PeekDoesNotPersistReset(t *testing.T) {
	loc := casablanca(t)
	clock := newFakeClock(time.Date(2026, 5, 12, 23, 0, 0, 0, loc))
	tr := NewTracker(clock, loc)
	tr.RecordUse(types.ActionMeeting)

	// Cross local midnight. Peek must report zero without rewriting.
	clock.Set(time.Date(2026, 5, 13, 0, 5, 0, 0, loc))
	assert.Zero(t, tr.Peek().Meetings)
	assert.Zero(t, tr.Peek().Meetings, "repeated peeks stay stable")

	// Going "back" (stored state still holds the old day), an increment on
	// the new day rolls the counters exactly once.
	u := tr.RecordUse(types.ActionMeeting)
	assert.Equal(t, 1, u.Meetings)
}

func TestTracker_LazyResetAtLocalMidnight(t *testing.T) {
	loc := casablanca(t)
	clock := newFakeClock(time.Date(2026, 5, 12, 23, 59, 0, 0, loc))
	tr := NewTracker(clock, loc)

	for i := 0; i < 5; i++ {
		tr.RecordUse(types.ActionConnection)
	}
	assert.Equal(t, 5, tr.Peek().Connections)

	// 23:59 -> 00:01 crosses the venue-local calendar boundary even though
	// only two minutes elapsed. Not a rolling 24h window.
	clock.Set(time.Date(2026, 5, 13, 0, 1, 0, 0, loc))
	u := tr.RecordUse(types.ActionConnection)
	assert.Equal(t, 1, u.Connections)
	assert.Equal(t, 0, u.Messages)
}

func TestTracker_Reserve_EnforcesCap(t *testing.T) {
	tr := NewTracker(nil, nil)

	for i := 0; i < 3; i++ {
		_, err := tr.Reserve(types.ActionMessage, 3)
		require.NoError(t, err)
	}

	_, err := tr.Reserve(types.ActionMessage, 3)
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeQuotaExceededDaily, appErr.Code)
	assert.Equal(t, 3, appErr.Details["used"])
	assert.Equal(t, 3, appErr.Details["cap"])

	// Denial leaves the counter untouched.
	assert.Equal(t, 3, tr.Peek().Messages)
}

func TestTracker_Reserve_ZeroCapAlwaysDenies(t *testing.T) {
	tr := NewTracker(nil, nil)

	_, err := tr.Reserve(types.ActionConnection, 0)
	require.Error(t, err)
	assert.Zero(t, tr.Peek().Connections)
}

func TestTracker_Reserve_UnlimitedNeverDenies(t *testing.T) {
	tr := NewTracker(nil, nil)

	for i := 0; i < 500; i++ {
		_, err := tr.Reserve(types.ActionMeeting, types.Unlimited)
		require.NoError(t, err)
	}
	assert.Equal(t, 500, tr.Peek().Meetings)
}

func TestTracker_Reserve_AtMostNUnderConcurrency(t *testing.T) {
	tr := NewTracker(nil, nil)
	const limit = 10
	const workers = 100

	var granted int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := tr.Reserve(types.ActionConnection, limit); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, limit, granted)
	assert.Equal(t, limit, tr.Peek().Connections)
}

func TestReservation_ReleaseRollsBackOnce(t *testing.T) {
	tr := NewTracker(nil, nil)

	res, err := tr.Reserve(types.ActionMessage, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Peek().Messages)

	res.Release()
	assert.Zero(t, tr.Peek().Messages)

	res.Release() // idempotent
	assert.Zero(t, tr.Peek().Messages)
}

func TestReservation_ReleaseAfterMidnightIsNoop(t *testing.T) {
	loc := casablanca(t)
	clock := newFakeClock(time.Date(2026, 5, 12, 23, 58, 0, 0, loc))
	tr := NewTracker(clock, loc)

	res, err := tr.Reserve(types.ActionConnection, 5)
	require.NoError(t, err)

	// The day rolls and the new day accumulates fresh usage.
	clock.Set(time.Date(2026, 5, 13, 8, 0, 0, 0, loc))
	tr.RecordUse(types.ActionConnection)

	// Yesterday's rollback must not eat into today's counter.
	res.Release()
	assert.Equal(t, 1, tr.Peek().Connections)
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(nil, nil)
	tr.RecordUse(types.ActionConnection)
	tr.RecordUse(types.ActionMessage)

	tr.Reset()
	u := tr.Peek()
	assert.Zero(t, u.Connections)
	assert.Zero(t, u.Messages)

	tr.Reset() // idempotent
	assert.Zero(t, tr.Peek().Connections)
}
