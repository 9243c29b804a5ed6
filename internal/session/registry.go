package session

import (
	"log/slog"
	"sync"
	"time"

	"siport/internal/types"
)

// Registry maps authenticated users to their session state. Each user gets
// their own State, created lazily on first access, so one user's usage
// counters, permission cache, and derived collections are invisible to every
// other user served by the same process.
type Registry struct {
	mu     sync.Mutex
	states map[string]*State

	clock  types.Clock
	loc    *time.Location
	logger *slog.Logger
}

// NewRegistry creates an empty Registry. clock and loc feed each session's
// usage tracker; both may be nil (real time, UTC).
func NewRegistry(clock types.Clock, loc *time.Location, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		states: make(map[string]*State),
		clock:  clock,
		loc:    loc,
		logger: logger,
	}
}

// StateFor returns the session state for the given user, creating it on
// first access. Repeated calls for the same user return the same State.
func (r *Registry) StateFor(userID string) *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.states[userID]
	if !ok {
		s = New(r.clock, r.loc, r.logger)
		r.states[userID] = s
	}
	return s
}

// Reset clears the given user's session state and drops it from the
// registry. Only that user's entry is touched; callers still holding the old
// State see it emptied, and the next StateFor starts fresh. Idempotent: a
// user with no entry is a no-op.
func (r *Registry) Reset(userID string) {
	r.mu.Lock()
	s, ok := r.states[userID]
	if ok {
		delete(r.states, userID)
	}
	r.mu.Unlock()

	if ok {
		s.ResetAll()
	}
	r.logger.Info("session state dropped", "user_id", userID)
}
