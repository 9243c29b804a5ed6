// Package session holds the per-session state container for the active
// device session and the logout-time reset that prevents cross-session data
// leaks on shared kiosks.
package session

import (
	"log/slog"
	"sync"
	"time"

	"siport/internal/quota"
	"siport/internal/types"
)

// State is the explicit session-scoped state container. It replaces the
// process-lifetime store singletons of the original portal so that session
// boundary behavior is testable in isolation: everything a session derives
// from its user lives here and nowhere else.
//
// All fields are guarded by one mutex so ResetAll clears them in a single
// atomic step.
type State struct {
	mu sync.Mutex

	usage *quota.Tracker

	// cachedPermissions is advisory: the Action Gate re-resolves against the
	// live user record before every mutation. The cache only serves renders.
	cachedPermissions *types.Permissions

	favorites          map[string]bool
	recommendations    []string
	pendingConnections []types.Connection
	conversations      map[string][]types.Message
	notifications      []types.ActionEvent

	clock  types.Clock
	loc    *time.Location
	logger *slog.Logger
}

// New creates an empty session state. clock and loc feed the usage tracker;
// both may be nil (real time, UTC).
func New(clock types.Clock, loc *time.Location, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		usage:         quota.NewTracker(clock, loc),
		favorites:     make(map[string]bool),
		conversations: make(map[string][]types.Message),
		clock:         clock,
		loc:           loc,
		logger:        logger,
	}
}

// Usage returns the session's daily usage tracker. The tracker is created on
// first gated action for the session and lives for the session's lifetime;
// ResetAll detaches it.
func (s *State) Usage() *quota.Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}

// CachePermissions stores an advisory copy of the resolved permissions.
func (s *State) CachePermissions(p types.Permissions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	s.cachedPermissions = &cp
}

// CachedPermissions returns the advisory permission cache, if any.
func (s *State) CachedPermissions() (types.Permissions, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cachedPermissions == nil {
		return types.Permissions{}, false
	}
	return *s.cachedPermissions, true
}

// AddFavorite marks an exhibitor/profile as a favorite for this session.
func (s *State) AddFavorite(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites[id] = true
}

// Favorites returns the favorite IDs.
func (s *State) Favorites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.favorites))
	for id := range s.favorites {
		out = append(out, id)
	}
	return out
}

// SetRecommendations replaces the cached matchmaking recommendations.
func (s *State) SetRecommendations(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommendations = append([]string(nil), ids...)
}

// Recommendations returns the cached matchmaking recommendations.
func (s *State) Recommendations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.recommendations...)
}

// TrackPendingConnection records a connection request awaiting the other
// side's answer.
func (s *State) TrackPendingConnection(c types.Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingConnections = append(s.pendingConnections, c)
}

// PendingConnections returns the session's outstanding connection requests.
func (s *State) PendingConnections() []types.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Connection(nil), s.pendingConnections...)
}

// CacheMessage appends a sent message to the session's conversation cache.
func (s *State) CacheMessage(m types.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[m.ConversationID] = append(s.conversations[m.ConversationID], m)
}

// Conversation returns the cached messages for a conversation.
func (s *State) Conversation(id string) []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Message(nil), s.conversations[id]...)
}

// AddNotification records a notification shown to this session.
func (s *State) AddNotification(e types.ActionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, e)
}

// Notifications returns the session's notifications.
func (s *State) Notifications() []types.ActionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.ActionEvent(nil), s.notifications...)
}

// ResetAll clears the usage tracker, the cached permissions, and every
// per-user derived collection in one atomic step. After it returns, no query
// against this state returns data belonging to the previous session.
//
// It is idempotent and side-effect free on empty state: calling it twice in
// a row, or on a fresh session, is a no-op and never an error. Callers must
// invoke it synchronously before considering the session terminated.
func (s *State) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.usage = quota.NewTracker(s.clock, s.loc)
	s.cachedPermissions = nil
	s.favorites = make(map[string]bool)
	s.recommendations = nil
	s.pendingConnections = nil
	s.conversations = make(map[string][]types.Message)
	s.notifications = nil

	s.logger.Info("session state reset")
}
