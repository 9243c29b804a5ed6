package types

import (
	"context"
	"time"
)

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// UserDirectory resolves the live user record from the external user store.
// The Action Gate consults it immediately before every mutating action so a
// stale cached tier can never widen access.
type UserDirectory interface {
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
}

// ConnectionStore persists networking connection requests.
type ConnectionStore interface {
	Create(ctx context.Context, conn *Connection) error
}

// MessageStore enqueues networking messages for the external chat transport.
type MessageStore interface {
	Create(ctx context.Context, msg *Message) error
}

// MeetingStore persists networking meeting requests.
type MeetingStore interface {
	Create(ctx context.Context, m *Meeting) error
}

// AppointmentStore persists B2B appointments and exposes the live confirmed
// count that backs the standing appointment quota. The count is always read
// live, never cached independently.
type AppointmentStore interface {
	Create(ctx context.Context, appt *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	Cancel(ctx context.Context, id string) error
	ConfirmedCount(ctx context.Context, visitorID string) (int, error)
}

// EventSink publishes domain action events for the external notification
// system. Publishing is best effort: a sink failure never fails the action.
type EventSink interface {
	Publish(ctx context.Context, event ActionEvent) error
}

// ActionMetrics records gated-action outcomes.
type ActionMetrics interface {
	RecordAllowed(ctx context.Context, kind ActionKind, role Role, tier Tier)
	RecordDenied(ctx context.Context, kind ActionKind, role Role, tier Tier, code ErrorCode)
}
