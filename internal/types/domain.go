package types

import "time"

// Permissions is the capability set derived from (Role, Tier). It is never
// persisted: the resolver recomputes it from the tier catalog on every
// permission check, and two calls with the same inputs always yield an
// identical value.
//
// Numeric caps use Unlimited (-1) for "no limit"; 0 really means zero.
type Permissions struct {
	CanMakeConnections  bool             `json:"can_make_connections"`
	CanSendMessages     bool             `json:"can_send_messages"`
	CanScheduleMeetings bool             `json:"can_schedule_meetings"`
	EventAccess         EventAccessLevel `json:"event_access"`

	MaxConnectionsPerDay int `json:"max_connections_per_day"`
	MaxMessagesPerDay    int `json:"max_messages_per_day"`
	MaxMeetingsPerDay    int `json:"max_meetings_per_day"`

	// AppointmentQuota is a standing cap on concurrently confirmed B2B
	// appointments, not a per-day allowance.
	AppointmentQuota int `json:"appointment_quota"`

	PriorityLevel    int  `json:"priority_level"` // 1-10, higher wins matchmaking ties
	CanBypassQueue   bool `json:"can_bypass_queue"`
	CanAccessLounge  bool `json:"can_access_vip_lounge"`
	CanViewAnalytics bool `json:"can_view_analytics"`
}

// DailyCap returns the per-day cap for the given action kind.
func (p Permissions) DailyCap(kind ActionKind) int {
	switch kind {
	case ActionConnection:
		return p.MaxConnectionsPerDay
	case ActionMessage:
		return p.MaxMessagesPerDay
	case ActionMeeting:
		return p.MaxMeetingsPerDay
	default:
		return 0
	}
}

// Allows reports whether the capability set permits the action class at all,
// independent of remaining quota.
func (p Permissions) Allows(kind ActionKind) bool {
	switch kind {
	case ActionConnection:
		return p.CanMakeConnections
	case ActionMessage:
		return p.CanSendMessages
	case ActionMeeting:
		return p.CanScheduleMeetings
	default:
		return false
	}
}

// DailyUsage holds the per-session counters of daily-limited actions.
// LastReset is the venue-local calendar day of the most recent increment or
// explicit reset; readers must treat the counters as zero on any later
// calendar day.
type DailyUsage struct {
	Connections int       `json:"connections"`
	Messages    int       `json:"messages"`
	Meetings    int       `json:"meetings"`
	LastReset   time.Time `json:"last_reset"`
}

// Count returns the counter for the given action kind.
func (u DailyUsage) Count(kind ActionKind) int {
	switch kind {
	case ActionConnection:
		return u.Connections
	case ActionMessage:
		return u.Messages
	case ActionMeeting:
		return u.Meetings
	default:
		return 0
	}
}

// RemainingQuota reports how many daily-limited actions of each kind remain
// today. Unlimited (-1) passes through from the capability set.
type RemainingQuota struct {
	Connections int `json:"connections"`
	Messages    int `json:"messages"`
	Meetings    int `json:"meetings"`
}

// For returns the remaining count for the given action kind.
func (r RemainingQuota) For(kind ActionKind) int {
	switch kind {
	case ActionConnection:
		return r.Connections
	case ActionMessage:
		return r.Messages
	case ActionMeeting:
		return r.Meetings
	default:
		return 0
	}
}

// UserProfile is the read-only view of a user record supplied by the
// external user store. Tier may be empty when only a legacy free-form pass
// status is present; PassStatus then feeds the normalizer.
type UserProfile struct {
	UserID     string `json:"user_id"`
	Role       Role   `json:"role"`
	Tier       Tier   `json:"tier"`
	PassStatus string `json:"pass_status,omitempty"`
}

// Connection is a networking connection request between two attendees.
type Connection struct {
	ID        string           `json:"id"`
	FromUser  string           `json:"from_user"`
	ToUser    string           `json:"to_user"`
	Status    ConnectionStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// Message is a networking message enqueued for the external chat transport.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}

// Meeting is a networking meeting request.
type Meeting struct {
	ID          string        `json:"id"`
	RequesterID string        `json:"requester_id"`
	InviteeID   string        `json:"invitee_id"`
	StartsAt    time.Time     `json:"starts_at"`
	Status      MeetingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Appointment is a B2B appointment against an exhibitor time slot. Only
// confirmed appointments count toward the visitor's standing quota.
type Appointment struct {
	ID         string            `json:"id"`
	TimeSlotID string            `json:"time_slot_id"`
	VisitorID  string            `json:"visitor_id"`
	ExhibitorID string           `json:"exhibitor_id"`
	Status     AppointmentStatus `json:"status"`
	Notes      string            `json:"notes,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// ActionEvent is the payload published to the external notification system
// when a gated action completes.
type ActionEvent struct {
	Type       ActionEventType `json:"type"`
	UserID     string          `json:"user_id"`
	Role       Role            `json:"role"`
	Tier       Tier            `json:"tier"`
	EntityID   string          `json:"entity_id"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// QuotaSnapshot is the quota-widget payload: live remaining daily quotas plus
// standing appointment usage.
type QuotaSnapshot struct {
	Permissions  Permissions    `json:"permissions"`
	Usage        DailyUsage     `json:"usage"`
	Remaining    RemainingQuota `json:"remaining"`
	Appointments struct {
		Confirmed int `json:"confirmed"`
		Quota     int `json:"quota"`
	} `json:"appointments"`
}
