package types

// Role identifies the account type of a portal user. Roles are assigned by
// the external user store and change only through an explicit account-type
// change event; this core treats them as read-only input.
type Role string

const (
	RoleVisitor   Role = "visitor"
	RoleExhibitor Role = "exhibitor"
	RolePartner   Role = "partner"
	RoleAdmin     Role = "admin"
	RoleSecurity  Role = "security"
)

// Tier identifies a subscription/pass level within a role. The valid values
// are role-scoped; the catalog in internal/tiers is the authority for which
// (Role, Tier) pairs exist. Admin and security accounts carry no tier
// (TierNone).
type Tier string

const (
	TierNone Tier = ""

	// Visitor passes.
	TierVisitorFree    Tier = "free"
	TierVisitorPremium Tier = "premium"
	TierVisitorVIP     Tier = "vip"

	// Exhibitor stand levels, keyed by booked surface.
	TierExhibitorBasic9      Tier = "basic_9"
	TierExhibitorStandard18  Tier = "standard_18"
	TierExhibitorPremium36   Tier = "premium_36"
	TierExhibitorElite54Plus Tier = "elite_54plus"

	// Partner sponsorship levels.
	TierPartnerBronze   Tier = "bronze"
	TierPartnerSilver   Tier = "silver"
	TierPartnerGold     Tier = "gold"
	TierPartnerPlatinum Tier = "platinum"
)

// ActionKind identifies a daily-limited networking action.
type ActionKind string

const (
	ActionConnection ActionKind = "connection"
	ActionMessage    ActionKind = "message"
	ActionMeeting    ActionKind = "meeting"
)

// EventAccessLevel describes how much of the event programme a capability
// set opens up.
type EventAccessLevel string

const (
	EventAccessNone    EventAccessLevel = "none"
	EventAccessLimited EventAccessLevel = "limited"
	EventAccessFull    EventAccessLevel = "full"
)

// ConnectionStatus is the lifecycle state of a networking connection request.
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionDeclined ConnectionStatus = "declined"
)

// MeetingStatus is the lifecycle state of a networking meeting request.
type MeetingStatus string

const (
	MeetingRequested MeetingStatus = "requested"
	MeetingConfirmed MeetingStatus = "confirmed"
	MeetingCancelled MeetingStatus = "cancelled"
)

// AppointmentStatus is the lifecycle state of a B2B appointment. Only
// confirmed appointments consume the standing appointment quota.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Unlimited is the sentinel cap value meaning "no limit". Carried over from
// the source system: 0 means zero (free visitors really get nothing), -1
// means unbounded.
const Unlimited = -1

// ActionEventType identifies a domain action event published for the
// external notification system.
type ActionEventType string

const (
	EventConnectionRequested  ActionEventType = "connection_requested"
	EventMessageSent          ActionEventType = "message_sent"
	EventMeetingRequested     ActionEventType = "meeting_requested"
	EventAppointmentBooked    ActionEventType = "appointment_booked"
	EventAppointmentCancelled ActionEventType = "appointment_cancelled"
)
