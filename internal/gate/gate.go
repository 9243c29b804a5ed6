// Package gate implements the mutating entry points for gated networking
// actions and B2B appointment booking. Every entry point re-resolves
// permissions against the live user record, reserves quota optimistically,
// performs the domain mutation, and rolls the reservation back if the
// mutation fails -- so usage counters and the domain collections stay
// mutually consistent.
package gate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"siport/internal/quota"
	"siport/internal/session"
	"siport/internal/tiers"
	"siport/internal/types"
)

// Gate wires the permission resolver, quota engine, session registry, and
// domain stores behind the gated action entry points. Session state is
// resolved per acting user on every call, never shared across users.
type Gate struct {
	directory types.UserDirectory
	resolver  *tiers.Resolver
	engine    *quota.Engine
	states    *session.Registry

	connections  types.ConnectionStore
	messages     types.MessageStore
	meetings     types.MeetingStore
	appointments types.AppointmentStore

	events  types.EventSink
	metrics types.ActionMetrics
	clock   types.Clock
	logger  *slog.Logger
}

// Config collects the Gate's dependencies. Events and Metrics are optional;
// everything else is required.
type Config struct {
	Directory    types.UserDirectory
	Resolver     *tiers.Resolver
	Engine       *quota.Engine
	States       *session.Registry
	Connections  types.ConnectionStore
	Messages     types.MessageStore
	Meetings     types.MeetingStore
	Appointments types.AppointmentStore
	Events       types.EventSink
	Metrics      types.ActionMetrics
	Clock        types.Clock
	Logger       *slog.Logger
}

// New creates a Gate from the given dependencies.
func New(cfg Config) *Gate {
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		directory:    cfg.Directory,
		resolver:     cfg.Resolver,
		engine:       cfg.Engine,
		states:       cfg.States,
		connections:  cfg.Connections,
		messages:     cfg.Messages,
		meetings:     cfg.Meetings,
		appointments: cfg.Appointments,
		events:       cfg.Events,
		metrics:      cfg.Metrics,
		clock:        clock,
		logger:       logger,
	}
}

// resolveLive fetches the current user record and resolves its capability
// set. A missing record fails safe: the role's lowest tier (invalid_tier_state
// is logged, not surfaced as a blocking error). A transport failure is
// surfaced as retryable so the caller does not silently act on a guess.
func (g *Gate) resolveLive(ctx context.Context, userID string) (types.Role, types.Tier, types.Permissions, error) {
	profile, err := g.directory.GetProfile(ctx, userID)
	if err != nil {
		var appErr *types.AppError
		if errors.As(err, &appErr) && appErr.Code == types.ErrCodeNotFoundUser {
			g.logger.Warn("user record unresolvable, failing safe to lowest tier",
				"user_id", userID,
				"code", string(types.ErrCodeInvalidTierState),
			)
			role := types.RoleVisitor
			tier := g.resolver.Catalog().LowestTier(role)
			return role, tier, g.resolver.Resolve(role, tier), nil
		}
		return "", "", types.Permissions{}, types.NewAppError(
			types.ErrCodeUpstreamUserStore, "could not re-validate user record", err)
	}

	tier := g.resolver.EffectiveTier(profile)
	perms := g.resolver.ResolveProfile(profile)
	g.states.StateFor(userID).CachePermissions(perms)
	return profile.Role, tier, perms, nil
}

// guardDaily runs the shared pre-flight for daily-limited actions: live
// permission re-check, then an atomic quota reservation. The returned
// reservation must be released if the domain mutation fails.
func (g *Gate) guardDaily(ctx context.Context, userID string, kind types.ActionKind) (types.Role, types.Tier, *quota.Reservation, error) {
	role, tier, perms, err := g.resolveLive(ctx, userID)
	if err != nil {
		return "", "", nil, err
	}

	if !perms.Allows(kind) {
		err := types.NewDenial(types.ErrCodePermissionDenied, kind, role, tier,
			"your pass does not include this networking feature")
		g.recordDenied(ctx, kind, role, tier, err.Code)
		return "", "", nil, err
	}

	res, err := g.states.StateFor(userID).Usage().Reserve(kind, perms.DailyCap(kind))
	if err != nil {
		var appErr *types.AppError
		if errors.As(err, &appErr) {
			g.recordDenied(ctx, kind, role, tier, appErr.Code)
			// Re-wrap with the denial context the upgrade prompt needs.
			return "", "", nil, types.NewAppErrorWithDetails(appErr.Code, appErr.Message, nil, mergeDenial(appErr.Details, role, tier))
		}
		return "", "", nil, err
	}
	return role, tier, res, nil
}

func mergeDenial(details map[string]any, role types.Role, tier types.Tier) map[string]any {
	merged := make(map[string]any, len(details)+2)
	for k, v := range details {
		merged[k] = v
	}
	merged["role"] = string(role)
	merged["tier"] = string(tier)
	return merged
}

// RequestConnection creates a pending connection request, consuming one unit
// of today's connection quota. The quota increment and the store write are
// one logical unit: a store failure releases the reservation.
func (g *Gate) RequestConnection(ctx context.Context, userID, targetID string) (*types.Connection, error) {
	role, tier, res, err := g.guardDaily(ctx, userID, types.ActionConnection)
	if err != nil {
		return nil, err
	}

	conn := &types.Connection{
		ID:        uuid.NewString(),
		FromUser:  userID,
		ToUser:    targetID,
		Status:    types.ConnectionPending,
		CreatedAt: g.clock.Now(),
	}
	if err := g.connections.Create(ctx, conn); err != nil {
		res.Release()
		return nil, persistence("create connection request", err)
	}

	g.states.StateFor(userID).TrackPendingConnection(*conn)
	g.afterSuccess(ctx, types.ActionConnection, role, tier, userID, conn.ID, types.EventConnectionRequested)
	return conn, nil
}

// SendMessage enqueues a networking message, consuming one unit of today's
// message quota.
func (g *Gate) SendMessage(ctx context.Context, userID, conversationID, body string) (*types.Message, error) {
	role, tier, res, err := g.guardDaily(ctx, userID, types.ActionMessage)
	if err != nil {
		return nil, err
	}

	msg := &types.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       userID,
		Body:           body,
		CreatedAt:      g.clock.Now(),
	}
	if err := g.messages.Create(ctx, msg); err != nil {
		res.Release()
		return nil, persistence("enqueue message", err)
	}

	g.states.StateFor(userID).CacheMessage(*msg)
	g.afterSuccess(ctx, types.ActionMessage, role, tier, userID, msg.ID, types.EventMessageSent)
	return msg, nil
}

// RequestMeeting creates a meeting request, consuming one unit of today's
// meeting quota.
func (g *Gate) RequestMeeting(ctx context.Context, userID, inviteeID string, startsAt time.Time) (*types.Meeting, error) {
	role, tier, res, err := g.guardDaily(ctx, userID, types.ActionMeeting)
	if err != nil {
		return nil, err
	}

	m := &types.Meeting{
		ID:          uuid.NewString(),
		RequesterID: userID,
		InviteeID:   inviteeID,
		StartsAt:    startsAt,
		Status:      types.MeetingRequested,
		CreatedAt:   g.clock.Now(),
	}
	if err := g.meetings.Create(ctx, m); err != nil {
		res.Release()
		return nil, persistence("create meeting request", err)
	}

	g.afterSuccess(ctx, types.ActionMeeting, role, tier, userID, m.ID, types.EventMeetingRequested)
	return m, nil
}

// BookAppointment books a B2B appointment slot. The appointment quota is a
// standing cap on concurrently confirmed bookings, so no daily reservation
// is taken: the check compares the live confirmed count against the tier's
// cap. The count is read immediately before the write; the window between
// the two is accepted for a single session (one device, one event loop).
func (g *Gate) BookAppointment(ctx context.Context, userID, timeSlotID, exhibitorID, notes string) (*types.Appointment, error) {
	role, tier, _, err := g.resolveLive(ctx, userID)
	if err != nil {
		return nil, err
	}

	confirmed, err := g.appointments.ConfirmedCount(ctx, userID)
	if err != nil {
		return nil, persistence("count confirmed appointments", err)
	}

	if !g.engine.CanBookAppointment(role, tier, confirmed) {
		quotaVal := g.engine.AppointmentQuota(role, tier)
		code := types.ErrCodeQuotaExceededAppointments
		msg := "appointment quota reached for your pass"
		if quotaVal == 0 {
			// Not a quota problem: the tier has no B2B slots at all.
			code = types.ErrCodePermissionDenied
			msg = "your pass does not include B2B appointments"
		}
		err := types.NewAppErrorWithDetails(code, msg, nil, map[string]any{
			"role":      string(role),
			"tier":      string(tier),
			"confirmed": confirmed,
			"quota":     quotaVal,
		})
		g.recordDenied(ctx, "appointment", role, tier, code)
		return nil, err
	}

	now := g.clock.Now()
	appt := &types.Appointment{
		ID:          uuid.NewString(),
		TimeSlotID:  timeSlotID,
		VisitorID:   userID,
		ExhibitorID: exhibitorID,
		Status:      types.AppointmentConfirmed,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := g.appointments.Create(ctx, appt); err != nil {
		return nil, persistence("book appointment", err)
	}

	g.afterSuccess(ctx, "appointment", role, tier, userID, appt.ID, types.EventAppointmentBooked)
	return appt, nil
}

// CancelAppointment cancels one of the caller's appointments. Because the
// standing cap reads the live confirmed count, cancelling restores one unit
// of appointment quota -- unlike daily quotas, which never give back.
func (g *Gate) CancelAppointment(ctx context.Context, userID, appointmentID string) error {
	appt, err := g.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return persistence("load appointment", err)
	}
	if appt == nil || appt.VisitorID != userID {
		return types.NewAppError(types.ErrCodeNotFoundAppointment, "appointment not found", nil)
	}

	if err := g.appointments.Cancel(ctx, appointmentID); err != nil {
		return persistence("cancel appointment", err)
	}

	role, tier, _, rerr := g.resolveLive(ctx, userID)
	if rerr == nil {
		g.publish(ctx, types.ActionEvent{
			Type:       types.EventAppointmentCancelled,
			UserID:     userID,
			Role:       role,
			Tier:       tier,
			EntityID:   appointmentID,
			OccurredAt: g.clock.Now(),
		})
	}
	return nil
}

// persistence wraps a domain-store failure as the retryable error surfaced
// to the UI after a rollback.
func persistence(op string, err error) *types.AppError {
	var appErr *types.AppError
	if errors.As(err, &appErr) && appErr.Code == types.ErrCodeNotFoundAppointment {
		return appErr
	}
	return types.NewAppError(types.ErrCodePersistenceFailure, op+" failed", err)
}

func (g *Gate) afterSuccess(ctx context.Context, kind types.ActionKind, role types.Role, tier types.Tier, userID, entityID string, eventType types.ActionEventType) {
	if g.metrics != nil {
		g.metrics.RecordAllowed(ctx, kind, role, tier)
	}
	g.publish(ctx, types.ActionEvent{
		Type:       eventType,
		UserID:     userID,
		Role:       role,
		Tier:       tier,
		EntityID:   entityID,
		OccurredAt: g.clock.Now(),
	})
}

// publish is best effort: event delivery problems are logged, never
// propagated into the action result.
func (g *Gate) publish(ctx context.Context, event types.ActionEvent) {
	if g.events == nil {
		return
	}
	if err := g.events.Publish(ctx, event); err != nil {
		g.logger.Warn("action event publish failed",
			"type", string(event.Type),
			"entity_id", event.EntityID,
			"error", err,
		)
	}
}

func (g *Gate) recordDenied(ctx context.Context, kind types.ActionKind, role types.Role, tier types.Tier, code types.ErrorCode) {
	if g.metrics != nil {
		g.metrics.RecordDenied(ctx, kind, role, tier, code)
	}
}
