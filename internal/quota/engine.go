package quota

import (
	"siport/internal/tiers"
	"siport/internal/types"
)

// Engine combines resolved capabilities with tracked usage to answer "can I
// do X now" and "how many X do I have left". Evaluation never returns an
// error: gating must be safe to call speculatively (to disable a button),
// so invalid or missing role/tier input answers false via the catalog's
// lowest-tier fallback.
type Engine struct {
	resolver *tiers.Resolver
}

// NewEngine creates an Engine backed by the given resolver.
func NewEngine(resolver *tiers.Resolver) *Engine {
	return &Engine{resolver: resolver}
}

// Remaining computes the remaining daily quota for each action kind:
// max(0, cap - used), with Unlimited (-1) passed through unchanged.
func (e *Engine) Remaining(role types.Role, tier types.Tier, usage types.DailyUsage) types.RemainingQuota {
	perms := e.resolver.Resolve(role, tier)
	return types.RemainingQuota{
		Connections: remainingFor(perms.MaxConnectionsPerDay, usage.Connections),
		Messages:    remainingFor(perms.MaxMessagesPerDay, usage.Messages),
		Meetings:    remainingFor(perms.MaxMeetingsPerDay, usage.Meetings),
	}
}

func remainingFor(limit, used int) int {
	if limit == types.Unlimited {
		return types.Unlimited
	}
	if used >= limit {
		return 0
	}
	return limit - used
}

// CanPerform reports whether the capability set allows the action class AND
// quota remains for it today.
func (e *Engine) CanPerform(kind types.ActionKind, role types.Role, tier types.Tier, usage types.DailyUsage) bool {
	perms := e.resolver.Resolve(role, tier)
	if !perms.Allows(kind) {
		return false
	}
	rem := remainingFor(perms.DailyCap(kind), usage.Count(kind))
	return rem == types.Unlimited || rem > 0
}

// CanBookAppointment applies the standing appointment cap: the quota is
// bounded by the number of *currently confirmed* appointments, independent
// of the daily usage tracker. Cancelling a confirmed appointment therefore
// restores one unit by construction.
//
// A quota of 0 denies unconditionally, even with no existing appointments.
func (e *Engine) CanBookAppointment(role types.Role, tier types.Tier, confirmedCount int) bool {
	q := e.resolver.Resolve(role, tier).AppointmentQuota
	if q == types.Unlimited {
		return true
	}
	return confirmedCount < q
}

// AppointmentQuota exposes the standing cap for the quota widget.
func (e *Engine) AppointmentQuota(role types.Role, tier types.Tier) int {
	return e.resolver.Resolve(role, tier).AppointmentQuota
}
