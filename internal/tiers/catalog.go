// Package tiers provides the tier catalog and permission resolution for the
// portal. The catalog is the single source of truth for what each (role,
// tier) pair allows.
package tiers

import "siport/internal/types"

// Catalog defines the authoritative capability set for each (role, tier)
// pair. For unknown or missing tiers, implementations return the role's
// lowest tier -- fail-safe, never fail-open.
type Catalog interface {
	// CapabilitiesFor returns the capability set for the given role and tier.
	CapabilitiesFor(role types.Role, tier types.Tier) types.Permissions

	// LowestTier returns the most restrictive tier for the role. It is the
	// fallback for unmapped and legacy tier values.
	LowestTier(role types.Role) types.Tier

	// Rank returns the ordering position of a tier within its role (0 is
	// lowest). Unknown tiers rank 0; the second return is false for them.
	Rank(role types.Role, tier types.Tier) (int, bool)

	// TiersFor returns the role's tiers in ascending order.
	TiersFor(role types.Role) []types.Tier
}

// roleKey identifies a catalog entry.
type roleKey struct {
	role types.Role
	tier types.Tier
}

// staticCatalog is a compile-time catalog backed by in-memory maps. It
// implements Catalog and is the standard implementation for production use.
type staticCatalog struct {
	caps  map[roleKey]types.Permissions
	order map[types.Role][]types.Tier
}

// tierOrder lists each role's tiers in ascending order. This ordering drives
// both the lowest-tier fallback and the Level Guard comparison. Admin and
// security accounts have a single implicit tier.
var tierOrder = map[types.Role][]types.Tier{
	types.RoleVisitor:   {types.TierVisitorFree, types.TierVisitorPremium, types.TierVisitorVIP},
	types.RoleExhibitor: {types.TierExhibitorBasic9, types.TierExhibitorStandard18, types.TierExhibitorPremium36, types.TierExhibitorElite54Plus},
	types.RolePartner:   {types.TierPartnerBronze, types.TierPartnerSilver, types.TierPartnerGold, types.TierPartnerPlatinum},
	types.RoleAdmin:     {types.TierNone},
	types.RoleSecurity:  {types.TierNone},
}

// catalogDefaults defines the capability matrix. The exact numbers are
// business configuration; the invariant the tests enforce is that no cap
// decreases as the tier increases within a role (Unlimited counts as the
// largest value).
//
// Notable business rules carried from the event's commercial terms:
//   - Free visitors get no networking at all and zero B2B appointments.
//   - Basic 9m2 stands get zero B2B appointment slots (upsell lever).
//   - Admin accounts are unlimited; security staff get door access only.
var catalogDefaults = map[roleKey]types.Permissions{
	{types.RoleVisitor, types.TierVisitorFree}: {
		EventAccess:   types.EventAccessLimited,
		PriorityLevel: 1,
	},
	{types.RoleVisitor, types.TierVisitorPremium}: {
		CanMakeConnections:   true,
		CanSendMessages:      true,
		CanScheduleMeetings:  true,
		EventAccess:          types.EventAccessFull,
		MaxConnectionsPerDay: 10,
		MaxMessagesPerDay:    5,
		MaxMeetingsPerDay:    2,
		AppointmentQuota:     5,
		PriorityLevel:        5,
		CanViewAnalytics:     true,
	},
	{types.RoleVisitor, types.TierVisitorVIP}: {
		CanMakeConnections:   true,
		CanSendMessages:      true,
		CanScheduleMeetings:  true,
		EventAccess:          types.EventAccessFull,
		MaxConnectionsPerDay: types.Unlimited,
		MaxMessagesPerDay:    types.Unlimited,
		MaxMeetingsPerDay:    types.Unlimited,
		AppointmentQuota:     10,
		PriorityLevel:        10,
		CanBypassQueue:       true,
		CanAccessLounge:      true,
		CanViewAnalytics:     true,
	},

	{types.RoleExhibitor, types.TierExhibitorBasic9}: {
		CanMakeConnections:   true,
		CanSendMessages:      true,
		CanScheduleMeetings:  true,
		EventAccess:          types.EventAccessLimited,
		MaxConnectionsPerDay: 20,
		MaxMessagesPerDay:    50,
		MaxMeetingsPerDay:    8,
		AppointmentQuota:     0, // no B2B slots on the smallest stand
		PriorityLevel:        5,
	},
	{types.RoleExhibitor, types.TierExhibitorStandard18}: {
		CanMakeConnections:   true,
		CanSendMessages:      true,
		CanScheduleMeetings:  true,
		EventAccess:          types.EventAccessFull,
		MaxConnectionsPerDay: 30,
		MaxMessagesPerDay:    75,
		MaxMeetingsPerDay:    12,
		AppointmentQuota:     15,
		PriorityLevel:        6,
		CanViewAnalytics:     true,
	},
	{types.RoleExhibitor, types.TierExhibitorPremium36}: {
		CanMakeConnections:   true,
		CanSendMessages:      true,
		CanScheduleMeetings:  true,
		EventAccess:          types.EventAccessFull,
		MaxConnectionsPerDay: 40,
		MaxMessagesPerDay:    100,
		MaxMeetingsPerDay:    16,
		AppointmentQuota:     30,
		PriorityLevel:        7,
		CanViewAnalytics:     true,
	},
	{types.RoleExhibitor, types.TierExhibitorElite54Plus}: {
		CanMakeConnections:   true,
		CanSendMessages:      true,
		CanScheduleMeetings:  true,
		EventAccess:          types.EventAccessFull,
		MaxConnectionsPerDay: 60,
		MaxMessagesPerDay:    150,
		MaxMeetingsPerDay:    24,
		AppointmentQuota:     60,
		PriorityLevel:        8,
		CanBypassQueue:       true,
		CanAccessLounge:      true,
		CanViewAnalytics:     true,
	},

	{types.RolePartner, types.TierPartnerBronze}: {
		CanMakeConnections:   true,
		CanSendMessages:      true,
		CanScheduleMeetings:  true,
		EventAccess:          types.EventAccessFull,
		MaxConnectionsPerDay: 50,
		MaxMessagesPerDay:    100,
		MaxMeetingsPerDay:    15,
		AppointmentQuota:     20,
		PriorityLevel:        8,
	},
	{types.RolePartner, types.TierPartnerSilver}: {
		CanMakeConnections:   true,
		CanSendMessages:      true,
		CanScheduleMeetings:  true,
		EventAccess:          types.EventAccessFull,
		MaxConnectionsPerDay: 75,
		MaxMessagesPerDay:    150,
		MaxMeetingsPerDay:    22,
		AppointmentQuota:     30,
		PriorityLevel:        8,
		CanAccessLounge:      true,
		CanViewAnalytics:     true,
	},
	{types.RolePartner, types.TierPartnerGold}: {
		CanMakeConnections:   true,
		CanSendMessages:      true,
		CanScheduleMeetings:  true,
		EventAccess:          types.EventAccessFull,
		MaxConnectionsPerDay: 100,
		MaxMessagesPerDay:    200,
		MaxMeetingsPerDay:    30,
		AppointmentQuota:     40,
		PriorityLevel:        9,
		CanBypassQueue:       true,
		CanAccessLounge:      true,
		CanViewAnalytics:     true,
	},
	{types.RolePartner, types.TierPartnerPlatinum}: {
		CanMakeConnections:   true,
		CanSendMessages:      true,
		CanScheduleMeetings:  true,
		EventAccess:          types.EventAccessFull,
		MaxConnectionsPerDay: 150,
		MaxMessagesPerDay:    300,
		MaxMeetingsPerDay:    45,
		AppointmentQuota:     60,
		PriorityLevel:        10,
		CanBypassQueue:       true,
		CanAccessLounge:      true,
		CanViewAnalytics:     true,
	},

	{types.RoleAdmin, types.TierNone}: {
		CanMakeConnections:   true,
		CanSendMessages:      true,
		CanScheduleMeetings:  true,
		EventAccess:          types.EventAccessFull,
		MaxConnectionsPerDay: types.Unlimited,
		MaxMessagesPerDay:    types.Unlimited,
		MaxMeetingsPerDay:    types.Unlimited,
		AppointmentQuota:     types.Unlimited,
		PriorityLevel:        10,
		CanBypassQueue:       true,
		CanAccessLounge:      true,
		CanViewAnalytics:     true,
	},
	{types.RoleSecurity, types.TierNone}: {
		EventAccess:   types.EventAccessFull, // badge-control staff need door access everywhere
		PriorityLevel: 1,
	},
}

// NewStaticCatalog returns a Catalog backed by the hardcoded capability
// matrix. This is the standard production implementation; no database or
// external service is required.
func NewStaticCatalog() Catalog {
	// Copy the defaults into new maps so callers cannot mutate the
	// package-level variables.
	caps := make(map[roleKey]types.Permissions, len(catalogDefaults))
	for k, v := range catalogDefaults {
		caps[k] = v
	}
	order := make(map[types.Role][]types.Tier, len(tierOrder))
	for role, ts := range tierOrder {
		order[role] = append([]types.Tier(nil), ts...)
	}
	return &staticCatalog{caps: caps, order: order}
}

// CapabilitiesFor returns the capability set for the given role and tier.
// Unknown tiers resolve to the role's lowest tier; unknown roles resolve to
// an empty (all-denying) capability set.
func (c *staticCatalog) CapabilitiesFor(role types.Role, tier types.Tier) types.Permissions {
	if caps, ok := c.caps[roleKey{role, tier}]; ok {
		return caps
	}
	if caps, ok := c.caps[roleKey{role, c.LowestTier(role)}]; ok {
		return caps
	}
	return types.Permissions{EventAccess: types.EventAccessNone}
}

// LowestTier returns the most restrictive tier for the role.
func (c *staticCatalog) LowestTier(role types.Role) types.Tier {
	if ts, ok := c.order[role]; ok && len(ts) > 0 {
		return ts[0]
	}
	return types.TierNone
}

// Rank returns the position of the tier within the role's ascending order.
func (c *staticCatalog) Rank(role types.Role, tier types.Tier) (int, bool) {
	for i, t := range c.order[role] {
		if t == tier {
			return i, true
		}
	}
	return 0, false
}

// TiersFor returns the role's tiers in ascending order.
func (c *staticCatalog) TiersFor(role types.Role) []types.Tier {
	return append([]types.Tier(nil), c.order[role]...)
}
