package tiers

import "siport/internal/types"

// Resolver produces capability sets from user records. It is side-effect
// free: the result is a pure function of (role, tier-or-status) and the
// catalog, so callers may recompute it on every check. Any cached copy is
// advisory only and must be re-validated against the live user record before
// a mutating action.
type Resolver struct {
	catalog Catalog
}

// NewResolver creates a Resolver backed by the given catalog.
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve returns the capability set for a role and tier. An invalid or
// missing tier resolves to the role's lowest tier via the catalog's
// fail-safe fallback.
func (r *Resolver) Resolve(role types.Role, tier types.Tier) types.Permissions {
	return r.catalog.CapabilitiesFor(role, tier)
}

// ResolveStatus returns the capability set for a role and a tier value OR a
// legacy free-form pass status, normalizing before lookup.
func (r *Resolver) ResolveStatus(role types.Role, status string) types.Permissions {
	return r.catalog.CapabilitiesFor(role, NormalizeTier(r.catalog, role, status))
}

// ResolveProfile resolves a live user record. Profiles that carry a closed
// tier use it directly; records that still carry only a legacy pass status
// are normalized first.
func (r *Resolver) ResolveProfile(p *types.UserProfile) types.Permissions {
	if p == nil {
		return types.Permissions{EventAccess: types.EventAccessNone}
	}
	if p.Tier != types.TierNone || p.PassStatus == "" {
		if _, ok := r.catalog.Rank(p.Role, p.Tier); ok {
			return r.catalog.CapabilitiesFor(p.Role, p.Tier)
		}
	}
	return r.ResolveStatus(p.Role, p.PassStatus)
}

// EffectiveTier returns the closed tier a profile resolves to, applying the
// same normalization and fallback rules as ResolveProfile.
func (r *Resolver) EffectiveTier(p *types.UserProfile) types.Tier {
	if p == nil {
		return types.TierNone
	}
	if _, ok := r.catalog.Rank(p.Role, p.Tier); ok {
		return p.Tier
	}
	return NormalizeTier(r.catalog, p.Role, p.PassStatus)
}

// Catalog exposes the underlying catalog for callers that need tier ordering
// (the Level Guard).
func (r *Resolver) Catalog() Catalog {
	return r.catalog
}
