// Package guard implements the tier-based feature gate for protected routes
// and views.
package guard

import (
	"siport/internal/tiers"
	"siport/internal/types"
)

// Guard answers whether a user's tier meets a feature's minimum required
// tier, using the catalog's monotonic tier ordering.
type Guard struct {
	catalog tiers.Catalog
}

// New creates a Guard backed by the given catalog.
func New(catalog tiers.Catalog) *Guard {
	return &Guard{catalog: catalog}
}

// IsFeatureAllowed reports whether userTier meets requiredTier within the
// role's ordering. The comparison fails safe on both sides: an unknown user
// tier ranks as the role's lowest, and an unknown required tier is treated
// as above the highest rank so the protected content is never rendered on a
// malformed requirement.
func (g *Guard) IsFeatureAllowed(role types.Role, userTier, requiredTier types.Tier) bool {
	required, ok := g.catalog.Rank(role, requiredTier)
	if !ok {
		return false
	}
	user, ok := g.catalog.Rank(role, userTier)
	if !ok {
		user = 0
	}
	return user >= required
}
