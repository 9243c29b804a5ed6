package tiers

import (
	"strings"

	"siport/internal/types"
)

// legacyAliases maps free-form pass-status strings still present on older
// user records to the closed tier enum. Keys are compared after lowercasing,
// trimming, and stripping a "pass " prefix. The partner "museum" level was
// folded into bronze when the sponsorship ladder was renamed.
var legacyAliases = map[types.Role]map[string]types.Tier{
	types.RoleVisitor: {
		"free":    types.TierVisitorFree,
		"gratuit": types.TierVisitorFree,
		"premium": types.TierVisitorPremium,
		"vip":     types.TierVisitorVIP,
	},
	types.RoleExhibitor: {
		"basic":    types.TierExhibitorBasic9,
		"standard": types.TierExhibitorStandard18,
		"premium":  types.TierExhibitorPremium36,
		"platinum": types.TierExhibitorElite54Plus,
		"elite":    types.TierExhibitorElite54Plus,
	},
	types.RolePartner: {
		"museum":   types.TierPartnerBronze,
		"bronze":   types.TierPartnerBronze,
		"silver":   types.TierPartnerSilver,
		"gold":     types.TierPartnerGold,
		"platinum": types.TierPartnerPlatinum,
	},
}

// NormalizeTier maps a tier value or legacy free-form pass status to the
// closed tier enum for the role. Unrecognized input has exactly one outcome:
// the role's lowest tier. This replaces the scattered string comparisons the
// portal used to do per call site.
func NormalizeTier(catalog Catalog, role types.Role, raw string) types.Tier {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "pass ")
	s = strings.TrimPrefix(s, "pass_")

	// Exact tier values pass through when valid for the role.
	if _, ok := catalog.Rank(role, types.Tier(s)); ok {
		return types.Tier(s)
	}
	if t, ok := legacyAliases[role][s]; ok {
		return t
	}
	return catalog.LowestTier(role)
}
