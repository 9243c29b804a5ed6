package tiers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"siport/internal/types"
)

func TestNormalizeTier(t *testing.T) {
	c := NewStaticCatalog()

	tests := []struct {
		name string
		role types.Role
		raw  string
		want types.Tier
	}{
		{"exact tier passes through", types.RoleVisitor, "premium", types.TierVisitorPremium},
		{"uppercase and whitespace", types.RoleVisitor, "  VIP  ", types.TierVisitorVIP},
		{"pass prefix stripped", types.RoleVisitor, "Pass VIP", types.TierVisitorVIP},
		{"underscore pass prefix", types.RolePartner, "pass_gold", types.TierPartnerGold},
		{"french legacy free", types.RoleVisitor, "Gratuit", types.TierVisitorFree},
		{"legacy exhibitor basic", types.RoleExhibitor, "basic", types.TierExhibitorBasic9},
		{"legacy exhibitor standard", types.RoleExhibitor, "standard", types.TierExhibitorStandard18},
		{"legacy exhibitor premium", types.RoleExhibitor, "Premium", types.TierExhibitorPremium36},
		{"legacy exhibitor platinum renamed", types.RoleExhibitor, "platinum", types.TierExhibitorElite54Plus},
		{"exact exhibitor tier", types.RoleExhibitor, "elite_54plus", types.TierExhibitorElite54Plus},
		{"museum folded into bronze", types.RolePartner, "Museum", types.TierPartnerBronze},
		{"partner platinum is a real tier", types.RolePartner, "platinum", types.TierPartnerPlatinum},
		{"unknown falls to lowest", types.RoleVisitor, "diamond", types.TierVisitorFree},
		{"empty falls to lowest", types.RoleExhibitor, "", types.TierExhibitorBasic9},
		{"garbage falls to lowest", types.RolePartner, "???", types.TierPartnerBronze},
		{"cross-role tier does not leak", types.RoleVisitor, "gold", types.TierVisitorFree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTier(c, tt.role, tt.raw))
		})
	}
}
