package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siport/internal/types"
)

func TestLoungeEndpoint_VIPAllowed(t *testing.T) {
	f := newAPIFixture(t, types.Actor{UserID: "usr-1", Role: types.RoleVisitor, Tier: types.TierVisitorVIP})

	rec := f.do(t, http.MethodGet, "/v1/lounge", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data loungeInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.Location)
	assert.NotEmpty(t, resp.Data.Services)
}

func TestLoungeEndpoint_LowerTierGetsUpgradePrompt(t *testing.T) {
	f := newAPIFixture(t, types.Actor{UserID: "usr-1", Role: types.RoleVisitor, Tier: types.TierVisitorPremium})

	rec := f.do(t, http.MethodGet, "/v1/lounge", "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	var prompt struct {
		Error struct {
			Code         string `json:"code"`
			RequiredTier string `json:"required_tier"`
			CurrentTier  string `json:"current_tier"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prompt))
	assert.Equal(t, string(types.ErrCodePermissionTier), prompt.Error.Code)
	assert.Equal(t, "vip", prompt.Error.RequiredTier)
	assert.Equal(t, "premium", prompt.Error.CurrentTier)
	assert.NotContains(t, rec.Body.String(), "mezzanine", "lounge details must not leak on denial")
}

func TestLoungeEndpoint_CrossRoleDenied(t *testing.T) {
	f := newAPIFixture(t, types.Actor{UserID: "exh-1", Role: types.RoleExhibitor, Tier: types.TierExhibitorElite54Plus})

	rec := f.do(t, http.MethodGet, "/v1/lounge", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
