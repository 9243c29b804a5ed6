package guard

import (
	"encoding/json"
	"net/http"

	"siport/internal/types"
)

// upgradePrompt is the restricted-variant payload returned when a protected
// route is disallowed and no fallback redirect is configured. The UI renders
// it as a tier-specific upgrade prompt.
type upgradePrompt struct {
	Error struct {
		Code         string `json:"code"`
		Message      string `json:"message"`
		RequiredTier string `json:"required_tier"`
		CurrentTier  string `json:"current_tier"`
	} `json:"error"`
}

// RequireTier returns middleware that gates a route behind a minimum tier
// for the given role. Disallowed requests observe exactly one of two
// effects: a redirect to fallbackURL (when non-empty), or a 403 with an
// upgrade-prompt body. The protected handler is never invoked when
// disallowed, so the underlying content cannot render even transiently.
//
// Requests whose actor has a different role than the gate's role are also
// denied; cross-role features mount separate gates.
func (g *Guard) RequireTier(role types.Role, requiredTier types.Tier, fallbackURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := types.GetActor(r.Context())
			if ok && actor.Role == role && g.IsFeatureAllowed(role, actor.Tier, requiredTier) {
				next.ServeHTTP(w, r)
				return
			}

			if fallbackURL != "" {
				http.Redirect(w, r, fallbackURL, http.StatusSeeOther)
				return
			}

			var prompt upgradePrompt
			prompt.Error.Code = string(types.ErrCodePermissionTier)
			prompt.Error.Message = "this feature requires a higher pass level"
			prompt.Error.RequiredTier = string(requiredTier)
			prompt.Error.CurrentTier = string(actor.Tier)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(prompt)
		})
	}
}
