package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"siport/internal/core"
	"siport/internal/session"
	"siport/internal/types"
)

// SessionHandler exposes the logout reset. Token revocation belongs to the
// external session provider; this endpoint only guarantees that no session
// state survives on this instance, which matters on shared kiosk devices.
type SessionHandler struct {
	states *session.Registry
	logger *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(states *session.Registry, l *slog.Logger) *SessionHandler {
	if l == nil {
		l = slog.Default()
	}
	return &SessionHandler{states: states, logger: l}
}

// RegisterRoutes mounts the session routes on the v1 router.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/session/logout", h.HandleLogout)
}

// HandleLogout clears the calling user's session-scoped state in one atomic
// step and drops their registry entry. Other users' sessions are untouched.
// Idempotent: logging out twice, or with nothing accumulated, succeeds the
// same way.
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	actor, ok := types.GetActor(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(types.ErrCodeAuthTokenMissing, "authentication required", nil))
		return
	}

	h.states.Reset(actor.UserID)
	h.logger.Info("session logged out", "user_id", actor.UserID)

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]string{
		"status": "logged_out",
	}})
}
