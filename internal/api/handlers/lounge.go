package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"siport/internal/core"
	"siport/internal/guard"
	"siport/internal/types"
)

// LoungeHandler serves the VIP lounge view data. The route itself is gated
// behind the visitor VIP tier via the Level Guard middleware, so a
// lower-tier request receives the upgrade-prompt payload and the lounge
// details never render, not even transiently.
type LoungeHandler struct {
	guard  *guard.Guard
	logger *slog.Logger
}

// NewLoungeHandler creates a LoungeHandler.
func NewLoungeHandler(g *guard.Guard, l *slog.Logger) *LoungeHandler {
	if l == nil {
		l = slog.Default()
	}
	return &LoungeHandler{guard: g, logger: l}
}

// RegisterRoutes mounts the lounge route on the v1 router.
func (h *LoungeHandler) RegisterRoutes(r chi.Router) {
	r.With(h.guard.RequireTier(types.RoleVisitor, types.TierVisitorVIP, "")).
		Get("/lounge", h.HandleLounge)
}

// loungeInfo is what the lounge view renders: where to go and when, plus the
// services available to the pass holder.
type loungeInfo struct {
	Location string   `json:"location"`
	OpenFrom string   `json:"open_from"`
	OpenTo   string   `json:"open_to"`
	Services []string `json:"services"`
}

// HandleLounge returns the VIP lounge details for the event. The middleware
// has already established that the caller's tier includes lounge access.
func (h *LoungeHandler) HandleLounge(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: loungeInfo{
		Location: "Hall A, mezzanine level",
		OpenFrom: "09:00",
		OpenTo:   "19:00",
		Services: []string{"concierge", "private meeting corners", "catering"},
	}})
}
