// Package handlers contains the HTTP handler implementations for the portal
// core API: gated networking actions, B2B appointments, the quota widget,
// tier-upgrade checkout, and session logout.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"siport/internal/core"
	"siport/internal/gate"
	"siport/internal/types"
)

// ConnectionRequest is the request body for POST /v1/networking/connections.
type ConnectionRequest struct {
	TargetID string `json:"target_id" validate:"required,max=100"`
}

// MessageRequest is the request body for POST /v1/networking/messages.
type MessageRequest struct {
	ConversationID string `json:"conversation_id" validate:"required,max=100"`
	Body           string `json:"body" validate:"required,max=2000"`
}

// MeetingRequest is the request body for POST /v1/networking/meetings.
type MeetingRequest struct {
	InviteeID string    `json:"invitee_id" validate:"required,max=100"`
	StartsAt  time.Time `json:"starts_at" validate:"required"`
}

// NetworkingHandler exposes the gated networking actions. All permission and
// quota enforcement lives in the Action Gate; the handler only translates
// HTTP to gate calls.
type NetworkingHandler struct {
	gate      *gate.Gate
	validator *core.Validator
	logger    *slog.Logger
}

// NewNetworkingHandler creates a NetworkingHandler.
func NewNetworkingHandler(g *gate.Gate, v *core.Validator, l *slog.Logger) *NetworkingHandler {
	if l == nil {
		l = slog.Default()
	}
	return &NetworkingHandler{gate: g, validator: v, logger: l}
}

// RegisterRoutes mounts the networking routes on the v1 router.
func (h *NetworkingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/networking/connections", h.HandleRequestConnection)
	r.Post("/networking/messages", h.HandleSendMessage)
	r.Post("/networking/meetings", h.HandleRequestMeeting)
}

// HandleRequestConnection creates a pending connection request.
func (h *NetworkingHandler) HandleRequestConnection(w http.ResponseWriter, r *http.Request) {
	actor, ok := types.GetActor(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(types.ErrCodeAuthTokenMissing, "authentication required", nil))
		return
	}

	var req ConnectionRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	conn, err := h.gate.RequestConnection(r.Context(), actor.UserID, req.TargetID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: conn})
}

// HandleSendMessage enqueues a networking message.
func (h *NetworkingHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	actor, ok := types.GetActor(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(types.ErrCodeAuthTokenMissing, "authentication required", nil))
		return
	}

	var req MessageRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	msg, err := h.gate.SendMessage(r.Context(), actor.UserID, req.ConversationID, req.Body)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: msg})
}

// HandleRequestMeeting creates a meeting request.
func (h *NetworkingHandler) HandleRequestMeeting(w http.ResponseWriter, r *http.Request) {
	actor, ok := types.GetActor(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(types.ErrCodeAuthTokenMissing, "authentication required", nil))
		return
	}

	var req MeetingRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	m, err := h.gate.RequestMeeting(r.Context(), actor.UserID, req.InviteeID, req.StartsAt)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: m})
}
