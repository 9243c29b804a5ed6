package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"siport/internal/core"
	"siport/internal/gate"
	"siport/internal/types"
)

// BookAppointmentRequest is the request body for POST /v1/appointments.
type BookAppointmentRequest struct {
	TimeSlotID  string `json:"time_slot_id" validate:"required,max=100"`
	ExhibitorID string `json:"exhibitor_id" validate:"required,max=100"`
	Notes       string `json:"notes,omitempty" validate:"max=1000"`
}

// AppointmentHandler exposes B2B appointment booking and cancellation. The
// standing quota check lives in the Action Gate.
type AppointmentHandler struct {
	gate      *gate.Gate
	validator *core.Validator
	logger    *slog.Logger
}

// NewAppointmentHandler creates an AppointmentHandler.
func NewAppointmentHandler(g *gate.Gate, v *core.Validator, l *slog.Logger) *AppointmentHandler {
	if l == nil {
		l = slog.Default()
	}
	return &AppointmentHandler{gate: g, validator: v, logger: l}
}

// RegisterRoutes mounts the appointment routes on the v1 router.
func (h *AppointmentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/appointments", h.HandleBook)
	r.Delete("/appointments/{id}", h.HandleCancel)
}

// HandleBook books an appointment against an exhibitor time slot.
func (h *AppointmentHandler) HandleBook(w http.ResponseWriter, r *http.Request) {
	actor, ok := types.GetActor(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(types.ErrCodeAuthTokenMissing, "authentication required", nil))
		return
	}

	var req BookAppointmentRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	appt, err := h.gate.BookAppointment(r.Context(), actor.UserID, req.TimeSlotID, req.ExhibitorID, req.Notes)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: appt})
}

// HandleCancel cancels one of the caller's appointments, restoring one unit
// of standing appointment quota.
func (h *AppointmentHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := types.GetActor(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(types.ErrCodeAuthTokenMissing, "authentication required", nil))
		return
	}

	appointmentID := chi.URLParam(r, "id")
	if appointmentID == "" {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationMissingField, "appointment id is required", nil))
		return
	}

	if err := h.gate.CancelAppointment(r.Context(), actor.UserID, appointmentID); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]string{
		"id":     appointmentID,
		"status": string(types.AppointmentCancelled),
	}})
}
