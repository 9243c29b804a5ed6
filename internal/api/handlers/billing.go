package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"siport/internal/billing"
	"siport/internal/core"
	"siport/internal/types"
)

// UpgradeRequest is the request body for POST /v1/billing/upgrade.
type UpgradeRequest struct {
	TargetTier string `json:"target_tier" validate:"required,max=50"`
	SuccessURL string `json:"success_url" validate:"required,url"`
	CancelURL  string `json:"cancel_url" validate:"required,url"`
}

// BillingHandler hands tier upgrades off to the payment provider. The portal
// never changes the tier itself; the checkout fulfillment flow updates the
// user store and the new tier takes effect on the next live profile fetch.
type BillingHandler struct {
	upgrades  *billing.UpgradeService
	validator *core.Validator
	logger    *slog.Logger
}

// NewBillingHandler creates a BillingHandler.
func NewBillingHandler(upgrades *billing.UpgradeService, v *core.Validator, l *slog.Logger) *BillingHandler {
	if l == nil {
		l = slog.Default()
	}
	return &BillingHandler{upgrades: upgrades, validator: v, logger: l}
}

// RegisterRoutes mounts the billing routes on the v1 router.
func (h *BillingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/billing/upgrade", h.HandleUpgrade)
}

// HandleUpgrade creates a Stripe Checkout session for the requested tier.
func (h *BillingHandler) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	actor, ok := types.GetActor(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(types.ErrCodeAuthTokenMissing, "authentication required", nil))
		return
	}

	var req UpgradeRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	session, err := h.upgrades.CreateUpgradeSession(r.Context(), actor, types.Tier(req.TargetTier), billing.RedirectURLs{
		Success: req.SuccessURL,
		Cancel:  req.CancelURL,
	})
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: session})
}
