package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"siport/internal/core"
	"siport/internal/quota"
	"siport/internal/session"
	"siport/internal/tiers"
	"siport/internal/types"
)

// QuotaHandler serves the quota widget: the live capability set, today's
// usage, remaining daily quotas, and standing appointment usage. The profile
// fetch and the confirmed-appointment count are independent reads, so they
// run concurrently.
type QuotaHandler struct {
	directory    types.UserDirectory
	resolver     *tiers.Resolver
	engine       *quota.Engine
	states       *session.Registry
	appointments types.AppointmentStore
	logger       *slog.Logger
}

// NewQuotaHandler creates a QuotaHandler.
func NewQuotaHandler(
	directory types.UserDirectory,
	resolver *tiers.Resolver,
	engine *quota.Engine,
	states *session.Registry,
	appointments types.AppointmentStore,
	l *slog.Logger,
) *QuotaHandler {
	if l == nil {
		l = slog.Default()
	}
	return &QuotaHandler{
		directory:    directory,
		resolver:     resolver,
		engine:       engine,
		states:       states,
		appointments: appointments,
		logger:       l,
	}
}

// RegisterRoutes mounts the quota route on the v1 router.
func (h *QuotaHandler) RegisterRoutes(r chi.Router) {
	r.Get("/networking/quota", h.HandleSnapshot)
}

// HandleSnapshot builds the quota snapshot for the authenticated user.
// A vanished user record fails safe to the visitor entry tier, matching the
// Action Gate's behavior, so the widget always renders something coherent.
func (h *QuotaHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	actor, ok := types.GetActor(r.Context())
	if !ok {
		core.Error(w, r, types.NewAppError(types.ErrCodeAuthTokenMissing, "authentication required", nil))
		return
	}

	var (
		profile   *types.UserProfile
		confirmed int
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		p, err := h.directory.GetProfile(ctx, actor.UserID)
		if err != nil {
			var appErr *types.AppError
			if errors.As(err, &appErr) && appErr.Code == types.ErrCodeNotFoundUser {
				h.logger.Warn("user record unresolvable for quota snapshot, failing safe",
					"user_id", actor.UserID,
					"code", string(types.ErrCodeInvalidTierState),
				)
				return nil // profile stays nil, resolved below as lowest tier
			}
			return err
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		n, err := h.appointments.ConfirmedCount(ctx, actor.UserID)
		if err != nil {
			return err
		}
		confirmed = n
		return nil
	})
	if err := g.Wait(); err != nil {
		core.Error(w, r, err)
		return
	}

	role := types.RoleVisitor
	tier := h.resolver.Catalog().LowestTier(role)
	if profile != nil {
		role = profile.Role
		tier = h.resolver.EffectiveTier(profile)
	}

	perms := h.resolver.Resolve(role, tier)
	usage := h.states.StateFor(actor.UserID).Usage().Peek()

	snap := types.QuotaSnapshot{
		Permissions: perms,
		Usage:       usage,
		Remaining:   h.engine.Remaining(role, tier, usage),
	}
	snap.Appointments.Confirmed = confirmed
	snap.Appointments.Quota = perms.AppointmentQuota

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: snap})
}
