// Package billing hands tier upgrades off to Stripe Checkout. The portal
// never mutates a user's tier itself: the payment provider confirms the
// purchase and the user/session provider is updated out of band, so the next
// profile fetch sees the new tier.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v82"

	"siport/internal/external"
	"siport/internal/tiers"
	"siport/internal/types"
)

// stripeAPIBase is the default Stripe API base URL. Overridable in tests via
// UpgradeServiceConfig.BaseURL.
const stripeAPIBase = "https://api.stripe.com"

// priceKey identifies a purchasable pass.
type priceKey struct {
	role types.Role
	tier types.Tier
}

// passPrices maps purchasable (role, tier) pairs to Stripe Price IDs. The
// entry tiers of each role and the staff roles are not purchasable. In
// production these IDs come from the Stripe dashboard; the lookup keys are
// stable.
var passPrices = map[priceKey]string{
	{types.RoleVisitor, types.TierVisitorPremium}: "price_visitor_premium",
	{types.RoleVisitor, types.TierVisitorVIP}:     "price_visitor_vip",

	{types.RoleExhibitor, types.TierExhibitorStandard18}:  "price_exhibitor_standard_18",
	{types.RoleExhibitor, types.TierExhibitorPremium36}:   "price_exhibitor_premium_36",
	{types.RoleExhibitor, types.TierExhibitorElite54Plus}: "price_exhibitor_elite_54plus",

	{types.RolePartner, types.TierPartnerSilver}:   "price_partner_silver",
	{types.RolePartner, types.TierPartnerGold}:     "price_partner_gold",
	{types.RolePartner, types.TierPartnerPlatinum}: "price_partner_platinum",
}

// RedirectURLs carries the checkout completion redirect targets supplied by
// the caller.
type RedirectURLs struct {
	Success string
	Cancel  string
}

// CheckoutSession is the result of a successful upgrade hand-off.
type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// UpgradeServiceConfig holds the configuration for creating an UpgradeService.
type UpgradeServiceConfig struct {
	SecretKey string
	BaseURL   string // override for testing; defaults to stripeAPIBase
	Logger    *slog.Logger
}

// UpgradeService creates Stripe Checkout sessions for pass tier upgrades by
// calling the Stripe REST API through the shared resilience BaseClient
// (circuit breaker, retries, error mapping).
type UpgradeService struct {
	base      *external.BaseClient
	catalog   tiers.Catalog
	secretKey string
	baseURL   string
	logger    *slog.Logger
}

// NewUpgradeService creates an UpgradeService. The httpClient timeout should
// be around 20 seconds; checkout session creation is a single synchronous
// call.
func NewUpgradeService(httpClient *http.Client, catalog tiers.Catalog, cfg UpgradeServiceConfig) *UpgradeService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = stripeAPIBase
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := external.NewBaseClient(
		httpClient,
		"stripe",
		external.RetryPolicy{
			MaxRetries: 2,
			MinWait:    500 * time.Millisecond,
			MaxWait:    5 * time.Second,
		},
		"siport-core/1.0",
	)

	return &UpgradeService{
		base:      base,
		catalog:   catalog,
		secretKey: cfg.SecretKey,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		logger:    logger,
	}
}

// NewUpgradeServiceWithBase creates an UpgradeService with a pre-configured
// BaseClient, for tests that need to control retry and sleep behavior.
func NewUpgradeServiceWithBase(base *external.BaseClient, catalog tiers.Catalog, cfg UpgradeServiceConfig) *UpgradeService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = stripeAPIBase
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &UpgradeService{
		base:      base,
		catalog:   catalog,
		secretKey: cfg.SecretKey,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		logger:    logger,
	}
}

// CreateUpgradeSession validates that target is a real, purchasable, strictly
// higher tier for the actor's role, then creates a Stripe Checkout session
// for it. The actor's user ID rides along as client_reference_id so the
// payment webhook consumer can correlate the purchase back to the user.
func (s *UpgradeService) CreateUpgradeSession(
	ctx context.Context,
	actor types.Actor,
	target types.Tier,
	urls RedirectURLs,
) (*CheckoutSession, error) {
	targetRank, ok := s.catalog.Rank(actor.Role, target)
	if !ok {
		return nil, types.NewAppError(
			types.ErrCodeValidationInvalidBody,
			fmt.Sprintf("unknown tier %q for role %q", target, actor.Role),
			nil,
		)
	}
	if currentRank, ok := s.catalog.Rank(actor.Role, actor.Tier); ok && currentRank >= targetRank {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeValidationInvalidBody,
			"target tier is not an upgrade over the current pass",
			nil,
			map[string]any{"current_tier": string(actor.Tier), "target_tier": string(target)},
		)
	}
	priceID, ok := passPrices[priceKey{actor.Role, target}]
	if !ok {
		return nil, types.NewAppError(
			types.ErrCodeValidationInvalidBody,
			fmt.Sprintf("tier %q is not purchasable", target),
			nil,
		)
	}

	params := url.Values{}
	params.Set("mode", "payment")
	params.Set("client_reference_id", actor.UserID)
	params.Set("success_url", urls.Success)
	params.Set("cancel_url", urls.Cancel)
	params.Set("metadata[user_id]", actor.UserID)
	params.Set("metadata[role]", string(actor.Role))
	params.Set("metadata[target_tier]", string(target))
	params.Set("line_items[0][price]", priceID)
	params.Set("line_items[0][quantity]", "1")

	resp, err := s.doPost(ctx, "/v1/checkout/sessions", params)
	if err != nil {
		return nil, s.wrapStripeError("CreateUpgradeSession", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, s.handleErrorResponse(resp, "CreateUpgradeSession")
	}

	var session stripeCheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to decode Stripe checkout session response",
			err,
		)
	}

	s.logger.InfoContext(ctx, "upgrade checkout session created",
		"user_id", actor.UserID,
		"role", string(actor.Role),
		"target_tier", string(target),
		"session_id", session.ID,
	)

	return &CheckoutSession{SessionID: session.ID, CheckoutURL: session.URL}, nil
}

// doPost performs an authenticated POST request to the Stripe API with a
// form-encoded body.
func (s *UpgradeService) doPost(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Stripe-Version", stripe.APIVersion)
	return s.base.Do(req)
}

// stripeErrorResponse represents the JSON error body returned by the Stripe API.
type stripeErrorResponse struct {
	Error stripeErrorBody `json:"error"`
}

type stripeErrorBody struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type stripeCheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// handleErrorResponse reads a Stripe error response and maps it to a
// types.AppError.
func (s *UpgradeService) handleErrorResponse(resp *http.Response, operation string) error {
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return types.NewAppError(
			types.ErrCodeUpstreamPayment,
			fmt.Sprintf("%s: Stripe returned status %d and response body was unreadable", operation, resp.StatusCode),
			readErr,
		)
	}

	var stripeErr stripeErrorResponse
	if jsonErr := json.Unmarshal(body, &stripeErr); jsonErr != nil {
		return types.NewAppError(
			types.ErrCodeUpstreamPayment,
			fmt.Sprintf("%s: Stripe returned status %d with non-JSON body", operation, resp.StatusCode),
			jsonErr,
		)
	}

	return types.NewAppError(
		types.ErrCodeUpstreamPayment,
		fmt.Sprintf("%s: Stripe error (%d): %s", operation, resp.StatusCode, stripeErr.Error.Message),
		nil,
	)
}

// wrapStripeError wraps a BaseClient transport error with operation context.
// AppErrors from the BaseClient (breaker open, retries exhausted) pass
// through unchanged.
func (s *UpgradeService) wrapStripeError(operation string, err error) error {
	if _, ok := err.(*types.AppError); ok {
		return err
	}
	return types.NewAppError(
		types.ErrCodeUpstreamPayment,
		fmt.Sprintf("%s: Stripe request failed: %v", operation, err),
		err,
	)
}
