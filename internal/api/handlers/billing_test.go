package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siport/internal/billing"
	"siport/internal/core"
	"siport/internal/external"
	"siport/internal/tiers"
	"siport/internal/types"
)

func newBillingRouter(t *testing.T, actor types.Actor, stripe http.HandlerFunc) *chi.Mux {
	t.Helper()

	srv := httptest.NewServer(stripe)
	t.Cleanup(srv.Close)

	base := external.NewBaseClient(
		srv.Client(),
		"stripe-test",
		external.RetryPolicy{MaxRetries: 0, MinWait: time.Millisecond, MaxWait: time.Millisecond},
		"siport-test/1.0",
		external.WithSleepFunc(func(time.Duration) {}),
	)
	svc := billing.NewUpgradeServiceWithBase(base, tiers.NewStaticCatalog(), billing.UpgradeServiceConfig{
		SecretKey: "sk_test_123",
		BaseURL:   srv.URL,
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(types.WithActor(r.Context(), actor)))
		})
	})
	router.Route("/v1", func(r chi.Router) {
		NewBillingHandler(svc, core.NewValidator(logger), logger).RegisterRoutes(r)
	})
	return router
}

func TestUpgradeEndpoint_Success(t *testing.T) {
	actor := types.Actor{UserID: "usr-1", Role: types.RoleVisitor, Tier: types.TierVisitorPremium}
	router := newBillingRouter(t, actor, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.com/pay/cs_test_1"}`))
	})

	body := `{"target_tier":"vip","success_url":"https://portal.example/done","cancel_url":"https://portal.example/pricing"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/billing/upgrade", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data billing.CheckoutSession `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cs_test_1", resp.Data.SessionID)
	assert.NotEmpty(t, resp.Data.CheckoutURL)
}

func TestUpgradeEndpoint_ValidationFailure(t *testing.T) {
	actor := types.Actor{UserID: "usr-1", Role: types.RoleVisitor, Tier: types.TierVisitorFree}
	router := newBillingRouter(t, actor, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Stripe must not be called")
	})

	// success_url must be a URL.
	body := `{"target_tier":"premium","success_url":"not-a-url","cancel_url":"https://portal.example/pricing"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/billing/upgrade", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(types.ErrCodeValidationMissingField), errorCode(t, rec))
}

func TestUpgradeEndpoint_NonUpgradeRejected(t *testing.T) {
	actor := types.Actor{UserID: "usr-1", Role: types.RoleVisitor, Tier: types.TierVisitorVIP}
	router := newBillingRouter(t, actor, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Stripe must not be called")
	})

	body := `{"target_tier":"premium","success_url":"https://portal.example/done","cancel_url":"https://portal.example/pricing"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/billing/upgrade", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(types.ErrCodeValidationInvalidBody), errorCode(t, rec))
}

func TestUpgradeEndpoint_StripeOutageIs502(t *testing.T) {
	actor := types.Actor{UserID: "usr-1", Role: types.RoleVisitor, Tier: types.TierVisitorFree}
	router := newBillingRouter(t, actor, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	body := `{"target_tier":"premium","success_url":"https://portal.example/done","cancel_url":"https://portal.example/pricing"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/billing/upgrade", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
