package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"siport/internal/types"
)

// UserStoreClient resolves live user records and session tokens from the
// external user/session provider over its REST surface. It implements
// types.UserDirectory; the portal never mutates role or tier through it
// (tier upgrades go through the payment flow, which writes to the provider
// directly).
type UserStoreClient struct {
	base    *BaseClient
	baseURL string
	apiKey  string
}

// NewUserStoreClient creates a client for the provider at baseURL,
// authenticating with the service API key.
func NewUserStoreClient(httpClient *http.Client, baseURL, apiKey string, opts ...BaseClientOption) *UserStoreClient {
	return &UserStoreClient{
		base:    NewBaseClient(httpClient, "userstore", DefaultRetryPolicy(), "siport-core/1.0", opts...),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

var _ types.UserDirectory = (*UserStoreClient)(nil)

// GetProfile fetches the live user record. A 404 maps to not_found_user so
// the Action Gate can apply its lowest-tier fail-safe; other failures map to
// the retryable upstream error.
func (c *UserStoreClient) GetProfile(ctx context.Context, userID string) (*types.UserProfile, error) {
	endpoint := fmt.Sprintf("%s/v1/profiles/%s", c.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build profile request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var p types.UserProfile
		if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
			return nil, types.NewAppError(types.ErrCodeUpstreamUserStore, "malformed profile response", err)
		}
		if p.UserID == "" {
			p.UserID = userID
		}
		return &p, nil
	case http.StatusNotFound:
		return nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
	default:
		return nil, types.NewAppError(types.ErrCodeUpstreamUserStore,
			fmt.Sprintf("user store returned %d", resp.StatusCode), nil)
	}
}

// sessionResponse is the provider's session introspection payload.
type sessionResponse struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	Tier      string `json:"tier"`
	ExpiresAt string `json:"expires_at"`
}

// ResolveSession validates a session token with the provider and returns the
// Actor it belongs to. Expired or unknown tokens map to auth errors.
func (c *UserStoreClient) ResolveSession(ctx context.Context, token string) (*types.Actor, error) {
	endpoint := c.baseURL + "/v1/sessions/introspect"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build session request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Session-Token", token)

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var s sessionResponse
		if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
			return nil, types.NewAppError(types.ErrCodeUpstreamUserStore, "malformed session response", err)
		}
		if s.ExpiresAt != "" {
			if exp, perr := time.Parse(time.RFC3339, s.ExpiresAt); perr == nil && time.Now().After(exp) {
				return nil, types.NewAppError(types.ErrCodeAuthSessionExpired, "session has expired", nil)
			}
		}
		return &types.Actor{
			UserID: s.UserID,
			Role:   types.Role(s.Role),
			Tier:   types.Tier(s.Tier),
		}, nil
	case http.StatusNotFound, http.StatusUnauthorized:
		return nil, types.NewAppError(types.ErrCodeAuthTokenInvalid, "invalid session token", nil)
	default:
		return nil, types.NewAppError(types.ErrCodeUpstreamUserStore,
			fmt.Sprintf("session provider returned %d", resp.StatusCode), nil)
	}
}
