package types

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Complete error code constants.
// All handlers MUST use these constants instead of hardcoded strings.
const (
	// Validation (400)
	ErrCodeValidationMissingField ErrorCode = "validation_missing_required_field"
	ErrCodeValidationInvalidBody  ErrorCode = "validation_invalid_body"
	ErrCodeValidationInvalidSlot  ErrorCode = "validation_invalid_time_slot"

	// Auth (401)
	ErrCodeAuthTokenMissing   ErrorCode = "auth_token_missing"
	ErrCodeAuthTokenInvalid   ErrorCode = "auth_token_invalid"
	ErrCodeAuthSessionExpired ErrorCode = "auth_session_expired"

	// Permission (403) -- the capability set forbids the action class outright.
	ErrCodePermissionDenied ErrorCode = "permission_denied"
	ErrCodePermissionTier   ErrorCode = "permission_tier_insufficient"

	// Quota -- capability allows the action class but the cap is exhausted.
	// Daily caps map to 429 (try again tomorrow), the standing appointment
	// cap maps to 403 (upgrade for more slots).
	ErrCodeQuotaExceededDaily        ErrorCode = "quota_exceeded_daily"
	ErrCodeQuotaExceededAppointments ErrorCode = "quota_exceeded_appointments"

	// Tier state -- role/tier combination not resolvable. Fails safe to the
	// role's lowest tier; logged, never surfaced as a blocking error.
	ErrCodeInvalidTierState ErrorCode = "invalid_tier_state"

	// Not Found (404)
	ErrCodeNotFoundUser        ErrorCode = "not_found_user"
	ErrCodeNotFoundAppointment ErrorCode = "not_found_appointment"
	ErrCodeNotFoundSlot        ErrorCode = "not_found_time_slot"

	// Conflict (409)
	ErrCodeConflictConnection ErrorCode = "conflict_connection_exists"
	ErrCodeConflictSlotTaken  ErrorCode = "conflict_slot_taken"

	// Internal/Upstream (500/502)
	ErrCodeInternalDB         ErrorCode = "internal_database_error"
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
	ErrCodePersistenceFailure ErrorCode = "persistence_failure"
	ErrCodeUpstreamUserStore  ErrorCode = "upstream_user_store_unavailable"
	ErrCodeUpstreamPayment    ErrorCode = "upstream_payment_unavailable"
)

// HTTPStatus maps an ErrorCode to its corresponding HTTP status code.
// Used by the API layer to translate AppErrors into HTTP responses.
// Returns 500 for unrecognized error codes as a safe default.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return http.StatusBadRequest // 400
	case strings.HasPrefix(s, "auth_"):
		return http.StatusUnauthorized // 401
	case strings.HasPrefix(s, "permission_"):
		return http.StatusForbidden // 403
	case s == string(ErrCodeQuotaExceededDaily):
		return http.StatusTooManyRequests // 429
	case s == string(ErrCodeQuotaExceededAppointments):
		return http.StatusForbidden // 403
	case strings.HasPrefix(s, "not_found_"):
		return http.StatusNotFound // 404
	case strings.HasPrefix(s, "conflict_"):
		return http.StatusConflict // 409
	case s == string(ErrCodePersistenceFailure):
		return http.StatusBadGateway // 502
	case strings.HasPrefix(s, "upstream_"):
		return http.StatusBadGateway // 502
	case strings.HasPrefix(s, "internal_"), s == string(ErrCodeInvalidTierState):
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}

// AppError is the standard application error type used throughout the portal
// core. All domain and handler errors should be expressed as AppError to
// enable consistent error formatting, HTTP status mapping, and error chain
// support.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code corresponding to this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// Retryable reports whether the client may retry the failed operation as-is.
// Only persistence/upstream failures qualify; permission and quota denials
// need a tier upgrade or the next calendar day.
func (e *AppError) Retryable() bool {
	return e.Code == ErrCodePersistenceFailure ||
		strings.HasPrefix(string(e.Code), "upstream_")
}

// NewAppError creates a new AppError with the given code, message, and
// optional underlying error. This is the standard constructor for domain
// errors.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAppErrorWithDetails creates a new AppError with the given code, message,
// underlying error, and structured details.
func NewAppErrorWithDetails(code ErrorCode, message string, err error, details map[string]any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}

// NewDenial builds the typed failure the UI renders as a tier-specific
// upgrade prompt. It carries the action kind, role and tier that were denied
// so the prompt can suggest the next tier up.
func NewDenial(code ErrorCode, action ActionKind, role Role, tier Tier, message string) *AppError {
	return NewAppErrorWithDetails(code, message, nil, map[string]any{
		"action": string(action),
		"role":   string(role),
		"tier":   string(tier),
	})
}
