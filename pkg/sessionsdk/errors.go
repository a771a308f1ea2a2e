package sessionsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/certquest/sessiond/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeNoToken                  = "NO_TOKEN"
	ErrorCodeMalformedToken           = "MALFORMED_TOKEN"
	ErrorCodeInvalidToken             = "INVALID_TOKEN"
	ErrorCodeInvalidTokenStructure    = "INVALID_TOKEN_STRUCTURE"
	ErrorCodeFirebaseTokenInvalid     = "FIREBASE_TOKEN_INVALID"
	ErrorCodeServerConfigurationError = "SERVER_CONFIGURATION_ERROR"
	ErrorCodeRefreshFailed            = "REFRESH_FAILED"
	ErrorCodeRateLimited              = httpx.RateLimitedCode
	ErrorCodeMissingToken             = "MISSING_TOKEN"
	ErrorCodeInvalidRequest           = "INVALID_REQUEST"
	ErrorCodeUnauthorized             = "UNAUTHORIZED"
	ErrorCodeForbidden                = "FORBIDDEN"
	ErrorCodeInternal                 = "INTERNAL_ERROR"
	ErrorCodeNoAPIUserID              = "NO_API_USER_ID"
	ErrorCodeUpstreamUnavailable      = "UPSTREAM_UNAVAILABLE"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the error body shared by every session endpoint. The server
// writes it with WriteError; the SDK parses non-2xx responses back into it.
type APIError struct {
	StatusCode int `json:"-"`

	Code           string `json:"error"`
	Message        string `json:"message,omitempty"`
	RequiresReauth bool   `json:"requiresReauth,omitempty"`
	RetryAfter     int    `json:"retryAfter,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (HTTP %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e)
}

// WithMessage returns a copy carrying a different message.
func (e *APIError) WithMessage(msg string) *APIError {
	cp := *e
	cp.Message = msg
	return &cp
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrNoToken = &APIError{
		StatusCode:     http.StatusUnauthorized,
		Code:           ErrorCodeNoToken,
		Message:        "No session token found",
		RequiresReauth: true,
	}

	ErrMalformedToken = &APIError{
		StatusCode:     http.StatusUnauthorized,
		Code:           ErrorCodeMalformedToken,
		Message:        "Session token could not be decoded",
		RequiresReauth: true,
	}

	ErrInvalidToken = &APIError{
		StatusCode:     http.StatusUnauthorized,
		Code:           ErrorCodeInvalidToken,
		Message:        "Session token is invalid",
		RequiresReauth: true,
	}

	ErrInvalidTokenStructure = &APIError{
		StatusCode:     http.StatusUnauthorized,
		Code:           ErrorCodeInvalidTokenStructure,
		Message:        "Session token does not wrap an identity token",
		RequiresReauth: true,
	}

	ErrFirebaseTokenInvalid = &APIError{
		StatusCode:     http.StatusUnauthorized,
		Code:           ErrorCodeFirebaseTokenInvalid,
		Message:        "Identity token is no longer valid",
		RequiresReauth: true,
	}

	ErrServerConfiguration = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerConfigurationError,
		Message:    "Server configuration error",
	}

	ErrRefreshFailed = &APIError{
		StatusCode:     http.StatusInternalServerError,
		Code:           ErrorCodeRefreshFailed,
		Message:        "Session refresh failed",
		RequiresReauth: true,
	}

	ErrMissingToken = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeMissingToken,
		Message:    "firebaseToken is required",
	}

	ErrInvalidRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidRequest,
		Message:    "The request body is malformed",
	}

	ErrUnauthorized = &APIError{
		StatusCode:     http.StatusUnauthorized,
		Code:           ErrorCodeUnauthorized,
		Message:        "Authentication failed",
		RequiresReauth: true,
	}

	ErrForbidden = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeForbidden,
		Message:    "Not allowed to modify this identity",
	}

	ErrUpstreamUnavailable = &APIError{
		StatusCode: http.StatusServiceUnavailable,
		Code:       ErrorCodeUpstreamUnavailable,
		Message:    "Identity provider unavailable",
	}

	ErrInternal = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeInternal,
		Message:    "Internal server error",
	}
)

// ErrAuthentication tags errors that require the user to sign in again.
var ErrAuthentication = errors.New("sessionsdk: authentication required")

// ErrNoAPIUserID is reported by PerformAuthSetup when neither the API login
// nor the identity claims produced a usable internal user id.
var ErrNoAPIUserID = errors.New("sessionsdk: " + ErrorCodeNoAPIUserID)

// authPhrases are message fragments the backend and the identity provider use
// for authentication failures that arrive without structure.
var authPhrases = []string{"Authentication failed", "Session expired"}

// IsAuthenticationError reports whether err means the user must sign in
// again: it is tagged ErrAuthentication, it is an HTTP 401, or its message
// carries one of the known authentication phrases.
func IsAuthenticationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthentication) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		return true
	}

	msg := err.Error()
	for _, phrase := range authPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode:     resp.StatusCode,
		Code:           fallbackCode(resp.StatusCode),
		Message:        fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		RequiresReauth: resp.StatusCode == http.StatusUnauthorized,
	}
}

func fallbackCode(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return ErrorCodeUnauthorized
	case http.StatusForbidden:
		return ErrorCodeForbidden
	case http.StatusTooManyRequests:
		return ErrorCodeRateLimited
	case http.StatusBadRequest:
		return ErrorCodeInvalidRequest
	default:
		return ErrorCodeInternal
	}
}
