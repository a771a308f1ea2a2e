package sessionsdk

import "time"

// SetCookieRequest is the body of POST /api/auth-cookie/set.
type SetCookieRequest struct {
	FirebaseToken string `json:"firebaseToken"`
}

// SuccessResponse is returned by the set and clear cookie routes.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// RefreshResponse is returned by POST /api/auth-cookie/refresh on success.
type RefreshResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// SessionInfo is returned by GET /api/auth-cookie/session.
type SessionInfo struct {
	Authenticated bool       `json:"authenticated"`
	UserID        string     `json:"userId,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`

	// Legacy is set for session tokens issued without a jti.
	Legacy bool `json:"legacy,omitempty"`
}

// LoginResponse is returned by POST /api/auth/login.
type LoginResponse struct {
	APIUserID string `json:"api_user_id"`
}

// SetClaimsRequest is the body of POST /api/auth/set-claims.
type SetClaimsRequest struct {
	APIUserID string `json:"api_user_id"`
}

// HealthResponse represents the response from health check endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks holds the individual readiness checks.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
	Verifier string `json:"verifier"`
}
