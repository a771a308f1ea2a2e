package sessionsdk

import (
	"context"
	"net/http"
)

// SetCookie asks the server to mint a session cookie wrapping firebaseToken.
// The call is bounded by CookieSetTimeout.
func (c *SDKClient) SetCookie(ctx context.Context, firebaseToken string) error {
	ctx, cancel := context.WithTimeout(ctx, CookieSetTimeout)
	defer cancel()

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth-cookie/set", "",
		SetCookieRequest{FirebaseToken: firebaseToken})
	if err != nil {
		return err
	}

	var out SuccessResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// RefreshCookie renews the session cookie held in the client's jar.
func (c *SDKClient) RefreshCookie(ctx context.Context) (*RefreshResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth-cookie/refresh", "", nil)
	if err != nil {
		return nil, err
	}

	var out RefreshResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearCookie removes the session cookie.
func (c *SDKClient) ClearCookie(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth-cookie/clear", "", nil)
	if err != nil {
		return err
	}

	var out SuccessResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// Session reports what the server sees in the current session cookie.
func (c *SDKClient) Session(ctx context.Context) (*SessionInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/auth-cookie/session", "", nil)
	if err != nil {
		return nil, err
	}

	var out SessionInfo
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ready calls the readiness probe.
func (c *SDKClient) Ready(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/readyz", "", nil)
	if err != nil {
		return nil, err
	}

	var out HealthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
