package sessionsdk

import (
	"context"
	"net/http"
)

// APILogin exchanges an identity token for the internal user id.
func (c *SDKClient) APILogin(ctx context.Context, idToken string) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", idToken, nil)
	if err != nil {
		return "", err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return "", err
	}
	return out.APIUserID, nil
}

// SetClaims stores apiUserID in the identity provider's custom claims for the
// holder of idToken.
func (c *SDKClient) SetClaims(ctx context.Context, idToken, apiUserID string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/set-claims", idToken,
		SetClaimsRequest{APIUserID: apiUserID})
	if err != nil {
		return err
	}

	return decodeJSON(resp, nil, http.StatusOK)
}
