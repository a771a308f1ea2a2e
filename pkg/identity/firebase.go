package identity

import (
	"context"
	"errors"
	"fmt"
	"maps"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/errorutils"
	"google.golang.org/api/option"
)

// FirebaseConfig configures the Firebase Admin SDK backed verifier.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string // optional; application default credentials otherwise

	// CheckRevoked additionally asks Firebase whether the session was
	// revoked or the user disabled. Costs one extra round-trip per call.
	CheckRevoked bool
}

// Firebase verifies Firebase ID tokens and manages custom claims.
type Firebase struct {
	client       *auth.Client
	checkRevoked bool
}

var _ Verifier = (*Firebase)(nil)
var _ ClaimsAdmin = (*Firebase)(nil)

// NewFirebase initialises the Admin SDK auth client.
func NewFirebase(ctx context.Context, cfg FirebaseConfig) (*Firebase, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("identity: firebase project id is required")
	}

	opts := []option.ClientOption{}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("identity: firebase.NewApp: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("identity: firebase app.Auth: %w", err)
	}

	return &Firebase{client: client, checkRevoked: cfg.CheckRevoked}, nil
}

// Verify validates a Firebase ID token.
func (f *Firebase) Verify(ctx context.Context, token string) (Verdict, error) {
	if token == "" {
		return Verdict{Kind: KindInvalid, Reason: "empty token"}, nil
	}

	var (
		tok *auth.Token
		err error
	)
	if f.checkRevoked {
		tok, err = f.client.VerifyIDTokenAndCheckRevoked(ctx, token)
	} else {
		tok, err = f.client.VerifyIDToken(ctx, token)
	}
	if err != nil {
		return classifyFirebaseError(err)
	}

	return Verdict{Kind: KindValid, Subject: tok.UID, Claims: tok.Claims}, nil
}

func classifyFirebaseError(err error) (Verdict, error) {
	switch {
	case auth.IsIDTokenExpired(err):
		return Verdict{Kind: KindExpired, Reason: err.Error()}, nil
	case auth.IsIDTokenRevoked(err), auth.IsUserDisabled(err):
		return Verdict{Kind: KindRevoked, Reason: err.Error()}, nil
	case auth.IsCertificateFetchFailed(err):
		return Verdict{}, fmt.Errorf("identity: fetch signing certificates: %w", err)
	case errorutils.IsUnavailable(err), errorutils.IsDeadlineExceeded(err),
		errorutils.IsInternal(err), errorutils.IsUnknown(err):
		return Verdict{}, fmt.Errorf("identity: provider unavailable: %w", err)
	default:
		return Verdict{Kind: KindInvalid, Reason: err.Error()}, nil
	}
}

// SetAPIUserID merges the api_user_id claim into the subject's existing
// custom claims.
func (f *Firebase) SetAPIUserID(ctx context.Context, subject, apiUserID string) error {
	user, err := f.client.GetUser(ctx, subject)
	if err != nil {
		return fmt.Errorf("identity: get user %s: %w", subject, err)
	}

	claims := make(map[string]any, len(user.CustomClaims)+1)
	maps.Copy(claims, user.CustomClaims)
	claims[APIUserIDClaim] = apiUserID

	if err := f.client.SetCustomUserClaims(ctx, subject, claims); err != nil {
		return fmt.Errorf("identity: set custom claims for %s: %w", subject, err)
	}
	return nil
}
