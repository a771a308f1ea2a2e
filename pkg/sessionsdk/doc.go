// Package sessionsdk is the client-side half of the session service.
//
// It wraps the cookie routes (/api/auth-cookie/*) and the account endpoints
// (/api/auth/login, /api/auth/set-claims) in a typed SDKClient, and carries
// the sign-in coordination that runs next to them:
//
//   - AuthSessionCache deduplicates API-login exchanges so that at most one
//     exchange per identity token is in flight, and caches the resolved id
//     for a short window.
//   - ClaimsReconciler and AuthSetup resolve the internal user id from the
//     API login and the identity provider's custom claims, patching claims
//     when they are missing or stale.
//   - FailureHandler resets client state after an unrecoverable
//     authentication failure and decides whether to send the user to the
//     sign-in page.
//
// Basic usage:
//
//	client := sessionsdk.NewSDKClient("https://app.example.com")
//	logins := sessionsdk.NewAuthSessionCache(client)
//	setup := &sessionsdk.AuthSetup{
//		Cookies:    client,
//		Logins:     logins,
//		Reconciler: sessionsdk.NewClaimsReconciler(client, sessionsdk.ReconcilerConfig{}),
//	}
//	res := setup.PerformAuthSetup(ctx, tokenSource)
//	if !res.Success {
//		// res.Err is ErrNoAPIUserID or the token source failure
//	}
package sessionsdk
