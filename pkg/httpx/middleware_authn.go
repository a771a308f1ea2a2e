package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/certquest/sessiond/pkg/identity"
	"github.com/certquest/sessiond/pkg/slogx"
)

// UpstreamBearerMiddleware authenticates requests carrying an upstream
// identity token as a bearer credential.
func UpstreamBearerMiddleware(v identity.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			verdict, err := v.Verify(ctx, raw)
			if err != nil {
				log.Error("upstream token verification unavailable", "err", err)
				WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"error":   "UPSTREAM_UNAVAILABLE",
					"message": "identity provider unavailable",
				})
				return
			}
			if !verdict.Valid() {
				log.Warn("upstream token rejected", "kind", verdict.Kind.String())
				writeBearerError(w, "token "+verdict.Kind.String())
				return
			}

			ctx = contextWithSubject(ctx, verdict.Subject, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithSubject(ctx context.Context, subject, token string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, subject)
	ctx = context.WithValue(ctx, CtxKeyToken, token)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":   "UNAUTHORIZED",
		"message": desc,
	})
}
