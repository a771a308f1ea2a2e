package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/certquest/sessiond/internal/session/service"
	"github.com/certquest/sessiond/internal/session/store"
	"github.com/certquest/sessiond/pkg/httpx"
	"github.com/certquest/sessiond/pkg/identity"
	"github.com/certquest/sessiond/pkg/slogx"

	_ "github.com/certquest/sessiond/api/session" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	codec    *service.CookieCodec
	verifier identity.Verifier

	RefreshService     *service.RefreshService
	AccountService     *service.AccountService
	SessionInfoService *service.SessionInfoService
}

func NewRouter(
	codec *service.CookieCodec,
	verifier identity.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		codec:        codec,
		verifier:     verifier,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerCookie()
	r.registerAccounts()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			CertQuest Session Service API
//	@version		0.1.0
//	@description	Issues and renews the HttpOnly session cookie that wraps the Firebase ID token,
//	@description	and links Firebase identities to internal user ids.
//	@description
//	@description				Session tokens are HS256 JWTs carrying {token, iat, jti, exp}.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Firebase ID token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerCookie() {
	// POST /set - strict rate limit by IP (one mint per sign-in)
	setHandler := &CookieSetHandler{Codec: r.codec, Verifier: r.verifier}
	r.Mux.Handle("POST /api/auth-cookie/set",
		httpx.Chain(setHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /refresh - throttled before any token state is touched
	refreshHandler := &CookieRefreshHandler{RefreshService: r.RefreshService}
	r.Mux.Handle("POST /api/auth-cookie/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.RefreshLimit),
		),
	)

	clearHandler := &CookieClearHandler{Codec: r.codec}
	r.Mux.Handle("POST /api/auth-cookie/clear",
		httpx.Chain(clearHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	sessionHandler := &SessionHandler{SessionInfoService: r.SessionInfoService}
	r.Mux.Handle("GET /api/auth-cookie/session",
		httpx.Chain(sessionHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerAccounts() {
	h := &AccountHandler{AccountService: r.AccountService}

	login := httpx.Chain(http.HandlerFunc(h.HandleLogin),
		httpx.UpstreamBearerMiddleware(r.verifier),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	setClaims := httpx.Chain(http.HandlerFunc(h.HandleSetClaims),
		httpx.UpstreamBearerMiddleware(r.verifier),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	r.Mux.Handle("POST /api/auth/login", login)
	r.Mux.Handle("POST /api/auth/set-claims", setClaims)
}

func (r *Router) registerSystem() {
	// Health check endpoints - monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.codec, r.verifier),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
