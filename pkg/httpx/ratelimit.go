package httpx

import (
	"math"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/certquest/sessiond/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitedCode is the error code of a throttled request. It is not an
// authentication failure, clients must not sign the user out on it.
const RateLimitedCode = "RATE_LIMITED"

// Profile is a token bucket: Requests per Window on average, with at most
// Burst requests admitted back to back.
type Profile struct {
	Name     string
	Requests int
	Window   time.Duration
	Burst    int
}

// Rate returns the steady refill rate.
func (p Profile) Rate() rate.Limit {
	if p.Window <= 0 || p.Requests <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(p.Requests) / p.Window.Seconds())
}

// Rate limit profiles per endpoint class. Each can be overridden with
// RATELIMIT_{NAME}_REQUESTS, RATELIMIT_{NAME}_WINDOW_SEC and RATELIMIT_{NAME}_BURST.
var (
	// StrictLimit guards cookie minting, which happens once per sign-in.
	StrictLimit = ProfileFromEnv(Profile{Name: "STRICT", Requests: 5, Window: time.Minute, Burst: 5})

	// RefreshLimit guards session renewal. A healthy client refreshes about
	// once per session lifetime plus a few retries after a 401.
	RefreshLimit = ProfileFromEnv(Profile{Name: "REFRESH", Requests: 10, Window: time.Minute, Burst: 3})

	// ModerateLimit guards API login and claim updates.
	ModerateLimit = ProfileFromEnv(Profile{Name: "MODERATE", Requests: 20, Window: time.Minute, Burst: 20})

	// LenientLimit guards cookie clearing and session status.
	LenientLimit = ProfileFromEnv(Profile{Name: "LENIENT", Requests: 100, Window: time.Minute, Burst: 100})

	// PublicLimit guards health probes.
	PublicLimit = ProfileFromEnv(Profile{Name: "PUBLIC", Requests: 1000, Window: time.Minute, Burst: 1000})
)

// ProfileFromEnv applies RATELIMIT_{p.Name}_* overrides to p. Unparseable or
// non-positive values are ignored.
func ProfileFromEnv(p Profile) Profile {
	envInt := func(field string) (int, bool) {
		n, err := strconv.Atoi(os.Getenv("RATELIMIT_" + p.Name + "_" + field))
		return n, err == nil && n > 0
	}

	if n, ok := envInt("REQUESTS"); ok {
		p.Requests = n
	}
	if n, ok := envInt("WINDOW_SEC"); ok {
		p.Window = time.Duration(n) * time.Second
	}
	if n, ok := envInt("BURST"); ok {
		p.Burst = n
	}
	return p
}

// KeyFunc selects the bucket a request is charged to. An empty key admits the
// request unmetered.
type KeyFunc func(*http.Request) string

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
// connection's remote host.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SubjectOrIP keys authenticated requests by upstream subject and client IP,
// anonymous ones by IP alone.
func SubjectOrIP(r *http.Request) string {
	ip := ClientIP(r)
	if sub, ok := SubjectFromContext(r.Context()); ok {
		return sub + ":" + ip
	}
	return ip
}

// Limiter holds one token bucket per key.
type Limiter struct {
	profile Profile
	now     func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// idleAfter is how long an untouched bucket is kept.
const idleAfter = 10 * time.Minute

// NewLimiter returns a Limiter for p. A nil now uses time.Now.
func NewLimiter(p Profile, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		profile:   p,
		now:       now,
		buckets:   make(map[string]*bucket),
		lastSweep: now(),
	}
}

// Allow charges one request to key. When the bucket is empty it returns false
// and how long until the next token.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.profile.Rate(), l.profile.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	if b.lim.AllowN(now, 1) {
		return true, 0
	}

	missing := 1 - b.lim.TokensAt(now)
	wait := time.Duration(missing / float64(b.lim.Limit()) * float64(time.Second))
	return false, wait
}

// Len reports how many buckets are held.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// sweep drops idle buckets at most once per idleAfter. Caller holds l.mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < idleAfter {
		return
	}
	l.lastSweep = now
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) >= idleAfter {
			delete(l.buckets, k)
		}
	}
}

// RateLimit rejects requests over p with 429, a Retry-After header and a
// RATE_LIMITED body. Throttled requests never reach next.
func RateLimit(p Profile, key KeyFunc) Middleware {
	return NewLimiter(p, nil).Middleware(key)
}

// Middleware meters requests against l, bucketed by key.
func (l *Limiter) Middleware(key KeyFunc) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: no key, request admitted")
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := l.Allow(k)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int(math.Ceil(wait.Seconds())), 1)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.profile.Requests))
			w.Header().Set("X-RateLimit-Window", l.profile.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"profile", l.profile.Name,
				"key", k,
				"retry_after", retryAfter,
			)

			WriteJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":      RateLimitedCode,
				"message":    "Too many requests. Please try again later.",
				"retryAfter": retryAfter,
			})
		})
	}
}

// RateLimitByIP limits per client IP.
func RateLimitByIP(p Profile) Middleware {
	return RateLimit(p, ClientIP)
}

// RateLimitByUser limits per authenticated subject, falling back to IP.
func RateLimitByUser(p Profile) Middleware {
	return RateLimit(p, SubjectOrIP)
}
