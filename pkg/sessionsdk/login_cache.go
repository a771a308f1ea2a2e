package sessionsdk

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/certquest/sessiond/pkg/identity"
)

const (
	// DefaultLoginCacheTTL is how long a resolved API-login result is reused
	// for the same identity token.
	DefaultLoginCacheTTL = 30 * time.Second

	// DefaultLoginTimeout bounds a single API-login exchange.
	DefaultLoginTimeout = 10 * time.Second
)

// Exchanger trades an identity token for an internal user id.
// *SDKClient implements it.
type Exchanger interface {
	APILogin(ctx context.Context, idToken string) (string, error)
}

// AuthSessionCache deduplicates API-login exchanges for one client session.
//
// At most one exchange per token is in flight; concurrent callers for the
// same token wait on it and share its result. A usable result is kept in a
// single slot for TTL, so only the most recent token is cached. Reset drops
// the slot and detaches any in-flight exchange from the cache.
type AuthSessionCache struct {
	exchanger Exchanger
	logger    *slog.Logger
	ttl       time.Duration
	timeout   time.Duration
	now       func() time.Time

	group singleflight.Group

	mu   sync.Mutex
	gen  uint64
	slot loginSlot
}

type loginSlot struct {
	token  string
	result string
	at     time.Time
}

// LoginCacheOption configures an AuthSessionCache.
type LoginCacheOption func(*AuthSessionCache)

// WithLoginCacheTTL overrides DefaultLoginCacheTTL.
func WithLoginCacheTTL(ttl time.Duration) LoginCacheOption {
	return func(c *AuthSessionCache) { c.ttl = ttl }
}

// WithLoginTimeout overrides DefaultLoginTimeout.
func WithLoginTimeout(d time.Duration) LoginCacheOption {
	return func(c *AuthSessionCache) { c.timeout = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) LoginCacheOption {
	return func(c *AuthSessionCache) { c.now = now }
}

// WithLogger sets the logger used for failed exchanges.
func WithLogger(l *slog.Logger) LoginCacheOption {
	return func(c *AuthSessionCache) { c.logger = l }
}

// NewAuthSessionCache creates an empty cache in front of ex.
func NewAuthSessionCache(ex Exchanger, opts ...LoginCacheOption) *AuthSessionCache {
	c := &AuthSessionCache{
		exchanger: ex,
		logger:    slog.Default(),
		ttl:       DefaultLoginCacheTTL,
		timeout:   DefaultLoginTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PerformAPILogin returns the internal user id for token, or "" when the
// exchange failed or produced a placeholder id. Failures are logged, never
// returned, so callers can fall back to custom claims.
func (c *AuthSessionCache) PerformAPILogin(ctx context.Context, token string) string {
	if token == "" {
		return ""
	}

	c.mu.Lock()
	if c.slot.token == token && c.now().Sub(c.slot.at) <= c.ttl {
		result := c.slot.result
		c.mu.Unlock()
		return result
	}
	gen := c.gen
	c.mu.Unlock()

	// The key carries the generation so callers arriving after Reset never
	// join an exchange started before it.
	key := strconv.FormatUint(gen, 10) + ":" + token

	ch := c.group.DoChan(key, func() (any, error) {
		return c.exchange(ctx, gen, token), nil
	})

	select {
	case res := <-ch:
		id, _ := res.Val.(string)
		return id
	case <-ctx.Done():
		return ""
	}
}

func (c *AuthSessionCache) exchange(ctx context.Context, gen uint64, token string) string {
	// The exchange outlives the first caller's cancellation; other callers
	// may be waiting on it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	id, err := c.exchanger.APILogin(ctx, token)
	if err != nil {
		c.logger.WarnContext(ctx, "api login failed", "err", err)
		return ""
	}

	id = identity.UsableID(id)
	if id == "" {
		c.logger.WarnContext(ctx, "api login returned no usable id")
		return ""
	}

	c.mu.Lock()
	if c.gen == gen {
		c.slot = loginSlot{token: token, result: id, at: c.now()}
	}
	c.mu.Unlock()

	return id
}

// Reset forgets the cached result. Call it on sign-out.
func (c *AuthSessionCache) Reset() {
	c.mu.Lock()
	c.gen++
	c.slot = loginSlot{}
	c.mu.Unlock()
}
