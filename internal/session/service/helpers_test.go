package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/certquest/sessiond/internal/session/service"
	"github.com/certquest/sessiond/internal/session/store/drivers/sqlite"
	"github.com/certquest/sessiond/pkg/identity"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-enough-entropy"

// fakeVerifier maps upstream tokens to verdicts.
type fakeVerifier struct {
	verdicts map[string]identity.Verdict
	err      error
	panics   bool
	calls    int
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (identity.Verdict, error) {
	f.calls++
	if f.panics {
		panic("verifier exploded")
	}
	if f.err != nil {
		return identity.Verdict{}, f.err
	}
	if v, ok := f.verdicts[token]; ok {
		return v, nil
	}
	return identity.Verdict{Kind: identity.KindInvalid, Reason: "unknown token"}, nil
}

type fakeClaimsAdmin struct {
	mu  sync.Mutex
	set map[string]string
	err error
}

func (f *fakeClaimsAdmin) SetAPIUserID(_ context.Context, subject, apiUserID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.set == nil {
		f.set = map[string]string{}
	}
	f.set[subject] = apiUserID
	return nil
}

func valid(subject string) identity.Verdict {
	return identity.Verdict{Kind: identity.KindValid, Subject: subject}
}

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func newCodec(t *testing.T, cfg service.CookieConfig, secret string) *service.CookieCodec {
	t.Helper()
	c, err := service.NewCookieCodec(cfg, secret)
	require.NoError(t, err)
	return c
}

// mintCookie issues a session token at the given instant and returns a
// request carrying it.
func mintCookie(t *testing.T, c *service.CookieCodec, upstream string, at time.Time) (*http.Request, service.IssuedToken) {
	t.Helper()
	prev := c.Now
	c.Now = func() time.Time { return at }
	defer func() { c.Now = prev }()

	tok, err := c.Mint(upstream)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth-cookie/refresh", nil)
	req.AddCookie(&http.Cookie{Name: c.Name(), Value: tok.Raw})
	return req, tok
}

func cookiesByName(rec *httptest.ResponseRecorder) map[string][]*http.Cookie {
	out := map[string][]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = append(out[c.Name], c)
	}
	return out
}

func deriveTestKey() ([]byte, error) {
	return service.DeriveSessionKey(testSecret)
}
