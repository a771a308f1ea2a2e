package sessionsdk

import (
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

const (
	// DefaultRequestTimeout bounds ancillary calls made through the SDK client.
	DefaultRequestTimeout = 15 * time.Second

	// CookieSetTimeout bounds the cookie-set call made during sign-in.
	CookieSetTimeout = 10 * time.Second
)

// SDKClient is a client for the session service. It keeps the session cookie
// in its cookie jar the way a browser would.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewSDKClient creates a client with a fresh cookie jar.
func NewSDKClient(baseURL string) *SDKClient {
	jar, _ := cookiejar.New(nil)
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: DefaultRequestTimeout,
			Jar:     jar,
		},
		Logger: slog.Default(),
	}
}

func (c *SDKClient) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
