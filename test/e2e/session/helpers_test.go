package session_test

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/certquest/sessiond/internal/session/service"
	"github.com/certquest/sessiond/pkg/sessionsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for session service end-to-end tests.
 * This includes container setup, cookie minting and assertions.
 */

const (
	testImageName = "certquest-sessiond-test:latest"

	joseSecret = "e2e-jose-secret-0123456789"
	projectID  = "certquest-e2e"

	// Nothing listens here: any call the Admin SDK makes to the provider
	// fails with connection refused.
	unreachableEmulator = "127.0.0.1:9"
)

// TestMain manages the test lifecycle, builds the Docker image once before
// all tests and cleans it up after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Session Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Session Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// buildDockerImage builds the test Docker image.
func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/sessiond/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

// cleanupDockerImage removes the test Docker image.
func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// baseEnv returns the container environment with relaxed rate limits.
func baseEnv() map[string]string {
	return map[string]string{
		"JOSE_SECRET":                 joseSecret,
		"FIREBASE_PROJECT_ID":         projectID,
		"FIREBASE_AUTH_EMULATOR_HOST": unreachableEmulator,
		"DATABASE_FILE":               "/data/sessiond.db",
		"ENV":                         "test",
		"LOG_LEVEL":                   "info",
		"LOG_FORMAT":                  "json",
		// Tests make many rapid requests which would otherwise hit the production limits
		"RATELIMIT_STRICT_REQUESTS":   "1000",
		"RATELIMIT_STRICT_WINDOW_SEC": "60",
		"RATELIMIT_STRICT_BURST":      "1000",
		"RATELIMIT_REFRESH_REQUESTS":  "1000",
		"RATELIMIT_REFRESH_BURST":     "1000",
		"RATELIMIT_MODERATE_REQUESTS": "1000",
		"RATELIMIT_MODERATE_BURST":    "1000",
	}
}

// setupSessionContainer starts the session service and returns the base URL.
func setupSessionContainer(t *testing.T) (string, func()) {
	return startContainer(t, baseEnv())
}

// setupSessionContainerWithDefaultRateLimits starts the service with the
// production rate limit profiles.
func setupSessionContainerWithDefaultRateLimits(t *testing.T) (string, func()) {
	env := baseEnv()
	for k := range env {
		if len(k) > 10 && k[:10] == "RATELIMIT_" {
			delete(env, k)
		}
	}
	return startContainer(t, env)
}

// setupSessionContainerWithoutSecret starts the service with no JOSE_SECRET.
func setupSessionContainerWithoutSecret(t *testing.T) (string, func()) {
	env := baseEnv()
	delete(env, "JOSE_SECRET")
	return startContainer(t, env)
}

func startContainer(t *testing.T, env map[string]string) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// mintSessionCookie signs a session token with the container's secret as of
// issuedAt and wraps upstream.
func mintSessionCookie(t *testing.T, upstream string, issuedAt time.Time) string {
	t.Helper()

	codec, err := service.NewCookieCodec(service.CookieConfig{}, joseSecret)
	require.NoError(t, err)
	codec.Now = func() time.Time { return issuedAt }

	tok, err := codec.Mint(upstream)
	require.NoError(t, err)
	return tok.Raw
}

// plantCookie stores a session cookie in the client's jar.
func plantCookie(t *testing.T, client *sessionsdk.SDKClient, value string) {
	t.Helper()

	u, err := url.Parse(client.BaseURL)
	require.NoError(t, err)
	client.HTTPClient.Jar.SetCookies(u, []*http.Cookie{{
		Name:  service.DefaultCookieName,
		Value: value,
		Path:  "/",
	}})
}

// hasCookie reports whether the client's jar still holds a session cookie.
func hasCookie(t *testing.T, client *sessionsdk.SDKClient) bool {
	t.Helper()

	u, err := url.Parse(client.BaseURL)
	require.NoError(t, err)
	for _, c := range client.HTTPClient.Jar.Cookies(u) {
		if c.Name == service.DefaultCookieName && c.Value != "" {
			return true
		}
	}
	return false
}

// assertAPIError checks that err is an APIError with the given status and code.
func assertAPIError(t *testing.T, err error, status int, code string) *sessionsdk.APIError {
	t.Helper()

	var apiErr *sessionsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
	return apiErr
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *sessionsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
