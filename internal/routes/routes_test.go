package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/FitTrackBack/internal/config"
	"github.com/saeid-a/FitTrackBack/internal/events"
	"github.com/saeid-a/FitTrackBack/internal/metrics"
	"github.com/saeid-a/FitTrackBack/internal/middleware"
	"github.com/saeid-a/FitTrackBack/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer wires every route without a database; only paths that
// answer before touching storage are exercised.
func newTestServer(t *testing.T, limit int) *fiber.App {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:         "test-secret",
		JWTAlgorithm:      "HS256",
		TokenTTL:          time.Hour,
		Argon2Memory:      1024,
		Argon2Time:        1,
		Argon2Parallelism: 1,
		DefaultPageSize:   20,
		MaxPageSize:       100,
		MaxUploadMB:       10,
		RateLimitMax:      limit,
		AppEnv:            "test",
	}
	m, err := metrics.New()
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Use(middleware.RequestLogger(m))
	require.NoError(t, RegisterRoutes(app, cfg, nil, Infra{
		Metrics:   m,
		Limiter:   ratelimit.NewSlidingWindow(limit, time.Minute),
		Publisher: events.NopPublisher{},
	}))
	return app
}

func getJSON(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHealthAndRoot(t *testing.T) {
	app := newTestServer(t, 100)

	status, body := getJSON(t, app, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Service is healthy", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, config.AppName, data["app_name"])
	assert.Equal(t, "test", data["environment"])

	status, body = getJSON(t, app, "/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Welcome to Fitness Tracking API", body["message"])
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestServer(t, 100)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedGroupsRequireToken(t *testing.T) {
	app := newTestServer(t, 100)

	for _, path := range []string{
		"/api/v1/users/me",
		"/api/v1/workouts",
		"/api/v1/goals/1",
		"/api/v1/measurements",
		"/api/v1/tenants",
		"/api/v1/admin/users/stats/summary",
		"/api/v1/admin/audit-logs",
	} {
		t.Run(path, func(t *testing.T) {
			status, body := getJSON(t, app, path)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "Not authenticated", body["message"])
		})
	}
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	app := newTestServer(t, 100)

	status, body := getJSON(t, app, "/api/v1/nothing-here")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Not found", body["message"])
}

func TestAPIIsRateLimited(t *testing.T) {
	app := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		status, _ := getJSON(t, app, "/api/v1/workouts")
		require.Equal(t, http.StatusUnauthorized, status)
	}
	status, body := getJSON(t, app, "/api/v1/workouts")
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "Too many requests", body["message"])

	// operational endpoints sit outside the limiter
	status, _ = getJSON(t, app, "/health")
	assert.Equal(t, http.StatusOK, status)
}
