package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/archhub/internal/config"
	"github.com/localnerve/archhub/internal/handlers"
	"github.com/localnerve/archhub/internal/middleware"
	"github.com/localnerve/archhub/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Use(middleware.RequestLogger())
	app.Use(middleware.VersionMiddleware())
	app.Get("/user", middleware.AuthUser(cfg), func(c *fiber.Ctx) error {
		return c.SendString(middleware.ActorName(c))
	})
	app.Get("/admin", middleware.AuthAdmin(cfg), func(c *fiber.Ctx) error {
		return c.SendString(middleware.ActorName(c))
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	return app
}

func TestVersionMiddleware(t *testing.T) {
	app := newApp(&config.Config{})

	tests := []struct {
		header   string
		expected string
	}{
		{"", middleware.DefaultAPIVersion},
		{"1", middleware.DefaultAPIVersion},
		{"1.0", middleware.DefaultAPIVersion},
		{"v1", middleware.DefaultAPIVersion},
		{"2.1.0", "2.1.0"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/user", nil)
		if tt.header != "" {
			req.Header.Set("X-Api-Version", tt.header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, resp.Header.Get("X-Api-Version"), "header %q", tt.header)
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	app := newApp(&config.Config{})

	first, err := app.Test(httptest.NewRequest("GET", "/user", nil))
	require.NoError(t, err)
	second, err := app.Test(httptest.NewRequest("GET", "/user", nil))
	require.NoError(t, err)

	assert.NotEmpty(t, first.Header.Get(middleware.RequestIDHeader))
	assert.NotEqual(t, first.Header.Get(middleware.RequestIDHeader), second.Header.Get(middleware.RequestIDHeader))
}

func TestRequestLoggerRendersErrors(t *testing.T) {
	app := newApp(&config.Config{})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	testhelpers.AssertStatus(t, resp, fiber.StatusTeapot)

	var body map[string]any
	testhelpers.ParseJSON(t, resp, &body)
	assert.Equal(t, "short and stout", body["message"])
	assert.Equal(t, false, body["ok"])
}

func TestAuthDisabledRunsAsSystem(t *testing.T) {
	app := newApp(&config.Config{})

	for _, path := range []string{"/user", "/admin"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		testhelpers.AssertStatus(t, resp, fiber.StatusOK)
		assert.Equal(t, "system", testhelpers.ReadBody(t, resp))
	}
}

func TestAuthEnabled(t *testing.T) {
	app := newApp(&config.Config{AuthzURL: "http://127.0.0.1:1", AuthzClientID: "client"})

	resp, err := app.Test(httptest.NewRequest("GET", "/admin", nil))
	require.NoError(t, err)
	testhelpers.AssertStatus(t, resp, fiber.StatusForbidden)

	var body map[string]any
	testhelpers.ParseJSON(t, resp, &body)
	assert.Equal(t, "data.authorization.admin", body["type"])

	req := httptest.NewRequest("GET", "/user", nil)
	req.AddCookie(&http.Cookie{Name: "cookie_session", Value: "abc"})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	testhelpers.AssertStatus(t, resp, fiber.StatusServiceUnavailable)
}

// TestAuthWithAuthorizer checks role enforcement against a real authorizer container
func TestAuthWithAuthorizer(t *testing.T) {
	testhelpers.RequireContainers(t, testhelpers.ContainerOptions{Database: true, Authorizer: true})

	tc, err := testhelpers.CreateTestContainers(t, testhelpers.ContainerOptions{Authorizer: true})
	require.NoError(t, err)
	defer tc.Terminate(t)

	clientID := os.Getenv("AUTHZ_CLIENT_ID")
	app := newApp(&config.Config{AuthzURL: tc.AuthzURL, AuthzClientID: clientID})

	session := testhelpers.AcquireSession(t, tc.AuthzURL, clientID,
		testhelpers.TestEmail(t), testhelpers.GeneratePassword(), []string{"user"})

	tests := []struct {
		name   string
		cookie string
	}{
		{"user on admin route", session},
		{"forged session", "not-a-session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			req.AddCookie(&http.Cookie{Name: "cookie_session", Value: tt.cookie})
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			testhelpers.AssertStatus(t, resp, fiber.StatusForbidden)
		})
	}
}
