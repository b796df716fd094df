package middleware

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "car-rental/errors"
	"car-rental/logger"
	"car-rental/token"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuardedApp(tokens *token.Service, reached *string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperrors.Handler})
	app.Use(RequestLogger(logger.Nop()))
	app.Get("/private", Authorize(tokens), func(c *fiber.Ctx) error {
		email, ok := Identity(c)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		*reached = email
		return c.SendString(email)
	})
	return app
}

func get(t *testing.T, app *fiber.App, route, cookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, route, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: token.CookieName, Value: cookie})
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	return res
}

func TestAuthorize_BindsIdentityBeforeHandler(t *testing.T) {
	tokens := token.NewService("middleware-secret", time.Hour)
	var reached string
	app := newGuardedApp(tokens, &reached)

	signed, _, err := tokens.Issue("ann@example.com")
	require.NoError(t, err)

	res := get(t, app, "/private", signed)

	require.Equal(t, http.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", string(body))
	assert.Equal(t, "ann@example.com", reached)
}

func TestAuthorize_Rejects(t *testing.T) {
	tokens := token.NewService("middleware-secret", time.Hour)
	expired := token.NewService("middleware-secret", -time.Minute)
	other := token.NewService("other-secret", time.Hour)

	expiredToken, _, err := expired.Issue("ann@example.com")
	require.NoError(t, err)
	foreignToken, _, err := other.Issue("ann@example.com")
	require.NoError(t, err)

	tests := []struct {
		description string
		cookie      string
	}{
		{"no cookie", ""},
		{"garbage", "abc.def.ghi"},
		{"expired", expiredToken},
		{"signed with another key", foreignToken},
	}

	for _, test := range tests {
		var reached string
		app := newGuardedApp(tokens, &reached)

		res := get(t, app, "/private", test.cookie)

		assert.Equalf(t, http.StatusUnauthorized, res.StatusCode, test.description)
		assert.Emptyf(t, reached, test.description)
	}
}

func TestAuthorize_ReusesClaimsVerifiedByIdentify(t *testing.T) {
	tokens := token.NewService("middleware-secret", time.Hour)
	// A guard on another key would reject the cookie on its own, so a 200
	// shows it took the claims Identify had already verified.
	otherKey := token.NewService("other-secret", time.Hour)

	app := fiber.New(fiber.Config{ErrorHandler: apperrors.Handler})
	app.Use(Identify(tokens))
	app.Get("/private", Authorize(otherKey), func(c *fiber.Ctx) error {
		email, _ := Identity(c)
		return c.SendString(email)
	})

	signed, _, err := tokens.Issue("ann@example.com")
	require.NoError(t, err)

	res := get(t, app, "/private", signed)

	require.Equal(t, http.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", string(body))
}

func TestAuthorize_WithIdentifyStillRejectsBadTokens(t *testing.T) {
	tokens := token.NewService("middleware-secret", time.Hour)
	foreign, _, err := token.NewService("other-secret", time.Hour).Issue("ann@example.com")
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: apperrors.Handler})
	app.Use(Identify(tokens))
	app.Get("/private", Authorize(tokens), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for _, cookie := range []string{"", "garbage", foreign} {
		res := get(t, app, "/private", cookie)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	}
}

func TestIdentity_EmptyWithoutGuard(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, ok := Identity(c)
		return c.SendString(fmt.Sprint(ok))
	})

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "false", string(body))
}

func TestIdentify_NeverRejects(t *testing.T) {
	tokens := token.NewService("middleware-secret", time.Hour)
	app := fiber.New()
	app.Use(Identify(tokens))
	app.Get("/", func(c *fiber.Ctx) error {
		_, ok := Identity(c)
		return c.SendString(fmt.Sprint(ok))
	})

	for _, cookie := range []string{"", "garbage"} {
		res := get(t, app, "/", cookie)
		require.Equal(t, http.StatusOK, res.StatusCode)
		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.Equal(t, "false", string(body))
	}
}

func TestRequestLogger_RoutesChainErrorsThroughErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: apperrors.Handler})
	app.Use(RequestLogger(logger.Nop()))
	app.Get("/", func(c *fiber.Ctx) error {
		return fmt.Errorf("car is booked: %w", apperrors.ErrConflict)
	})

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)

	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("X-Trace-ID"))
}
