package middleware

import (
	apperrors "car-rental/errors"
	"car-rental/logger"
	"car-rental/token"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"
)

const (
	tokenContextKey    = "identity"
	claimsContextKey   = "identityClaims"
	identityContextKey = "identityEmail"
)

// Authorize returns the access guard. It reads the session cookie, verifies
// it, binds the caller's email to the request and only then calls the next
// handler. Missing or invalid tokens end the request with 401. Claims already
// verified by Identify earlier in the chain are used as they are.
func Authorize(tokens *token.Service) fiber.Handler {
	verify := jwtware.New(jwtware.Config{
		SigningKey:     tokens.SigningKey(),
		SigningMethod:  token.SigningMethod,
		ContextKey:     tokenContextKey,
		Claims:         &token.Claims{},
		TokenLookup:    "cookie:" + token.CookieName,
		SuccessHandler: bindVerifiedToken,
		ErrorHandler:   jwtError,
	})

	return func(c *fiber.Ctx) error {
		if claims, ok := c.Locals(claimsContextKey).(*token.Claims); ok {
			return bindIdentity(c, claims)
		}
		return verify(c)
	}
}

func bindVerifiedToken(c *fiber.Ctx) error {
	verified, _ := c.Locals(tokenContextKey).(*jwt.Token)
	claims, err := token.ClaimsOf(verified)
	if err != nil {
		return apperrors.RaisePermissionsError(c, err.Error())
	}
	tagLogger(c, claims.Email)
	return bindIdentity(c, claims)
}

func bindIdentity(c *fiber.Ctx, claims *token.Claims) error {
	c.Locals(identityContextKey, claims.Email)
	return c.Next()
}

func jwtError(c *fiber.Ctx, err error) error {
	logger.FromCtx(c).Debug().Err(err).Msg("request rejected by access guard")
	if err.Error() == "Missing or malformed JWT" {
		return apperrors.RaisePermissionsError(c, "missing identity token")
	}
	return apperrors.RaisePermissionsError(c, "invalid or expired identity token")
}

// Identity returns the email bound by Authorize.
func Identity(c *fiber.Ctx) (string, bool) {
	email, ok := c.Locals(identityContextKey).(string)
	return email, ok && email != ""
}

// Identify tags the request logger with the caller's email when a valid
// session cookie is present and keeps the verified claims for Authorize. It
// never rejects a request and binds no identity; routes that need one use
// Authorize.
func Identify(tokens *token.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(token.CookieName)
		if raw == "" {
			return c.Next()
		}
		if claims, err := tokens.Verify(raw); err == nil {
			c.Locals(claimsContextKey, claims)
			tagLogger(c, claims.Email)
		}
		return c.Next()
	}
}

func tagLogger(c *fiber.Ctx, email string) {
	l := logger.FromCtx(c).GetChildLogger()
	l.UpdateContext(func(lc zerolog.Context) zerolog.Context {
		return lc.Str("email", email)
	})
	c.SetUserContext(l.WithContext(c.UserContext()))
}
