package handlers

import (
	"fmt"
	"time"

	apperrors "car-rental/errors"
	"car-rental/logger"
	"car-rental/token"

	"github.com/gofiber/fiber/v2"
)

// IssueToken signs an identity token for the posted email and hands it out
// as the session cookie.
func (h *Handler) IssueToken(c *fiber.Ctx) error {
	type Credentials struct {
		Email string `json:"email"`
	}

	creds := new(Credentials)
	if err := c.BodyParser(creds); err != nil {
		return apperrors.RaiseBadRequestError(c, fmt.Sprintf("unacceptable token request: %v", err))
	}

	signed, expiresAt, err := h.tokens.Issue(creds.Email)
	if err != nil {
		return apperrors.RaiseBadRequestError(c, err.Error())
	}

	c.Cookie(h.sessionCookie(signed, expiresAt))
	logger.FromCtx(c).Info().Str("email", creds.Email).Msg("identity token issued")

	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	c.Cookie(h.sessionCookie("", time.Now().Add(-time.Hour)))
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) sessionCookie(value string, expires time.Time) *fiber.Cookie {
	cookie := &fiber.Cookie{
		Name:     token.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		SameSite: "Strict",
	}
	if h.secureCookies {
		cookie.Secure = true
		cookie.SameSite = "None"
	}
	return cookie
}
