// Package token issues and verifies the signed identity assertions carried
// in the session cookie. Tokens are HS256 JWTs holding the caller's email;
// expiry is the only revocation mechanism.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	CookieName    = "token"
	SigningMethod = "HS256"
)

var ErrEmptyEmail = errors.New("identity token carries no email")

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// SigningKey is shared with the request guard so that both sides agree on
// the key without reading configuration twice.
func (s *Service) SigningKey() []byte {
	return s.secret
}

// Issue signs a token for email and returns it with its expiry time.
func (s *Service) Issue(email string) (string, time.Time, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", time.Time{}, ErrEmptyEmail
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign identity token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify checks the signature and expiry of raw and returns its claims.
func (s *Service) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse identity token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("invalid identity token")
	}

	return ClaimsOf(parsed)
}

// ClaimsOf extracts identity claims from a token that has already been
// verified, e.g. by the fiber JWT middleware.
func ClaimsOf(t *jwt.Token) (*Claims, error) {
	if t == nil {
		return nil, errors.New("no identity token")
	}

	claims, ok := t.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type %T", t.Claims)
	}
	if strings.TrimSpace(claims.Email) == "" {
		return nil, ErrEmptyEmail
	}

	return claims, nil
}
