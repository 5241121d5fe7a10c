// Package auth issues and checks the credentials that guard the vault's admin
// surface: the notes page, the admin page and every mutating API route.
//
// HOW AN ADMIN SIGNS IN:
//  1. Password: POST /login compares the password with the bcrypt hash from
//     the config (ADMIN_PASSWORD_HASH). The token subject is "admin".
//  2. GitHub: /auth/github/login → GitHub → /auth/github/callback. The GitHub
//     login must be on the configured allowlist; the user row is upserted and
//     its internal id becomes the token subject.
//
// Either way the server signs an HS256 JWT and stores it in an HttpOnly
// "token" cookie. The terminal client cannot hold a cookie, so it sends the
// same JWT as "Authorization: Bearer <jwt>" (see `vault issue-token`).
//
// JWT STRUCTURE:
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header:    {"alg":"HS256","typ":"JWT"}
//	- Payload:   {"sub":"admin","iss":"project-vault","exp":1234567890}
//	- Signature: HMAC-SHA256(header+"."+payload, secret)
//
// Verification needs only the secret, no database lookup.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer = "project-vault"

	// DefaultTokenTTL is how long a browser session stays signed in.
	DefaultTokenTTL = 12 * time.Hour
)

// TokenService signs and verifies session tokens with one HMAC secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. ttl <= 0 means DefaultTokenTTL.
// Generate a secret with: openssl rand -hex 32
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL is the lifetime of tokens from Generate, also used as the cookie MaxAge.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

type claims struct {
	jwt.RegisteredClaims
}

// Generate issues a token for subject valid for the service TTL.
func (s *TokenService) Generate(subject string) (string, error) {
	return s.GenerateWithDuration(subject, s.ttl)
}

// GenerateWithDuration issues a token with an explicit lifetime. Used for the
// long-lived tokens handed to the terminal client, and by tests to mint
// already-expired tokens.
func (s *TokenService) GenerateWithDuration(subject string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses tokenStr and returns its subject.
//
// WithValidMethods pins HS256, which rules out the "alg: none" downgrade and
// RS/HS key confusion. WithExpirationRequired rejects tokens without exp.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}
	return c.Subject, nil
}
