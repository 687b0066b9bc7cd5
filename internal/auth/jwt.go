package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// defaultValidity is how long issued access tokens stay valid. Logins are
// expected to survive a long weekend, so three days.
const defaultValidity = 72 * time.Hour

const issuer = "course-platform"

// TokenService signs and verifies the HS256 access tokens the API issues.
// The same secret is used for both operations.
type TokenService struct {
	secret   []byte
	validity time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// validity. A validity of zero or below selects the default (72h). The
// secret must be at least 16 characters.
func NewTokenService(secret string, validity time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if validity <= 0 {
		validity = defaultValidity
	}
	return &TokenService{secret: []byte(secret), validity: validity}, nil
}

// claims embeds jwt.RegisteredClaims; the "sub" claim carries the internal
// user id.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs an access token for the given userID, valid for
// the service's configured validity.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, s.validity)
}

// GenerateWithDuration creates a token with a custom expiry duration. Used
// by tests to produce already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
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

// Validate parses and verifies a token string and returns the userID from
// the subject claim. The signature, expiry, issuer, and signing algorithm
// are all checked; tokens signed with anything but HS256 are rejected.
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
