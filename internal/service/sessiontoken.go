package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sportsmatch/sportsmatch/internal/errs"
)

const sessionTTL = 24 * time.Hour

// SessionTokenService issues and validates signed session tokens.
// One instance is shared by every login flow so a token issued through
// any provider authenticates the same viewer.
type SessionTokenService interface {
	// Issue signs a session token for the user.
	Issue(userID int64) (string, error)

	// Parse validates a session token and returns the user id.
	Parse(token string) (int64, error)
}

// SessionTokens implements SessionTokenService with HS256.
type SessionTokens struct {
	signKey []byte
}

// NewSessionTokens constructs SessionTokens around the signing key.
func NewSessionTokens(signKey []byte) *SessionTokens {
	return &SessionTokens{signKey: signKey}
}

// Issue signs a token carrying the user id as subject, valid for 24h.
func (s *SessionTokens) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Parse validates token and returns the user id it names.
func (s *SessionTokens) Parse(token string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.signKey, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, errs.ErrUnauthorized
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", errs.ErrUnauthorized)
	}
	return id, nil
}
