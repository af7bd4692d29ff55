package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

// TokenIssuer signs session tokens carrying the caller identity.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns an HS256 token and its expiry. The claim names match what
// middleware.Auth reads back.
func (t *TokenIssuer) Issue(id domain.Identity) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := jwt.MapClaims{
		"sub":         id.AccountID,
		"username":    id.Username,
		"role":        string(id.Role),
		"designation": id.Designation,
		"iat":         now.Unix(),
		"exp":         exp.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
