package client

import (
	"time"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

// Session is the identity returned by Login. It never changes after
// creation and is the only source of the bearer token.
type Session struct {
	token     string
	identity  domain.Identity
	expiresAt time.Time
}

func (s *Session) Token() string             { return s.token }
func (s *Session) Identity() domain.Identity { return s.identity }
func (s *Session) ExpiresAt() time.Time      { return s.expiresAt }

// Expired reports whether the token is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.expiresAt.IsZero() && !now.Before(s.expiresAt)
}

// Privileged reports whether the session may manage the shared catalog.
func (s *Session) Privileged() bool {
	return s.identity.Role.Privileged()
}
