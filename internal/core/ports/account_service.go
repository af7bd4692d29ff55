package ports

import (
	"context"
	"time"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

// CreateAccountInput carries the fields of a new account.
type CreateAccountInput struct {
	Username       string
	Password       string
	Role           string
	Designation    string
	IdempotencyKey string
}

// CreateAccountResult wraps the created account.
type CreateAccountResult struct {
	Account *domain.Account
	// Replayed is true when the Idempotency-Key matched an earlier creation.
	Replayed bool
}

// Session is what a successful authentication hands back to the caller.
type Session struct {
	Identity  domain.Identity
	Token     string
	ExpiresAt time.Time
}

// AccountService defines the identity store use cases.
type AccountService interface {
	CreateAccount(ctx context.Context, caller domain.Identity, input CreateAccountInput) (*CreateAccountResult, error)
	Authenticate(ctx context.Context, username, password string) (*Session, error)
	ListAccounts(ctx context.Context, caller domain.Identity) ([]*domain.Account, error)
	// Bootstrap creates the first CEO account when no accounts exist.
	// created is false when the store was already populated.
	Bootstrap(ctx context.Context, username, password string) (account *domain.Account, created bool, err error)
}
