package ports

import (
	"context"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

// AccountRepository defines persistence for the identity store.
type AccountRepository interface {
	// Create inserts a new account and returns it with its generated ID.
	// A taken username yields domain.ErrAccountExists.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	Count(ctx context.Context) (int64, error)
}
