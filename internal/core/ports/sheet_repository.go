package ports

import (
	"context"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

// SheetRepository defines persistence for the resource catalog and the
// assignment edges embedded in each sheet.
type SheetRepository interface {
	Create(ctx context.Context, sheet *domain.Sheet) (*domain.Sheet, error)
	FindByID(ctx context.Context, id string) (*domain.Sheet, error)
	// FindByURL returns every sheet pointing at url; urls are not unique.
	FindByURL(ctx context.Context, url string) ([]*domain.Sheet, error)
	List(ctx context.Context) ([]*domain.Sheet, error)
	// ListAssignedTo returns the sheets whose edge set contains accountID.
	ListAssignedTo(ctx context.Context, accountID string) ([]*domain.Sheet, error)

	// Assign atomically adds accountID to the sheet's edge set and returns
	// the updated sheet. added is false when the edge already existed.
	Assign(ctx context.Context, sheetID, accountID string) (sheet *domain.Sheet, added bool, err error)
	// Delete atomically removes the sheet together with all of its edges.
	Delete(ctx context.Context, sheetID string) error
}
