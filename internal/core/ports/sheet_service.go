package ports

import (
	"context"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

// CreateSheetInput carries the fields of a new catalog entry.
type CreateSheetInput struct {
	Name           string
	URL            string
	IdempotencyKey string
}

// CreateSheetResult wraps the created sheet.
type CreateSheetResult struct {
	Sheet    *domain.Sheet
	Replayed bool
}

// AssignSheetInput references the account and the sheet to link. Either
// AccountID or Username identifies the account; either SheetID or SheetURL
// identifies the sheet. IDs win when both forms are present.
type AssignSheetInput struct {
	AccountID string
	Username  string
	SheetID   string
	SheetURL  string
}

// AssignResult echoes the sheet after the assignment so clients can patch
// their local view instead of reloading.
type AssignResult struct {
	Sheet     *domain.Sheet
	AccountID string
	// Assigned is false when the edge already existed.
	Assigned bool
}

// SheetService defines the resource catalog and assignment ledger use cases.
type SheetService interface {
	CreateSheet(ctx context.Context, caller domain.Identity, input CreateSheetInput) (*CreateSheetResult, error)
	ListSheets(ctx context.Context, caller domain.Identity) ([]*domain.Sheet, error)
	AssignSheet(ctx context.Context, caller domain.Identity, input AssignSheetInput) (*AssignResult, error)
	DeleteSheet(ctx context.Context, caller domain.Identity, sheetID string) error
	ListSheetsForAccount(ctx context.Context, caller domain.Identity, accountID string) ([]*domain.Sheet, error)
}
