package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
	"github.com/govalyteams/sheetdesk/internal/core/policy"
	"github.com/govalyteams/sheetdesk/internal/core/ports"
)

const sheetScope = "sheet"

// SheetService implements the resource catalog and the assignment ledger.
type SheetService struct {
	sheets   ports.SheetRepository
	accounts ports.AccountRepository
	collab   Collaborators
	logger   zerolog.Logger
}

func NewSheetService(sheets ports.SheetRepository, accounts ports.AccountRepository, collab Collaborators, logger zerolog.Logger) *SheetService {
	return &SheetService{
		sheets:   sheets,
		accounts: accounts,
		collab:   collab.withDefaults(),
		logger:   logger,
	}
}

// sheetKey is the serialization key shared by every mutation of one sheet.
func sheetKey(id string) string { return "sheet:" + id }

// CreateSheet adds a catalog entry with an empty assignment set.
func (s *SheetService) CreateSheet(ctx context.Context, caller domain.Identity, in ports.CreateSheetInput) (*ports.CreateSheetResult, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := policy.Authorize(caller.Role, policy.CreateSheet); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	url := strings.TrimSpace(in.URL)
	if name == "" {
		return nil, domain.Invalid("sheetName", "is required")
	}
	if url == "" {
		return nil, domain.Invalid("sheetUrl", "is required")
	}

	sheet := &domain.Sheet{Name: name, URL: url, AssignedTo: []string{}}

	if in.IdempotencyKey == "" {
		created, err := s.create(ctx, sheet)
		if err != nil {
			return nil, err
		}
		s.collab.record(ctx, s.logger, caller, string(policy.CreateSheet), created.ID, created.URL)
		return &ports.CreateSheetResult{Sheet: created}, nil
	}

	var result *ports.CreateSheetResult
	err := s.collab.Serializer.Do(ctx, idempotencyLockKey(sheetScope, in.IdempotencyKey), func(ctx context.Context) error {
		if id, found := s.collab.lookupReplay(ctx, s.logger, sheetScope, in.IdempotencyKey); found {
			existing, err := s.sheets.FindByID(ctx, id)
			if err == nil {
				s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("sheet_id", id).Msg("idempotent replay")
				result = &ports.CreateSheetResult{Sheet: existing, Replayed: true}
				return nil
			}
			// The original sheet may since have been deleted; create afresh.
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}

		created, err := s.create(ctx, sheet)
		if err != nil {
			return err
		}
		s.collab.remember(ctx, s.logger, sheetScope, in.IdempotencyKey, created.ID)
		result = &ports.CreateSheetResult{Sheet: created}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Replayed {
		s.collab.record(ctx, s.logger, caller, string(policy.CreateSheet), result.Sheet.ID, result.Sheet.URL)
	}
	return result, nil
}

func (s *SheetService) create(ctx context.Context, sheet *domain.Sheet) (*domain.Sheet, error) {
	sheet.CreatedAt = time.Now().UTC()
	created, err := s.sheets.Create(ctx, sheet)
	if err != nil {
		s.logger.Error().Err(err).Str("sheet_url", sheet.URL).Msg("failed to create sheet")
		return nil, err
	}
	s.logger.Info().Str("sheet_id", created.ID).Str("sheet_name", created.Name).Msg("sheet created")
	return created, nil
}

func (s *SheetService) ListSheets(ctx context.Context, caller domain.Identity) ([]*domain.Sheet, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := policy.Authorize(caller.Role, policy.ListSheets); err != nil {
		return nil, err
	}
	return nonNil(s.sheets.List(ctx))
}

// AssignSheet links an account to a sheet. Re-assigning an existing pair
// succeeds without adding a second edge.
func (s *SheetService) AssignSheet(ctx context.Context, caller domain.Identity, in ports.AssignSheetInput) (*ports.AssignResult, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := policy.Authorize(caller.Role, policy.AssignSheet); err != nil {
		return nil, err
	}
	if in.AccountID == "" && strings.TrimSpace(in.Username) == "" {
		return nil, domain.Invalid("accountId or username", "is required")
	}
	if in.SheetID == "" && strings.TrimSpace(in.SheetURL) == "" {
		return nil, domain.Invalid("sheetId or sheetUrl", "is required")
	}

	account, err := s.resolveAccount(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("assign sheet: %w", err)
	}
	sheetID, err := s.resolveSheetID(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("assign sheet: %w", err)
	}

	var (
		updated *domain.Sheet
		added   bool
	)
	err = s.collab.Serializer.Do(ctx, sheetKey(sheetID), func(ctx context.Context) error {
		var err error
		updated, added, err = s.sheets.Assign(ctx, sheetID, account.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("assign sheet: %w", err)
	}

	log := s.logger.Info().Str("sheet_id", sheetID).Str("account_id", account.ID)
	if added {
		log.Msg("sheet assigned")
		s.collab.record(ctx, s.logger, caller, string(policy.AssignSheet), sheetID, account.ID)
	} else {
		log.Msg("sheet already assigned")
	}

	return &ports.AssignResult{Sheet: updated, AccountID: account.ID, Assigned: added}, nil
}

func (s *SheetService) resolveAccount(ctx context.Context, in ports.AssignSheetInput) (*domain.Account, error) {
	if in.AccountID != "" {
		return s.accounts.FindByID(ctx, in.AccountID)
	}
	return s.accounts.FindByUsername(ctx, strings.TrimSpace(in.Username))
}

// resolveSheetID maps the request onto one sheet ID. Sheet URLs are not
// unique, so an URL matching several sheets is rejected.
func (s *SheetService) resolveSheetID(ctx context.Context, in ports.AssignSheetInput) (string, error) {
	if in.SheetID != "" {
		return in.SheetID, nil
	}

	matches, err := s.sheets.FindByURL(ctx, strings.TrimSpace(in.SheetURL))
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", domain.ErrSheetNotFound
	case 1:
		return matches[0].ID, nil
	}
	return "", domain.Invalid("sheetUrl", fmt.Sprintf("matches %d sheets; use sheetId", len(matches)))
}

// DeleteSheet removes the sheet and every edge pointing at it in one step.
func (s *SheetService) DeleteSheet(ctx context.Context, caller domain.Identity, sheetID string) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if err := policy.Authorize(caller.Role, policy.DeleteSheet); err != nil {
		return err
	}
	if sheetID == "" {
		return domain.Invalid("sheetId", "is required")
	}

	err := s.collab.Serializer.Do(ctx, sheetKey(sheetID), func(ctx context.Context) error {
		return s.sheets.Delete(ctx, sheetID)
	})
	if err != nil {
		return fmt.Errorf("delete sheet: %w", err)
	}

	s.logger.Info().Str("sheet_id", sheetID).Str("actor", caller.AccountID).Msg("sheet deleted")
	s.collab.record(ctx, s.logger, caller, string(policy.DeleteSheet), sheetID, "")
	return nil
}

// ListSheetsForAccount returns exactly the sheets assigned to accountID,
// or an empty slice when there are none.
func (s *SheetService) ListSheetsForAccount(ctx context.Context, caller domain.Identity, accountID string) ([]*domain.Sheet, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := policy.AuthorizeSheetsFor(caller, accountID); err != nil {
		return nil, err
	}
	if accountID == "" {
		return nil, domain.Invalid("accountId", "is required")
	}

	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		return nil, err
	}
	return nonNil(s.sheets.ListAssignedTo(ctx, accountID))
}

func nonNil(sheets []*domain.Sheet, err error) ([]*domain.Sheet, error) {
	if err != nil {
		return nil, err
	}
	if sheets == nil {
		return []*domain.Sheet{}, nil
	}
	return sheets, nil
}
