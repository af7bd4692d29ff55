package memory

import (
	"context"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

// SheetRepository implements ports.SheetRepository.
type SheetRepository struct {
	s *Store
}

func (r *SheetRepository) Create(_ context.Context, sheet *domain.Sheet) (*domain.Sheet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := sheet.Clone()
	stored.ID = newID()
	r.s.sheets[stored.ID] = stored
	r.s.sheetOrder = append(r.s.sheetOrder, stored.ID)
	return stored.Clone(), nil
}

func (r *SheetRepository) FindByID(_ context.Context, id string) (*domain.Sheet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sh, ok := r.s.sheets[id]
	if !ok {
		return nil, domain.ErrSheetNotFound
	}
	return sh.Clone(), nil
}

func (r *SheetRepository) FindByURL(_ context.Context, url string) ([]*domain.Sheet, error) {
	return r.filter(func(sh *domain.Sheet) bool { return sh.URL == url }), nil
}

func (r *SheetRepository) List(_ context.Context) ([]*domain.Sheet, error) {
	return r.filter(func(*domain.Sheet) bool { return true }), nil
}

func (r *SheetRepository) ListAssignedTo(_ context.Context, accountID string) ([]*domain.Sheet, error) {
	return r.filter(func(sh *domain.Sheet) bool { return sh.IsAssignedTo(accountID) }), nil
}

func (r *SheetRepository) filter(keep func(*domain.Sheet) bool) []*domain.Sheet {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*domain.Sheet{}
	for _, id := range r.s.sheetOrder {
		if sh := r.s.sheets[id]; keep(sh) {
			out = append(out, sh.Clone())
		}
	}
	return out
}

// Assign checks both ends under the write lock, so an edge can only be added
// to a sheet that exists at that instant and for an account that exists.
func (r *SheetRepository) Assign(_ context.Context, sheetID, accountID string) (*domain.Sheet, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sh, ok := r.s.sheets[sheetID]
	if !ok {
		return nil, false, domain.ErrSheetNotFound
	}
	if _, ok := r.s.accounts[accountID]; !ok {
		return nil, false, domain.ErrAccountNotFound
	}

	added := sh.Assign(accountID)
	return sh.Clone(), added, nil
}

func (r *SheetRepository) Delete(_ context.Context, sheetID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sheets[sheetID]; !ok {
		return domain.ErrSheetNotFound
	}
	delete(r.s.sheets, sheetID)
	r.s.sheetOrder = removeID(r.s.sheetOrder, sheetID)
	return nil
}
