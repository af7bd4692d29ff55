package memory

import (
	"context"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

// AccountRepository implements ports.AccountRepository.
type AccountRepository struct {
	s *Store
}

func (r *AccountRepository) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.usernames[account.Username]; taken {
		return nil, domain.ErrAccountExists
	}

	stored := cloneAccount(account)
	stored.ID = newID()
	r.s.accounts[stored.ID] = stored
	r.s.usernames[stored.Username] = stored.ID
	r.s.accountOrder = append(r.s.accountOrder, stored.ID)
	return cloneAccount(stored), nil
}

func (r *AccountRepository) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *AccountRepository) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.usernames[username]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(r.s.accounts[id]), nil
}

func (r *AccountRepository) List(_ context.Context) ([]*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Account, 0, len(r.s.accountOrder))
	for _, id := range r.s.accountOrder {
		out = append(out, cloneAccount(r.s.accounts[id]))
	}
	return out, nil
}

func (r *AccountRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.accounts)), nil
}
