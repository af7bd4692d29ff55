package memory

import (
	"context"
	"slices"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

// AuditRepository implements ports.AuditRepository.
type AuditRepository struct {
	s *Store
}

func (r *AuditRepository) Record(_ context.Context, entry *domain.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audit = append(r.s.audit, *entry)
	return nil
}

// Entries returns a copy of the audit trail in insertion order.
func (r *AuditRepository) Entries() []domain.AuditEntry {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return slices.Clone(r.s.audit)
}
