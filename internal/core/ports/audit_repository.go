package ports

import (
	"context"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

// AuditRepository persists the audit trail of successful mutations.
type AuditRepository interface {
	Record(ctx context.Context, entry *domain.AuditEntry) error
}
