package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
	"github.com/govalyteams/sheetdesk/internal/core/ports"
)

// Serializer runs fn exclusively with respect to every other call that
// shares key. The queue package provides the sharded implementation.
type Serializer interface {
	Do(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// Collaborators bundles the optional infrastructure shared by the services.
// Nil fields fall back to no-op implementations.
type Collaborators struct {
	Idempotency ports.IdempotencyStore
	Audit       ports.AuditRepository
	Serializer  Serializer
}

func (c Collaborators) withDefaults() Collaborators {
	if c.Idempotency == nil {
		c.Idempotency = noopIdempotency{}
	}
	if c.Audit == nil {
		c.Audit = noopAudit{}
	}
	if c.Serializer == nil {
		c.Serializer = inline{}
	}
	return c
}

type inline struct{}

func (inline) Do(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopIdempotency struct{}

func (noopIdempotency) Lookup(context.Context, string, string) (string, bool, error) {
	return "", false, nil
}

func (noopIdempotency) Remember(context.Context, string, string, string) error { return nil }

type noopAudit struct{}

func (noopAudit) Record(context.Context, *domain.AuditEntry) error { return nil }

// requireCaller rejects requests that reached the core without an identity.
func requireCaller(caller domain.Identity) error {
	if caller.IsZero() {
		return fmt.Errorf("%w: missing caller identity", domain.ErrUnauthorized)
	}
	return nil
}

// lookupReplay checks the idempotency store. A failing store is logged and
// treated as a miss so creation still goes through.
func (c Collaborators) lookupReplay(ctx context.Context, log zerolog.Logger, scope, key string) (string, bool) {
	id, found, err := c.Idempotency.Lookup(ctx, scope, key)
	if err != nil {
		log.Warn().Err(err).Str("scope", scope).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return "", false
	}
	return id, found
}

func (c Collaborators) remember(ctx context.Context, log zerolog.Logger, scope, key, id string) {
	if err := c.Idempotency.Remember(ctx, scope, key, id); err != nil {
		log.Warn().Err(err).Str("scope", scope).Str("idempotency_key", key).Msg("failed to store idempotency key")
	}
}

// record appends to the audit trail; failures are non-fatal.
func (c Collaborators) record(ctx context.Context, log zerolog.Logger, caller domain.Identity, op, target, detail string) {
	entry := &domain.AuditEntry{
		Operation: op,
		ActorID:   caller.AccountID,
		ActorRole: caller.Role,
		TargetID:  target,
		Detail:    detail,
		At:        time.Now().UTC(),
	}
	if err := c.Audit.Record(ctx, entry); err != nil {
		log.Warn().Err(err).Str("operation", op).Str("target", target).Msg("failed to record audit entry")
	}
}

func idempotencyLockKey(scope, key string) string {
	return "idem:" + scope + ":" + key
}
