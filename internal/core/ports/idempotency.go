package ports

import "context"

// IdempotencyStore remembers which record a client-supplied Idempotency-Key
// produced, so a retried creation returns the original record.
type IdempotencyStore interface {
	// Lookup returns the record ID stored for (scope, key), if any.
	Lookup(ctx context.Context, scope, key string) (id string, found bool, err error)
	// Remember binds (scope, key) to id. An existing binding is kept.
	Remember(ctx context.Context, scope, key, id string) error
}
