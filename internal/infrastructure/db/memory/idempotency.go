package memory

import (
	"context"
	"time"
)

const defaultIdempotencyTTL = 24 * time.Hour

type idemEntry struct {
	id      string
	expires time.Time
}

// IdempotencyStore implements ports.IdempotencyStore in process. Bindings
// expire after the TTL; expired ones are swept on each Remember.
type IdempotencyStore struct {
	s   *Store
	ttl time.Duration
	now func() time.Time
}

// WithTTL returns a copy whose new bindings expire after ttl, or 24h when
// ttl is not positive.
func (i *IdempotencyStore) WithTTL(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{s: i.s, ttl: ttl, now: i.now}
}

func (i *IdempotencyStore) Lookup(_ context.Context, scope, key string) (string, bool, error) {
	i.s.mu.RLock()
	defer i.s.mu.RUnlock()
	e, ok := i.s.idem[scope+":"+key]
	if !ok || !i.now().Before(e.expires) {
		return "", false, nil
	}
	return e.id, true, nil
}

func (i *IdempotencyStore) Remember(_ context.Context, scope, key, id string) error {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	now := i.now()
	for k, e := range i.s.idem {
		if !now.Before(e.expires) {
			delete(i.s.idem, k)
		}
	}
	if _, exists := i.s.idem[scope+":"+key]; !exists {
		i.s.idem[scope+":"+key] = idemEntry{id: id, expires: now.Add(i.ttl)}
	}
	return nil
}
