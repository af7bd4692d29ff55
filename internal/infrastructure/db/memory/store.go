// Package memory is a process-local implementation of the repository ports.
// A single lock guards accounts and sheets together, so every mutation,
// including the delete cascade, is atomic with respect to all readers.
package memory

import (
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

// Store holds the shared tables. Use the repository accessors to reach it.
type Store struct {
	mu sync.RWMutex

	accounts     map[string]*domain.Account
	usernames    map[string]string
	accountOrder []string

	sheets     map[string]*domain.Sheet
	sheetOrder []string

	audit []domain.AuditEntry
	idem  map[string]idemEntry
}

func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]*domain.Account),
		usernames: make(map[string]string),
		sheets:    make(map[string]*domain.Sheet),
		idem:      make(map[string]idemEntry),
	}
}

func (s *Store) Accounts() *AccountRepository   { return &AccountRepository{s: s} }
func (s *Store) Sheets() *SheetRepository       { return &SheetRepository{s: s} }
func (s *Store) Audit() *AuditRepository        { return &AuditRepository{s: s} }
func (s *Store) Idempotency() *IdempotencyStore {
	return &IdempotencyStore{s: s, ttl: defaultIdempotencyTTL, now: time.Now}
}

// newID mints IDs in the same shape the Mongo backend produces.
func newID() string {
	return primitive.NewObjectID().Hex()
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func removeID(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(v string) bool { return v == id })
}
