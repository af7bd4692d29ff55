package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
	"github.com/govalyteams/sheetdesk/internal/infrastructure/db/memory"
)

var (
	ceo     = domain.Identity{AccountID: "ceo-1", Username: "boss", Role: domain.RoleCEO}
	manager = domain.Identity{AccountID: "mgr-1", Username: "mona", Role: domain.RoleManager}
	legacy  = domain.Identity{AccountID: "adm-1", Username: "old", Role: domain.RoleAdmin}
)

type fixture struct {
	store    *memory.Store
	accounts *AccountService
	sheets   *SheetService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, Collaborators{})
}

func newFixtureWith(t *testing.T, collab Collaborators) *fixture {
	t.Helper()
	store := memory.NewStore()
	if collab.Audit == nil {
		collab.Audit = store.Audit()
	}
	if collab.Idempotency == nil {
		collab.Idempotency = store.Idempotency()
	}
	tokens := NewTokenIssuer("secret", time.Hour)
	return &fixture{
		store:    store,
		accounts: NewAccountService(store.Accounts(), tokens, bcrypt.MinCost, collab, zerolog.Nop()),
		sheets:   NewSheetService(store.Sheets(), store.Accounts(), collab, zerolog.Nop()),
	}
}

// seedAccount writes an account straight to the store, skipping the policy.
func (f *fixture) seedAccount(t *testing.T, username string, role domain.Role) *domain.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw-"+username), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	acc, err := f.store.Accounts().Create(context.Background(), &domain.Account{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		t.Fatalf("seed account %s: %v", username, err)
	}
	return acc
}

func (f *fixture) seedSheet(t *testing.T, name, url string) *domain.Sheet {
	t.Helper()
	sh, err := f.store.Sheets().Create(context.Background(), &domain.Sheet{Name: name, URL: url, AssignedTo: []string{}})
	if err != nil {
		t.Fatalf("seed sheet %s: %v", name, err)
	}
	return sh
}

func identityOf(a *domain.Account) domain.Identity {
	return a.Identity()
}

type failingIdempotency struct{}

func (failingIdempotency) Lookup(context.Context, string, string) (string, bool, error) {
	return "", false, errors.New("redis down")
}

func (failingIdempotency) Remember(context.Context, string, string, string) error {
	return errors.New("redis down")
}

type failingAudit struct{}

func (failingAudit) Record(context.Context, *domain.AuditEntry) error { return errors.New("audit down") }

// countingSerializer runs jobs under one mutex and records the keys it saw.
type countingSerializer struct {
	mu   sync.Mutex
	keys []string
}

func (c *countingSerializer) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, key)
	return fn(ctx)
}
