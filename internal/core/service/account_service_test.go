package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
	"github.com/govalyteams/sheetdesk/internal/core/ports"
)

func TestAccountService_CreateAccount_Success(t *testing.T) {
	f := newFixture(t)

	res, err := f.accounts.CreateAccount(context.Background(), ceo, ports.CreateAccountInput{
		Username:    " alice ",
		Password:    "pass123",
		Role:        "User",
		Designation: "Analyst",
	})
	if err != nil {
		t.Fatalf("CreateAccount returned error: %v", err)
	}
	acc := res.Account
	if acc.ID == "" {
		t.Fatal("expected generated id")
	}
	if acc.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", acc.Username)
	}
	if acc.PasswordHash == "pass123" {
		t.Fatal("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if acc.Role != domain.RoleUser || acc.Designation != "Analyst" {
		t.Fatalf("unexpected account: %+v", acc)
	}
	if res.Replayed {
		t.Fatal("first creation must not be a replay")
	}
	if n := len(f.store.Audit().Entries()); n != 1 {
		t.Fatalf("expected one audit entry, got %d", n)
	}
}

func TestAccountService_CreateAccount_NormalizesAdmin(t *testing.T) {
	f := newFixture(t)

	res, err := f.accounts.CreateAccount(context.Background(), ceo, ports.CreateAccountInput{Username: "amy", Password: "pw", Role: "Admin"})
	if err != nil {
		t.Fatalf("CreateAccount returned error: %v", err)
	}
	if res.Account.Role != domain.RoleManager {
		t.Fatalf("expected Admin to be stored as Manager, got %s", res.Account.Role)
	}
}

func TestAccountService_CreateAccount_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]ports.CreateAccountInput{
		"blank username": {Username: "  ", Password: "pw", Role: "User"},
		"blank password": {Username: "bob", Password: "", Role: "User"},
		"long password":  {Username: "bob", Password: strings.Repeat("x", 73), Role: "User"},
		"missing role":   {Username: "bob", Password: "pw"},
		"unknown role":   {Username: "bob", Password: "pw", Role: "Intern"},
		"lowercase role": {Username: "bob", Password: "pw", Role: "ceo"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := f.accounts.CreateAccount(ctx, ceo, in); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestAccountService_CreateAccount_DuplicateUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := ports.CreateAccountInput{Username: "alice", Password: "pw", Role: "User"}

	if _, err := f.accounts.CreateAccount(ctx, ceo, in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := f.accounts.CreateAccount(ctx, manager, in); !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestAccountService_CreateAccount_ForbiddenForUser(t *testing.T) {
	f := newFixture(t)
	user := identityOf(f.seedAccount(t, "ursula", domain.RoleUser))

	_, err := f.accounts.CreateAccount(context.Background(), user, ports.CreateAccountInput{Username: "x", Password: "pw", Role: "CEO"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if n, _ := f.store.Accounts().Count(context.Background()); n != 1 {
		t.Fatalf("denied request must not create an account, count=%d", n)
	}
}

func TestAccountService_CreateAccount_RequiresCaller(t *testing.T) {
	f := newFixture(t)

	_, err := f.accounts.CreateAccount(context.Background(), domain.Identity{}, ports.CreateAccountInput{Username: "x", Password: "pw", Role: "User"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAccountService_CreateAccount_IdempotentReplay(t *testing.T) {
	serializer := &countingSerializer{}
	f := newFixtureWith(t, Collaborators{Serializer: serializer})
	ctx := context.Background()
	in := ports.CreateAccountInput{Username: "alice", Password: "pw", Role: "User", IdempotencyKey: "k-1"}

	first, err := f.accounts.CreateAccount(ctx, ceo, in)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := f.accounts.CreateAccount(ctx, ceo, in)
	if err != nil {
		t.Fatalf("replay returned error: %v", err)
	}
	if !second.Replayed || second.Account.ID != first.Account.ID {
		t.Fatalf("expected replay of %s, got %+v", first.Account.ID, second)
	}
	if len(f.store.Audit().Entries()) != 1 {
		t.Fatal("replay must not be audited twice")
	}
	if len(serializer.keys) != 2 || serializer.keys[0] != "idem:account:k-1" {
		t.Fatalf("unexpected serializer keys: %v", serializer.keys)
	}
}

func TestAccountService_CreateAccount_IdempotencyStoreDown(t *testing.T) {
	f := newFixtureWith(t, Collaborators{Idempotency: failingIdempotency{}, Audit: failingAudit{}})

	res, err := f.accounts.CreateAccount(context.Background(), ceo, ports.CreateAccountInput{Username: "alice", Password: "pw", Role: "User", IdempotencyKey: "k"})
	if err != nil {
		t.Fatalf("expected creation to proceed without idempotency store, got %v", err)
	}
	if res.Account == nil || res.Replayed {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestAccountService_Authenticate_Success(t *testing.T) {
	f := newFixture(t)
	acc := f.seedAccount(t, "alice", domain.RoleManager)

	session, err := f.accounts.Authenticate(context.Background(), "alice", "pw-alice")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if session.Identity.AccountID != acc.ID || session.Identity.Role != domain.RoleManager {
		t.Fatalf("unexpected identity: %+v", session.Identity)
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(session.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token did not verify: %v", err)
	}
	if claims["sub"] != acc.ID || claims["role"] != "Manager" || claims["username"] != "alice" {
		t.Fatalf("unexpected claims: %v", claims)
	}
	if session.ExpiresAt.IsZero() {
		t.Fatal("expected expiry")
	}
}

func TestAccountService_Authenticate_TrimsUsernameLikeCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.accounts.CreateAccount(ctx, ceo, ports.CreateAccountInput{Username: " bob ", Password: "pw-bob", Role: "User"}); err != nil {
		t.Fatalf("CreateAccount returned error: %v", err)
	}
	for _, name := range []string{" bob ", "bob", "bob\t"} {
		session, err := f.accounts.Authenticate(ctx, name, "pw-bob")
		if err != nil {
			t.Fatalf("%q: Authenticate returned error: %v", name, err)
		}
		if session.Identity.Username != "bob" {
			t.Fatalf("%q: unexpected username %q", name, session.Identity.Username)
		}
	}
}

func TestAccountService_Authenticate_Failures(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "alice", domain.RoleUser)
	ctx := context.Background()

	cases := []struct{ user, pass string }{
		{"alice", "wrong"},
		{"nobody", "pw-alice"},
		{"", "pw"},
		{"alice", ""},
		{"Alice", "pw-alice"},
	}
	for _, tc := range cases {
		if _, err := f.accounts.Authenticate(ctx, tc.user, tc.pass); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("%q/%q: expected ErrInvalidCredentials, got %v", tc.user, tc.pass, err)
		}
	}
}

func TestAccountService_ListAccounts(t *testing.T) {
	f := newFixture(t)
	user := identityOf(f.seedAccount(t, "ursula", domain.RoleUser))
	f.seedAccount(t, "victor", domain.RoleUser)
	ctx := context.Background()

	list, err := f.accounts.ListAccounts(ctx, legacy)
	if err != nil {
		t.Fatalf("ListAccounts returned error: %v", err)
	}
	if len(list) != 2 || list[0].Username != "ursula" {
		t.Fatalf("unexpected list: %+v", list)
	}

	if _, err := f.accounts.ListAccounts(ctx, user); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for User, got %v", err)
	}
}

func TestAccountService_Bootstrap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	acc, created, err := f.accounts.Bootstrap(ctx, "root", "rootpw")
	if err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if !created || acc.Role != domain.RoleCEO {
		t.Fatalf("expected CEO to be created, got %+v created=%v", acc, created)
	}

	_, created, err = f.accounts.Bootstrap(ctx, "other", "pw")
	if err != nil {
		t.Fatalf("second Bootstrap returned error: %v", err)
	}
	if created {
		t.Fatal("bootstrap must be skipped once accounts exist")
	}

	if _, err := f.accounts.Authenticate(ctx, "root", "rootpw"); err != nil {
		t.Fatalf("bootstrap account cannot log in: %v", err)
	}
}

func TestAccountService_Bootstrap_RequiresCredentials(t *testing.T) {
	f := newFixture(t)

	if _, _, err := f.accounts.Bootstrap(context.Background(), "", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestClampCost(t *testing.T) {
	cases := map[int]int{
		0:  bcrypt.DefaultCost,
		-3: bcrypt.DefaultCost,
		1:  bcrypt.MinCost,
		12: 12,
		99: bcrypt.MaxCost,
	}
	for in, want := range cases {
		if got := clampCost(in); got != want {
			t.Fatalf("clampCost(%d) = %d, want %d", in, got, want)
		}
	}
}
