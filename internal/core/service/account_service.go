package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
	"github.com/govalyteams/sheetdesk/internal/core/policy"
	"github.com/govalyteams/sheetdesk/internal/core/ports"
)

const (
	accountScope = "account"

	// bcrypt ignores input beyond 72 bytes and x/crypto rejects it outright.
	maxPasswordBytes = 72
)

// AccountService implements the identity store use cases.
type AccountService struct {
	repo       ports.AccountRepository
	tokens     *TokenIssuer
	bcryptCost int
	collab     Collaborators
	logger     zerolog.Logger
}

func NewAccountService(repo ports.AccountRepository, tokens *TokenIssuer, bcryptCost int, collab Collaborators, logger zerolog.Logger) *AccountService {
	return &AccountService{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: clampCost(bcryptCost),
		collab:     collab.withDefaults(),
		logger:     logger,
	}
}

func clampCost(cost int) int {
	if cost <= 0 {
		return bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		return bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		return bcrypt.MaxCost
	}
	return cost
}

// CreateAccount registers a new account on behalf of a privileged caller.
// With an idempotency key, a replay returns the account created the first time.
func (s *AccountService) CreateAccount(ctx context.Context, caller domain.Identity, in ports.CreateAccountInput) (*ports.CreateAccountResult, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := policy.Authorize(caller.Role, policy.CreateAccount); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, domain.Invalid("username", "is required")
	}
	if strings.TrimSpace(in.Password) == "" {
		return nil, domain.Invalid("password", "is required")
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, domain.Invalid("password", "must be at most 72 bytes")
	}
	if strings.TrimSpace(in.Role) == "" {
		return nil, domain.Invalid("role", "is required")
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Username:    username,
		Role:        role,
		Designation: strings.TrimSpace(in.Designation),
	}

	if in.IdempotencyKey == "" {
		created, err := s.create(ctx, account, in.Password)
		if err != nil {
			return nil, err
		}
		s.collab.record(ctx, s.logger, caller, string(policy.CreateAccount), created.ID, created.Username)
		return &ports.CreateAccountResult{Account: created}, nil
	}

	var result *ports.CreateAccountResult
	err = s.collab.Serializer.Do(ctx, idempotencyLockKey(accountScope, in.IdempotencyKey), func(ctx context.Context) error {
		if id, found := s.collab.lookupReplay(ctx, s.logger, accountScope, in.IdempotencyKey); found {
			existing, err := s.repo.FindByID(ctx, id)
			if err == nil {
				s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("account_id", id).Msg("idempotent replay")
				result = &ports.CreateAccountResult{Account: existing, Replayed: true}
				return nil
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}

		created, err := s.create(ctx, account, in.Password)
		if err != nil {
			return err
		}
		s.collab.remember(ctx, s.logger, accountScope, in.IdempotencyKey, created.ID)
		result = &ports.CreateAccountResult{Account: created}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Replayed {
		s.collab.record(ctx, s.logger, caller, string(policy.CreateAccount), result.Account.ID, result.Account.Username)
	}
	return result, nil
}

func (s *AccountService) create(ctx context.Context, account *domain.Account, password string) (*domain.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	account.PasswordHash = string(hash)
	account.CreatedAt = time.Now().UTC()

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		if !errors.Is(err, domain.ErrAccountExists) {
			s.logger.Error().Err(err).Str("username", account.Username).Msg("failed to create account")
		}
		return nil, err
	}

	s.logger.Info().Str("account_id", created.ID).Str("username", created.Username).Str("role", string(created.Role)).Msg("account created")
	return created, nil
}

// Authenticate verifies credentials and issues a session token. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*ports.Session, error) {
	// Usernames are stored trimmed, see CreateAccount.
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	identity := account.Identity()
	token, exp, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &ports.Session{Identity: identity, Token: token, ExpiresAt: exp}, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, caller domain.Identity) ([]*domain.Account, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := policy.Authorize(caller.Role, policy.ListAccounts); err != nil {
		return nil, err
	}

	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []*domain.Account{}
	}
	return accounts, nil
}

// Bootstrap seeds the first CEO so someone is privileged enough to create
// the remaining accounts.
func (s *AccountService) Bootstrap(ctx context.Context, username, password string) (*domain.Account, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, false, domain.Invalid("bootstrap credentials", "are required")
	}

	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, false, err
	}
	if n > 0 {
		s.logger.Debug().Int64("accounts", n).Msg("identity store already populated, skipping bootstrap")
		return nil, false, nil
	}

	created, err := s.create(ctx, &domain.Account{Username: username, Role: domain.RoleCEO, Designation: "Bootstrap"}, password)
	if err != nil {
		return nil, false, err
	}
	s.collab.record(ctx, s.logger, created.Identity(), "bootstrap", created.ID, created.Username)
	return created, true, nil
}
