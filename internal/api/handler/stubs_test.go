package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/govalyteams/sheetdesk/internal/api/middleware"
	"github.com/govalyteams/sheetdesk/internal/core/domain"
	"github.com/govalyteams/sheetdesk/internal/core/ports"
)

type stubAccountService struct {
	createFn    func(ctx context.Context, caller domain.Identity, in ports.CreateAccountInput) (*ports.CreateAccountResult, error)
	authFn      func(ctx context.Context, username, password string) (*ports.Session, error)
	listFn      func(ctx context.Context, caller domain.Identity) ([]*domain.Account, error)
	bootstrapFn func(ctx context.Context, username, password string) (*domain.Account, bool, error)
}

func (s *stubAccountService) CreateAccount(ctx context.Context, caller domain.Identity, in ports.CreateAccountInput) (*ports.CreateAccountResult, error) {
	return s.createFn(ctx, caller, in)
}

func (s *stubAccountService) Authenticate(ctx context.Context, username, password string) (*ports.Session, error) {
	return s.authFn(ctx, username, password)
}

func (s *stubAccountService) ListAccounts(ctx context.Context, caller domain.Identity) ([]*domain.Account, error) {
	return s.listFn(ctx, caller)
}

func (s *stubAccountService) Bootstrap(ctx context.Context, username, password string) (*domain.Account, bool, error) {
	return s.bootstrapFn(ctx, username, password)
}

type stubSheetService struct {
	createFn     func(ctx context.Context, caller domain.Identity, in ports.CreateSheetInput) (*ports.CreateSheetResult, error)
	listFn       func(ctx context.Context, caller domain.Identity) ([]*domain.Sheet, error)
	assignFn     func(ctx context.Context, caller domain.Identity, in ports.AssignSheetInput) (*ports.AssignResult, error)
	deleteFn     func(ctx context.Context, caller domain.Identity, sheetID string) error
	forAccountFn func(ctx context.Context, caller domain.Identity, accountID string) ([]*domain.Sheet, error)
}

func (s *stubSheetService) CreateSheet(ctx context.Context, caller domain.Identity, in ports.CreateSheetInput) (*ports.CreateSheetResult, error) {
	return s.createFn(ctx, caller, in)
}

func (s *stubSheetService) ListSheets(ctx context.Context, caller domain.Identity) ([]*domain.Sheet, error) {
	return s.listFn(ctx, caller)
}

func (s *stubSheetService) AssignSheet(ctx context.Context, caller domain.Identity, in ports.AssignSheetInput) (*ports.AssignResult, error) {
	return s.assignFn(ctx, caller, in)
}

func (s *stubSheetService) DeleteSheet(ctx context.Context, caller domain.Identity, sheetID string) error {
	return s.deleteFn(ctx, caller, sheetID)
}

func (s *stubSheetService) ListSheetsForAccount(ctx context.Context, caller domain.Identity, accountID string) ([]*domain.Sheet, error) {
	return s.forAccountFn(ctx, caller, accountID)
}

var testManager = domain.Identity{AccountID: "mgr-1", Username: "mona", Role: domain.RoleManager}

// newContext builds an echo context with the validator installed and, when
// caller is non-nil, the identity Auth would have set.
func newContext(method, target, body string, caller *domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if caller != nil {
		c.Set(middleware.IdentityKey, *caller)
	}
	return c, rec
}
