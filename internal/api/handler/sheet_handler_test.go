package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
	"github.com/govalyteams/sheetdesk/internal/core/ports"
)

func TestSheetHandler_Create(t *testing.T) {
	stub := &stubSheetService{
		createFn: func(ctx context.Context, caller domain.Identity, in ports.CreateSheetInput) (*ports.CreateSheetResult, error) {
			if in.Name != "Q3" || in.URL != "https://docs/q3" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.CreateSheetResult{Sheet: &domain.Sheet{ID: "s1", Name: in.Name, URL: in.URL}}, nil
		},
	}
	handler := NewSheetHandler(stub, zerolog.Nop())

	c, rec := newContext(http.MethodPost, "/sheets", `{"sheetName":"Q3","sheetUrl":"https://docs/q3"}`, &testManager)
	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	assigned, ok := resp["assignedTo"].([]any)
	if !ok || len(assigned) != 0 {
		t.Fatalf("expected empty assignedTo array, got %v", resp["assignedTo"])
	}
	if resp["sheetName"] != "Q3" || resp["id"] != "s1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestSheetHandler_Create_MissingName(t *testing.T) {
	handler := NewSheetHandler(&stubSheetService{}, zerolog.Nop())

	c, _ := newContext(http.MethodPost, "/sheets", `{"sheetUrl":"https://docs/q3"}`, &testManager)
	var ve *ValidationError
	if err := handler.Create(c); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Error() != "sheetName is required" {
		t.Fatalf("unexpected message: %q", ve.Error())
	}
}

func TestSheetHandler_Assign_IgnoresBodyRole(t *testing.T) {
	user := domain.Identity{AccountID: "u1", Role: domain.RoleUser}
	stub := &stubSheetService{
		assignFn: func(ctx context.Context, caller domain.Identity, in ports.AssignSheetInput) (*ports.AssignResult, error) {
			if caller.Role != domain.RoleUser {
				t.Fatalf("caller role must come from the token, got %s", caller.Role)
			}
			return nil, domain.ErrForbidden
		},
	}
	handler := NewSheetHandler(stub, zerolog.Nop())

	c, _ := newContext(http.MethodPost, "/sheets/assign", `{"username":"alice","sheetUrl":"u","role":"CEO"}`, &user)
	if err := handler.Assign(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSheetHandler_Assign_Response(t *testing.T) {
	stub := &stubSheetService{
		assignFn: func(ctx context.Context, caller domain.Identity, in ports.AssignSheetInput) (*ports.AssignResult, error) {
			if in.AccountID != "a1" || in.SheetID != "s1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AssignResult{
				Sheet:     &domain.Sheet{ID: "s1", Name: "Q3", URL: "u", AssignedTo: []string{"a1"}},
				AccountID: "a1",
				Assigned:  false,
			}, nil
		},
	}
	handler := NewSheetHandler(stub, zerolog.Nop())

	c, rec := newContext(http.MethodPost, "/sheets/assign", `{"accountId":"a1","sheetId":"s1"}`, &testManager)
	if err := handler.Assign(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp assignSheetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Assigned || resp.Message != "sheet already assigned" || resp.Sheet.ID != "s1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestSheetHandler_Assign_MissingRefs(t *testing.T) {
	handler := NewSheetHandler(&stubSheetService{}, zerolog.Nop())

	c, _ := newContext(http.MethodPost, "/sheets/assign", `{}`, &testManager)
	var ve *ValidationError
	if err := handler.Assign(c); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := "accountId or username is required; sheetId or sheetUrl is required"
	if ve.Error() != want {
		t.Fatalf("expected %q, got %q", want, ve.Error())
	}
}

func TestSheetHandler_Delete(t *testing.T) {
	stub := &stubSheetService{
		deleteFn: func(ctx context.Context, caller domain.Identity, sheetID string) error {
			if sheetID != "s1" {
				t.Fatalf("unexpected id: %s", sheetID)
			}
			return nil
		},
	}
	handler := NewSheetHandler(stub, zerolog.Nop())

	c, rec := newContext(http.MethodDelete, "/sheets/s1", `{"role":"Manager"}`, &testManager)
	c.SetParamNames("id")
	c.SetParamValues("s1")

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp deleteSheetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != "s1" || resp.Message != "sheet deleted" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestSheetHandler_Delete_PathIDWinsOverBody(t *testing.T) {
	stub := &stubSheetService{
		deleteFn: func(ctx context.Context, caller domain.Identity, sheetID string) error {
			if sheetID != "s1" {
				t.Fatalf("expected path id s1, got %s", sheetID)
			}
			return nil
		},
	}
	handler := NewSheetHandler(stub, zerolog.Nop())

	c, rec := newContext(http.MethodDelete, "/sheets/s1", `{"role":"CEO","id":"s2","ID":"s3"}`, &testManager)
	c.SetParamNames("id")
	c.SetParamValues("s1")

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp deleteSheetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != "s1" {
		t.Fatalf("expected echoed id s1, got %q", resp.ID)
	}
}

func TestSheetHandler_Delete_NotFound(t *testing.T) {
	stub := &stubSheetService{
		deleteFn: func(ctx context.Context, caller domain.Identity, sheetID string) error {
			return domain.ErrSheetNotFound
		},
	}
	handler := NewSheetHandler(stub, zerolog.Nop())

	c, _ := newContext(http.MethodDelete, "/sheets/missing", "", &testManager)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := handler.Delete(c); !errors.Is(err, domain.ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
}

func TestSheetHandler_ForAccount(t *testing.T) {
	stub := &stubSheetService{
		forAccountFn: func(ctx context.Context, caller domain.Identity, accountID string) ([]*domain.Sheet, error) {
			if accountID != "a1" {
				t.Fatalf("unexpected account: %s", accountID)
			}
			return []*domain.Sheet{{ID: "s1", Name: "Q3", URL: "u", AssignedTo: []string{"a1"}}}, nil
		},
	}
	handler := NewSheetHandler(stub, zerolog.Nop())

	c, rec := newContext(http.MethodGet, "/sheets/account/a1", "", &testManager)
	c.SetParamNames("id")
	c.SetParamValues("a1")

	if err := handler.ForAccount(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp []sheetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != "s1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
