package handler

import (
	"time"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

// --- Request types ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createAccountRequest struct {
	Username    string `json:"username"    validate:"required,max=64"`
	Password    string `json:"password"    validate:"required"`
	Role        string `json:"role"        validate:"required"`
	Designation string `json:"designation" validate:"max=128"`
}

type createSheetRequest struct {
	Name string `json:"sheetName" validate:"required"`
	URL  string `json:"sheetUrl"  validate:"required"`
}

// assignSheetRequest accepts either reference form for both ends of the edge.
// Role is accepted for compatibility with older clients and ignored.
type assignSheetRequest struct {
	AccountID string `json:"accountId" validate:"required_without=Username"`
	Username  string `json:"username"`
	SheetID   string `json:"sheetId"   validate:"required_without=SheetURL"`
	SheetURL  string `json:"sheetUrl"`
	Role      string `json:"role"`
}

type deleteSheetRequest struct {
	ID   string `param:"id" json:"-"`
	Role string `json:"role"`
}

// --- Response types ---

type loginResponse struct {
	Token       string    `json:"token"`
	AccountID   string    `json:"accountId"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	Designation string    `json:"designation,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type accountResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	Designation string    `json:"designation,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type sheetResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"sheetName"`
	URL        string    `json:"sheetUrl"`
	AssignedTo []string  `json:"assignedTo"`
	CreatedAt  time.Time `json:"createdAt"`
}

type assignSheetResponse struct {
	Message  string        `json:"message"`
	Assigned bool          `json:"assigned"`
	Sheet    sheetResponse `json:"sheet"`
}

type deleteSheetResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		Username:    a.Username,
		Role:        string(a.Role),
		Designation: a.Designation,
		CreatedAt:   a.CreatedAt,
	}
}

func toAccountResponses(in []*domain.Account) []accountResponse {
	out := make([]accountResponse, 0, len(in))
	for _, a := range in {
		out = append(out, toAccountResponse(a))
	}
	return out
}

func toSheetResponse(s *domain.Sheet) sheetResponse {
	assigned := s.AssignedTo
	if assigned == nil {
		assigned = []string{}
	}
	return sheetResponse{
		ID:         s.ID,
		Name:       s.Name,
		URL:        s.URL,
		AssignedTo: assigned,
		CreatedAt:  s.CreatedAt,
	}
}

func toSheetResponses(in []*domain.Sheet) []sheetResponse {
	out := make([]sheetResponse, 0, len(in))
	for _, s := range in {
		out = append(out, toSheetResponse(s))
	}
	return out
}
