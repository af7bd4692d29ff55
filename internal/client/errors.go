package client

import (
	"fmt"
	"net/http"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

// APIError is a non-2xx answer from the server. It unwraps to the matching
// domain sentinel so callers can use errors.Is(err, domain.ErrForbidden).
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sheetdesk: %d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.ErrInvalidInput
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrAccountExists
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return domain.ErrUnavailable
	}
	return nil
}

type errorBody struct {
	Error string `json:"error"`
}
