package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access forbidden")
	ErrUnavailable  = errors.New("backing store unavailable")

	ErrAccountExists = errors.New("account already exists")
)

var (
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	ErrSheetNotFound   = fmt.Errorf("sheet %w", ErrNotFound)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrUnknownRole        = fmt.Errorf("%w: role must be one of CEO, Manager, User", ErrInvalidInput)
)

// Invalid builds an ErrInvalidInput naming the offending field.
func Invalid(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidInput, field, reason)
}
