package domain

import (
	"strings"
	"time"
)

// Role is the authorization tier of an account.
type Role string

const (
	RoleCEO     Role = "CEO"
	RoleManager Role = "Manager"
	RoleUser    Role = "User"

	// RoleAdmin is a legacy spelling of the Manager tier. It is accepted on
	// input and normalized to RoleManager before anything is stored.
	RoleAdmin Role = "Admin"
)

// ParseRole maps a raw role string onto a known Role. Matching is exact
// (roles are case-sensitive on the wire); "Admin" is folded into Manager.
func ParseRole(s string) (Role, error) {
	switch Role(strings.TrimSpace(s)) {
	case RoleCEO:
		return RoleCEO, nil
	case RoleManager, RoleAdmin:
		return RoleManager, nil
	case RoleUser:
		return RoleUser, nil
	}
	return "", ErrUnknownRole
}

// Tier returns the effective role used by the access policy. Stored rows and
// tokens minted before normalization may still say "Admin".
func (r Role) Tier() Role {
	if r == RoleAdmin {
		return RoleManager
	}
	return r
}

// Privileged reports whether the role may manage the shared catalog.
func (r Role) Privileged() bool {
	switch r.Tier() {
	case RoleCEO, RoleManager:
		return true
	}
	return false
}

// Account models an identity that can be assigned sheets.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Designation  string    `json:"designation,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity returns the session view of the account.
func (a *Account) Identity() Identity {
	return Identity{
		AccountID:   a.ID,
		Username:    a.Username,
		Role:        a.Role,
		Designation: a.Designation,
	}
}
