// Package policy is the access control gate: a pure mapping from
// (role, operation) to allow or deny. Every service entry point consults it
// before touching a store.
package policy

import (
	"fmt"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

// Operation names an authorizable action.
type Operation string

const (
	CreateSheet   Operation = "createSheet"
	AssignSheet   Operation = "assignSheet"
	DeleteSheet   Operation = "deleteSheet"
	CreateAccount Operation = "createAccount"
	ListSheets    Operation = "listSheets"
	ListAccounts  Operation = "listAccounts"

	// ListOwnSheets covers listSheetsForAccount where the target is the
	// caller; ListAnySheets covers every other target.
	ListOwnSheets Operation = "listOwnSheets"
	ListAnySheets Operation = "listAnySheets"
)

var table = map[Operation]map[domain.Role]bool{
	CreateSheet:   {domain.RoleCEO: true, domain.RoleManager: true},
	AssignSheet:   {domain.RoleCEO: true, domain.RoleManager: true},
	DeleteSheet:   {domain.RoleCEO: true, domain.RoleManager: true},
	CreateAccount: {domain.RoleCEO: true, domain.RoleManager: true},
	ListSheets:    {domain.RoleCEO: true, domain.RoleManager: true},
	ListAccounts:  {domain.RoleCEO: true, domain.RoleManager: true},
	ListOwnSheets: {domain.RoleCEO: true, domain.RoleManager: true, domain.RoleUser: true},
	ListAnySheets: {domain.RoleCEO: true, domain.RoleManager: true},
}

// Allowed reports whether role may perform op. Unknown roles and unknown
// operations are denied.
func Allowed(role domain.Role, op Operation) bool {
	return table[op][role.Tier()]
}

// Authorize returns a wrapped domain.ErrForbidden when role may not perform op.
func Authorize(role domain.Role, op Operation) error {
	if !Allowed(role, op) {
		return fmt.Errorf("%w: role %q may not %s", domain.ErrForbidden, role, op)
	}
	return nil
}

// AuthorizeSheetsFor decides listSheetsForAccount for a concrete target.
func AuthorizeSheetsFor(caller domain.Identity, accountID string) error {
	if caller.AccountID != "" && caller.AccountID == accountID {
		return Authorize(caller.Role, ListOwnSheets)
	}
	return Authorize(caller.Role, ListAnySheets)
}

// Operations returns every known operation, in table order of declaration.
func Operations() []Operation {
	return []Operation{CreateSheet, AssignSheet, DeleteSheet, CreateAccount, ListSheets, ListAccounts, ListOwnSheets, ListAnySheets}
}
