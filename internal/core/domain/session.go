package domain

// Identity is the authenticated caller, derived from a verified token.
// It is never read from request bodies.
type Identity struct {
	AccountID   string
	Username    string
	Role        Role
	Designation string
}

// IsZero reports whether no caller has been established.
func (i Identity) IsZero() bool {
	return i.AccountID == "" || i.Role == ""
}
