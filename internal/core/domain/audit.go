package domain

import "time"

// AuditEntry records one successful mutation of the catalog or identity store.
type AuditEntry struct {
	Operation string
	ActorID   string
	ActorRole Role
	TargetID  string
	Detail    string
	At        time.Time
}
