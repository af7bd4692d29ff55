package domain

import (
	"slices"
	"time"
)

// Sheet is a catalog record pointing at an external document.
type Sheet struct {
	ID         string    `json:"id"`
	Name       string    `json:"sheetName"`
	URL        string    `json:"sheetUrl"`
	AssignedTo []string  `json:"assignedTo"`
	CreatedAt  time.Time `json:"createdAt"`
}

// IsAssignedTo reports whether accountID holds an edge to the sheet.
func (s *Sheet) IsAssignedTo(accountID string) bool {
	return slices.Contains(s.AssignedTo, accountID)
}

// Assign adds accountID to the edge set. It reports false when the edge
// already existed, leaving AssignedTo untouched.
func (s *Sheet) Assign(accountID string) bool {
	if s.IsAssignedTo(accountID) {
		return false
	}
	s.AssignedTo = append(s.AssignedTo, accountID)
	return true
}

// Clone returns a deep copy so callers never share the edge slice.
func (s *Sheet) Clone() *Sheet {
	if s == nil {
		return nil
	}
	c := *s
	c.AssignedTo = slices.Clone(s.AssignedTo)
	if c.AssignedTo == nil {
		c.AssignedTo = []string{}
	}
	return &c
}
