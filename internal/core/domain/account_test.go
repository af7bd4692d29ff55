package domain

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"CEO", RoleCEO, false},
		{"Manager", RoleManager, false},
		{"Admin", RoleManager, false},
		{"User", RoleUser, false},
		{" User ", RoleUser, false},
		{"user", "", true},
		{"", "", true},
		{"root", "", true},
	}

	for _, tc := range cases {
		got, err := ParseRole(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("ParseRole(%q): expected ErrInvalidInput, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseRole(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestRole_Privileged(t *testing.T) {
	if !RoleCEO.Privileged() || !RoleManager.Privileged() || !RoleAdmin.Privileged() {
		t.Error("CEO, Manager and Admin must be privileged")
	}
	if RoleUser.Privileged() {
		t.Error("User must not be privileged")
	}
}

func TestSheet_AssignIsIdempotent(t *testing.T) {
	s := &Sheet{ID: "s1"}
	if !s.Assign("a1") {
		t.Fatal("first assign should add the edge")
	}
	if s.Assign("a1") {
		t.Fatal("second assign must be a no-op")
	}
	if len(s.AssignedTo) != 1 {
		t.Fatalf("expected exactly one edge, got %v", s.AssignedTo)
	}
}

func TestSheet_CloneDoesNotShareEdges(t *testing.T) {
	s := &Sheet{ID: "s1", AssignedTo: []string{"a1"}}
	c := s.Clone()
	c.Assign("a2")
	if len(s.AssignedTo) != 1 {
		t.Fatalf("clone mutated original: %v", s.AssignedTo)
	}

	empty := (&Sheet{ID: "s2"}).Clone()
	if empty.AssignedTo == nil {
		t.Fatal("clone must normalize nil edges to an empty slice")
	}
}

func TestNotFoundSentinelsWrap(t *testing.T) {
	if !errors.Is(ErrAccountNotFound, ErrNotFound) || !errors.Is(ErrSheetNotFound, ErrNotFound) {
		t.Fatal("specific not-found errors must wrap ErrNotFound")
	}
	if !errors.Is(ErrInvalidCredentials, ErrUnauthorized) {
		t.Fatal("ErrInvalidCredentials must wrap ErrUnauthorized")
	}
}
