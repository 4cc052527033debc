package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"", RoleClient, false},
		{"Client", RoleClient, false},
		{"Admin", RoleAdmin, false},
		{"admin", "", true},
		{"Root", "", true},
	}
	for _, tc := range cases {
		got, err := ParseRole(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrValidation) {
				t.Errorf("ParseRole(%q): expected validation error, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseRole(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestParseDecision(t *testing.T) {
	for _, ok := range []string{"APPROVED", "DENIED"} {
		if _, err := ParseDecision(ok); err != nil {
			t.Errorf("ParseDecision(%q) unexpected error: %v", ok, err)
		}
	}
	for _, bad := range []string{"PENDING", "approved", "", "MAYBE"} {
		_, err := ParseDecision(bad)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("ParseDecision(%q): expected validation error, got %v", bad, err)
		}
	}
}

func TestStatusPredicates(t *testing.T) {
	if StatusPending.Terminal() || !StatusApproved.Terminal() || !StatusDenied.Terminal() {
		t.Fatal("terminal states are APPROVED and DENIED")
	}
	if !StatusApproved.GrantsAccess() || StatusDenied.GrantsAccess() || StatusPending.GrantsAccess() {
		t.Fatal("only APPROVED grants access")
	}
}

func TestGuards(t *testing.T) {
	admin := &Session{UserID: "a", Role: RoleAdmin, ExpiresAt: time.Now().Add(time.Hour)}
	client := &Session{UserID: "c", Role: RoleClient, ExpiresAt: time.Now().Add(time.Hour)}
	expired := &Session{UserID: "c", Role: RoleClient, ExpiresAt: time.Now().Add(-time.Second)}

	if err := RequireAdmin(admin); err != nil {
		t.Errorf("admin should pass: %v", err)
	}
	if err := RequireAdmin(client); !errors.Is(err, ErrForbidden) {
		t.Errorf("client should be forbidden, got %v", err)
	}
	if err := RequireAdmin(nil); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("nil session should be unauthorized, got %v", err)
	}
	if err := RequireClient(admin); !errors.Is(err, ErrForbidden) {
		t.Errorf("admin should not pass client guard, got %v", err)
	}
	if err := RequireClient(client); err != nil {
		t.Errorf("client should pass: %v", err)
	}
	if err := RequireAuthenticated(expired); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expired session should be unauthorized, got %v", err)
	}
}

func TestValidatePhone(t *testing.T) {
	if err := ValidatePhone("5551234567"); err != nil {
		t.Errorf("10 characters must pass: %v", err)
	}
	if err := ValidatePhone("55512345678"); !errors.Is(err, ErrValidation) {
		t.Errorf("11 characters must fail, got %v", err)
	}
	if err := ValidatePhone(""); err != nil {
		t.Errorf("empty phone passes the length rule: %v", err)
	}
}

func TestActivityEntry_Actor(t *testing.T) {
	if got := (ActivityEntry{}).Actor(); got != "Guest" {
		t.Errorf("anonymous actor = %q", got)
	}
	if got := (ActivityEntry{Username: "ann", Role: RoleAdmin}).Actor(); got != "ann (Admin)" {
		t.Errorf("actor = %q", got)
	}
}

func TestErrorMessageAndKind(t *testing.T) {
	var derr *Error
	if !errors.As(ErrProjectNotFound, &derr) {
		t.Fatal("expected *Error")
	}
	if derr.Kind() != ErrNotFound || derr.Error() != "project not found" {
		t.Errorf("unexpected error: kind=%v msg=%q", derr.Kind(), derr.Error())
	}
	if err := Validation("bad input"); !errors.Is(err, ErrValidation) || err.Error() != "bad input" {
		t.Errorf("Validation helper: %v", err)
	}
}
