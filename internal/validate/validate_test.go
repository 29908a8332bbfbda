package validate

import (
	"testing"

	"backoffice-cli/internal/model"
)

func TestPassword(t *testing.T) {
	cases := []struct {
		pw      string
		wantErr string
	}{
		{"Abc123x", ""},
		{"abc123", "must contain an uppercase letter"},
		{"ABC123", "must contain a lowercase letter"},
		{"Abcdef", "must contain a digit"},
		{"Ab1", "must be at least 6 characters"},
	}
	for _, tc := range cases {
		err := Password("password", tc.pw)
		if tc.wantErr == "" {
			if err != nil {
				t.Fatalf("Password(%q) = %v, want ok", tc.pw, err)
			}
			continue
		}
		fe, ok := err.(FieldError)
		if !ok {
			t.Fatalf("Password(%q) = %v, want FieldError", tc.pw, err)
		}
		if fe.Message != tc.wantErr {
			t.Fatalf("Password(%q) message = %q, want %q", tc.pw, fe.Message, tc.wantErr)
		}
	}
}

func TestEmail(t *testing.T) {
	if err := Email("email", "ops@example.com"); err != nil {
		t.Fatalf("valid email rejected: %v", err)
	}
	for _, bad := range []string{"", "nope", "a@b", "a b@c.com"} {
		if err := Email("email", bad); err == nil {
			t.Fatalf("Email(%q) accepted", bad)
		}
	}
}

func TestPhone(t *testing.T) {
	for _, ok := range []string{"+4791234567", "12345678"} {
		if err := Phone("phone", ok); err != nil {
			t.Fatalf("Phone(%q) = %v, want ok", ok, err)
		}
	}
	for _, bad := range []string{"123", "12345abc", "+12345678901234567"} {
		if err := Phone("phone", bad); err == nil {
			t.Fatalf("Phone(%q) accepted", bad)
		}
	}
}

func TestDuplicateName_CaseInsensitive(t *testing.T) {
	loaded := []model.Item{
		{ID: "c1", Fields: map[string]string{"name": "support"}},
		{ID: "c2", Fields: map[string]string{"name": "Billing"}},
	}
	if err := DuplicateName("Support", loaded); err == nil {
		t.Fatalf("case-insensitive collision not detected")
	}
	if err := DuplicateName("Sales", loaded); err != nil {
		t.Fatalf("unique name rejected: %v", err)
	}
	if err := DuplicateName("  ", loaded); err != nil {
		t.Fatalf("blank name is the Required check's job, got %v", err)
	}
}
