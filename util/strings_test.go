package util

import "testing"

func TestPascalCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"welcome", "Welcome"},
		{"user_profile", "UserProfile"},
		{"health-check", "HealthCheck"},
		{"already Pascal", "AlreadyPascal"},
		{"", ""},
		{"a", "A"},
	}
	for _, tc := range tests {
		if got := PascalCase(tc.in); got != tc.want {
			t.Errorf("PascalCase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "", "hello", "world"); got != "hello" {
		t.Errorf("expected 'hello', got %q", got)
	}
	if got := Coalesce(0, 0, 42); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if got := Coalesce("", ""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestStringInSlice(t *testing.T) {
	if !StringInSlice("a", []string{"a", "b"}) {
		t.Error("expected hit for present element")
	}
	if StringInSlice("c", []string{"a", "b"}) {
		t.Error("expected miss for absent element")
	}
}

func TestEqualFoldInSlice(t *testing.T) {
	if !EqualFoldInSlice("AUTHORIZATION", []string{"Authorization"}) {
		t.Error("expected case-insensitive hit")
	}
	if EqualFoldInSlice("X-Key", []string{"Authorization"}) {
		t.Error("expected miss")
	}
}
