package util

import (
	"strings"
	"testing"
	"time"
)

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"true", false, true},
		{"YES", false, true},
		{"0", true, false},
		{"off", true, false},
		{"garbage", true, true},
	}
	for _, tt := range tests {
		t.Setenv("WEBZINE_TEST_BOOL", tt.value)
		if got := ParseBoolEnv("WEBZINE_TEST_BOOL", tt.def); got != tt.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
		}
	}
}

func TestParseIntEnv(t *testing.T) {
	t.Setenv("WEBZINE_TEST_INT", "15")
	if got := ParseIntEnv("WEBZINE_TEST_INT", 5); got != 15 {
		t.Errorf("ParseIntEnv = %d, want 15", got)
	}
	t.Setenv("WEBZINE_TEST_INT", "not-a-number")
	if got := ParseIntEnv("WEBZINE_TEST_INT", 5); got != 5 {
		t.Errorf("ParseIntEnv invalid = %d, want default 5", got)
	}
}

func TestParseMillisEnv(t *testing.T) {
	t.Setenv("WEBZINE_TEST_MS", "60000")
	if got := ParseMillisEnv("WEBZINE_TEST_MS", time.Second); got != time.Minute {
		t.Errorf("ParseMillisEnv = %v, want 1m", got)
	}
	t.Setenv("WEBZINE_TEST_MS", "-5")
	if got := ParseMillisEnv("WEBZINE_TEST_MS", time.Second); got != time.Second {
		t.Errorf("ParseMillisEnv negative = %v, want default", got)
	}
}

func TestGenerateRandomHex(t *testing.T) {
	hex := GenerateRandomHex(16)
	if len(hex) != 16 {
		t.Fatalf("expected 16 chars, got %d", len(hex))
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdef", r) {
			t.Fatalf("non-hex character %q in %q", r, hex)
		}
	}
	if GenerateRandomHex(0) != "" {
		t.Error("expected empty string for zero length")
	}
}

func TestGenerateGuestEmail(t *testing.T) {
	email := GenerateGuestEmail()
	if !strings.HasPrefix(email, "guest-") || !strings.HasSuffix(email, "@webzine.local") {
		t.Fatalf("unexpected guest email shape: %q", email)
	}
	if email == GenerateGuestEmail() {
		t.Error("guest emails should not collide across calls")
	}
}
