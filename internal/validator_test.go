package internal

import (
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	v := NewValidator()
	for _, ok := range []string{"spez", "a_b", "user-name", "ABC123"} {
		if err := v.ValidateUsername(ok); err != nil {
			t.Errorf("ValidateUsername(%q) unexpected error: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "ab", "has space", strings.Repeat("a", 21), "emoji🙂"} {
		if err := v.ValidateUsername(bad); err == nil {
			t.Errorf("ValidateUsername(%q) expected error", bad)
		}
	}
}

func TestValidateUserAgent(t *testing.T) {
	v := NewValidator()
	if err := v.ValidateUserAgent("linux:graw:1.0 (by /u/alice)"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, bad := range []string{"", "agent\r\nX-Injected: 1", strings.Repeat("a", maxUserAgentLength+1)} {
		if err := v.ValidateUserAgent(bad); err == nil {
			t.Errorf("ValidateUserAgent(%q) expected error", bad)
		}
	}
}
