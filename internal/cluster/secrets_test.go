package cluster

import (
	"strings"
	"testing"
)

func TestGeneratePassword_Length(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"Standard", 20, 20},
		{"Short", 16, 16},
		{"ZeroUsesDefault", 0, 16},
		{"NegativeUsesDefault", -5, 16},
		{"CappedAtMax", 500, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pw, err := GeneratePassword(tt.n)
			if err != nil {
				t.Fatalf("GeneratePassword failed: %v", err)
			}
			if len(pw) != tt.want {
				t.Errorf("got length %d, want %d", len(pw), tt.want)
			}
		})
	}
}

func TestGeneratePassword_CharsetOnly(t *testing.T) {
	pw, err := GeneratePassword(64)
	if err != nil {
		t.Fatalf("GeneratePassword failed: %v", err)
	}
	for _, r := range pw {
		if !strings.ContainsRune(passwordChars, r) {
			t.Errorf("unexpected character %q in password", r)
		}
	}
}

func TestGeneratePassword_Distinct(t *testing.T) {
	a, _ := GeneratePassword(20)
	b, _ := GeneratePassword(20)
	if a == b {
		t.Error("two generated passwords were identical")
	}
}
