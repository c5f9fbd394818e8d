package utils

import (
	"strings"
	"testing"

	"github.com/panjilaras/Dashboard-PI/internal/validation"
)

func TestRandomToken(t *testing.T) {
	a, err := RandomToken(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := RandomToken(32)

	if a == b {
		t.Error("two tokens should not collide")
	}
	if len(a) != 43 {
		t.Errorf("expected 43 chars for 32 bytes, got %d", len(a))
	}
	if strings.ContainsAny(a, "+/=") {
		t.Errorf("token is not url safe: %s", a)
	}
}

func TestHashToken(t *testing.T) {
	got := HashToken("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestGeneratePassword(t *testing.T) {
	for _, length := range []int{0, 8, 12, 20} {
		pw, err := GeneratePassword(length)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := max(length, MinGeneratedPasswordLength)
		if len(pw) != want {
			t.Errorf("length %d: expected %d chars, got %d", length, want, len(pw))
		}
		if !validation.IsStrongPassword(pw) {
			t.Errorf("generated password %q does not meet the password policy", pw)
		}
		if !strings.ContainsAny(pw, symbolChars) {
			t.Errorf("generated password %q has no symbol", pw)
		}
	}
}
