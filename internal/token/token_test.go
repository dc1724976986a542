package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	adminID := uuid.New()

	signed, err := m.Issue(adminID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if signed == "" {
		t.Fatal("expected non-empty token")
	}

	got, err := m.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != adminID {
		t.Errorf("subject: got %s, want %s", got, adminID)
	}
}

func TestVerifyExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	signed, err := m.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := m.Verify(signed); err != ErrInvalid {
		t.Errorf("expected ErrInvalid for expired token, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)

	signed, err := issuer.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := verifier.Verify(signed); err != ErrInvalid {
		t.Errorf("expected ErrInvalid for wrong secret, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c", "eyJhbGciOiJub25lIn0.e30."} {
		if _, err := m.Verify(tok); err != ErrInvalid {
			t.Errorf("Verify(%q): expected ErrInvalid, got %v", tok, err)
		}
	}
}
