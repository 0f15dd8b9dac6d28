package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	iss := NewIssuer("secret", "inkbrawl", time.Hour)

	token, claims, err := iss.IssueGuest("  alice  ")
	if err != nil {
		t.Fatalf("IssueGuest: %v", err)
	}
	if claims.Name != "alice" || claims.ParticipantID == "" {
		t.Fatalf("claims = %+v", claims)
	}

	got, err := iss.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.ParticipantID != claims.ParticipantID || got.Name != "alice" {
		t.Fatalf("verified claims = %+v", got)
	}
}

func TestGuestNameDefaultsAndTruncates(t *testing.T) {
	iss := NewIssuer("secret", "inkbrawl", time.Hour)

	_, claims, err := iss.IssueGuest("")
	if err != nil {
		t.Fatalf("IssueGuest: %v", err)
	}
	if !strings.HasPrefix(claims.Name, "Guest-") {
		t.Fatalf("default name = %q", claims.Name)
	}

	_, claims, err = iss.IssueGuest(strings.Repeat("墨", 40))
	if err != nil {
		t.Fatalf("IssueGuest: %v", err)
	}
	if n := len([]rune(claims.Name)); n != maxNameLength {
		t.Fatalf("name length = %d, want %d", n, maxNameLength)
	}
}

func TestVerifyRejects(t *testing.T) {
	iss := NewIssuer("secret", "inkbrawl", time.Hour)
	token, _, err := iss.IssueGuest("bob")
	if err != nil {
		t.Fatalf("IssueGuest: %v", err)
	}

	other := NewIssuer("other-secret", "inkbrawl", time.Hour)
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: err = %v", err)
	}

	wrongIssuer := NewIssuer("secret", "someone-else", time.Hour)
	if _, err := wrongIssuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong issuer: err = %v", err)
	}

	late := NewIssuer("secret", "inkbrawl", time.Hour)
	late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := late.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired: err = %v", err)
	}

	if _, err := iss.Verify(""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("empty: err = %v", err)
	}
	if _, err := iss.Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: err = %v", err)
	}
}
