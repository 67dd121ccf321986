package editor

import (
	"testing"
	"time"
)

func newTestTokenIssuer(clock func() time.Time) *TokenIssuer {
	return NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("test-secret"),
		Issuer:        "folio-editor",
		Audience:      "folio-api",
		TokenTTL:      time.Hour,
		Clock:         clock,
	})
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := newTestTokenIssuer(nil)

	token, expiresIn, err := issuer.IssueSessionToken("session-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if expiresIn != int64(time.Hour/time.Second) {
		t.Fatalf("expected one hour expiry, got %d", expiresIn)
	}

	sessionID, err := issuer.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if sessionID != "session-123" {
		t.Fatalf("expected session-123, got %q", sessionID)
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer := newTestTokenIssuer(nil)
	token, _, err := issuer.IssueSessionToken("session-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewTokenIssuer(TokenIssuerConfig{
		SigningSecret: []byte("different-secret"),
		Issuer:        "folio-editor",
		Audience:      "folio-api",
	})
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail under a different secret")
	}
}

func TestTokenRejectsExpired(t *testing.T) {
	issued := time.Now
	issuer := newTestTokenIssuer(issued)
	token, _, err := issuer.IssueSessionToken("session-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	later := newTestTokenIssuer(func() time.Time { return time.Now().Add(2 * time.Hour) })
	if _, err := later.ValidateToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestIssueRequiresSessionID(t *testing.T) {
	issuer := newTestTokenIssuer(nil)
	if _, _, err := issuer.IssueSessionToken(""); err == nil {
		t.Fatal("expected an error for an empty session id")
	}
}
