package auth

import (
	"testing"
	"time"

	"github.com/aryan0dhankhar/citas/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "", time.Hour)
	token, err := tm.GenerateToken(domain.Principal{UserID: 5, Role: domain.RoleDoctor, Email: "house@example.com"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := tm.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	p := claims.Principal()
	if p.UserID != 5 || p.Role != domain.RoleDoctor || p.Email != "house@example.com" {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestTokenRejectsOtherSecret(t *testing.T) {
	token, _ := NewTokenManager("one", "", time.Hour).GenerateToken(domain.Principal{UserID: 1, Role: domain.RoleAdmin})
	if _, err := NewTokenManager("two", "", time.Hour).ValidateToken(token); err == nil {
		t.Fatalf("expected signature mismatch")
	}
}

func TestTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", "", time.Hour)
	tm.ttl = -time.Minute
	token, err := tm.GenerateToken(domain.Principal{UserID: 1, Role: domain.RolePatient})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tm.ValidateToken(token); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestGenerateRequiresRole(t *testing.T) {
	tm := NewTokenManager("secret", "", time.Hour)
	if _, err := tm.GenerateToken(domain.Principal{UserID: 1, Role: "NURSE"}); err == nil {
		t.Fatalf("expected unknown role to be rejected")
	}
}

func TestExtractToken(t *testing.T) {
	if tok, err := ExtractToken("Bearer abc"); err != nil || tok != "abc" {
		t.Fatalf("expected abc, got %q %v", tok, err)
	}
	if _, err := ExtractToken("Basic abc"); err == nil {
		t.Fatalf("expected non-bearer header to fail")
	}
}
