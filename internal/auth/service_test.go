package auth

import (
	"testing"
	"time"

	"github.com/cardvault/cardvault/internal/holder"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewService("test-secret", time.Minute)

	h := holder.Holder{ID: "h-1", Username: "alice", Roles: []string{"ADMIN"}}
	token, expiresIn, err := svc.Issue(h)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if expiresIn != 60 {
		t.Fatalf("expected expires_in 60, got %d", expiresIn)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Username != "alice" {
		t.Fatalf("expected username alice, got %q", claims.Username)
	}
	if claims.Subject != "h-1" {
		t.Fatalf("expected subject h-1, got %q", claims.Subject)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "ADMIN" {
		t.Fatalf("roles not preserved: %v", claims.Roles)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewService("secret-a", time.Minute)
	verifier := NewService("secret-b", time.Minute)

	token, _, err := issuer.Issue(holder.Holder{ID: "h-1", Username: "alice"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("token signed with another secret must not verify")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := NewService("test-secret", -time.Minute)

	token, _, err := svc.Issue(holder.Holder{ID: "h-1", Username: "alice"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Verify(token); err == nil {
		t.Fatal("expired token must not verify")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewService("test-secret", time.Minute)
	if _, err := svc.Verify("not.a.token"); err == nil {
		t.Fatal("garbage input must not verify")
	}
}
