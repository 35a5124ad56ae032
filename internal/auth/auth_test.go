package auth

import (
	"errors"
	"testing"
	"time"

	"ClearTracker/internal/model"

	"golang.org/x/crypto/bcrypt"
)

func TestTokenIssueAndValidate(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", "cleartracker", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	token, err := issuer.Issue(&model.User{ID: 42, Username: "sanae", IsAdmin: true})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != 42 || !claims.IsAdmin || claims.Subject != "sanae" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenRejections(t *testing.T) {
	issuer, _ := NewTokenIssuer("secret", "cleartracker", time.Hour)
	token, _ := issuer.Issue(&model.User{ID: 1, Username: "u"})

	other, _ := NewTokenIssuer("another-secret", "cleartracker", time.Hour)
	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret = %v", err)
	}

	wrongIssuer, _ := NewTokenIssuer("secret", "someone-else", time.Hour)
	if _, err := wrongIssuer.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong issuer = %v", err)
	}

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := issuer.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token = %v", err)
	}

	if _, err := issuer.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage = %v", err)
	}
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer("", "x", time.Hour); err == nil {
		t.Fatal("empty secret accepted")
	}
	issuer, _ := NewTokenIssuer("s", "", 0)
	if issuer.TTL() != 24*time.Hour {
		t.Errorf("default ttl = %v", issuer.TTL())
	}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hashed, err := h.Hash("hakurei")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hashed == "hakurei" {
		t.Fatal("password stored in clear")
	}
	if !h.Verify(hashed, "hakurei") {
		t.Error("Verify rejected correct password")
	}
	if h.Verify(hashed, "kirisame") {
		t.Error("Verify accepted wrong password")
	}
}
