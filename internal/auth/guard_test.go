package auth

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/psalmeida/bancodigital/internal/domain"
)

func claimsFor(subject string, roles ...string) *Claims {
	return &Claims{
		Authorities:      NormalizeRoles(roles),
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
	}
}

func TestRequireOwner(t *testing.T) {
	acct := &domain.Account{Number: 100, Email: "alice@bank.io"}

	if err := RequireOwner(claimsFor("alice@bank.io"), acct); err != nil {
		t.Errorf("owner denied: %v", err)
	}
	if err := RequireOwner(claimsFor("mallory@bank.io"), acct); !errors.Is(err, ErrDenied) {
		t.Errorf("err = %v, want ErrDenied", err)
	}
	if err := RequireOwner(nil, acct); !errors.Is(err, ErrDenied) {
		t.Errorf("nil claims err = %v, want ErrDenied", err)
	}
}

func TestRequireRole(t *testing.T) {
	admin := claimsFor("root@bank.io", "USER", "ADMIN")
	user := claimsFor("alice@bank.io", "USER")

	if err := RequireRole(admin, AdminRole); err != nil {
		t.Errorf("admin denied: %v", err)
	}
	if err := RequireRole(user, AdminRole); !errors.Is(err, ErrDenied) {
		t.Errorf("err = %v, want ErrDenied", err)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("password stored in clear")
	}
	if !CheckPassword("s3cret", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Error("wrong password accepted")
	}
}
