package auth

import (
	"errors"

	"github.com/psalmeida/bancodigital/internal/domain"
)

// ErrDenied signals an ownership or role mismatch. Mapped to 403.
var ErrDenied = errors.New("operation denied")

// AdminRole gates the administrative list-all operation.
const AdminRole = rolePrefix + "ADMIN"

// RequireOwner checks that the token subject owns the target account.
// Identity is the login email, as embedded at issuance.
func RequireOwner(c *Claims, acct *domain.Account) error {
	if c == nil || c.Subject != acct.Email {
		return ErrDenied
	}
	return nil
}

// RequireRole checks that the claim carries the given authority.
func RequireRole(c *Claims, role string) error {
	if c == nil {
		return ErrDenied
	}
	for _, r := range c.Authorities {
		if r == role {
			return nil
		}
	}
	return ErrDenied
}
