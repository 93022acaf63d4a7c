package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token validation failures. The HTTP layer maps all three to 403.
var (
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrMalformedToken   = errors.New("token malformed")
)

// rolePrefix is the canonical authority prefix carried inside tokens.
const rolePrefix = "ROLE_"

// Config is the signing material for an Authority. Passed by reference at
// construction so multiple authorities with distinct keys and TTLs can
// coexist in one process.
type Config struct {
	Key    string
	Prefix string
	TTL    time.Duration
}

// Claims is the decoded payload of a session token.
type Claims struct {
	Authorities []string `json:"authorities"`
	jwt.RegisteredClaims
}

// Authority issues and validates signed, time-bounded session tokens. It is
// stateless: given the same key and clock it is a pure function, and no
// server-side session table exists.
type Authority struct {
	cfg *Config
}

func NewAuthority(cfg *Config) *Authority {
	return &Authority{cfg: cfg}
}

// Issue produces an encoded token for subject, valid from now until
// now+TTL, with roles normalized before embedding. The returned string
// already carries the configured prefix, ready for an Authorization header.
func (a *Authority) Issue(subject string, roles []string, now time.Time) (string, error) {
	claims := Claims{
		Authorities: NormalizeRoles(roles),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(a.cfg.Key))
	if err != nil {
		return "", err
	}
	return a.cfg.Prefix + " " + signed, nil
}

// Validate decodes a prefixed token and verifies its signature and expiry
// against now. On success the claims come back as issued; roles were
// already normalized at issuance.
func (a *Authority) Validate(token string, now time.Time) (*Claims, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(token, a.cfg.Prefix))
	if raw == "" {
		return nil, ErrMalformedToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) { return []byte(a.cfg.Key), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformedToken
		}
	}
	return claims, nil
}

// NormalizeRoles adds the canonical authority prefix to each role exactly
// once. Applying it twice yields the same list.
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if !strings.HasPrefix(r, rolePrefix) {
			r = rolePrefix + r
		}
		out = append(out, r)
	}
	return out
}
