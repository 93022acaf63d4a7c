package api

import (
	"context"
	"net/http"
	"time"

	"github.com/psalmeida/bancodigital/internal/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

// authenticate validates the Authorization header and stores the resulting
// claims in the request context. Every failure mode collapses to 403 so the
// response does not reveal whether a token exists, expired, or was forged.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.tokens.Validate(r.Header.Get("Authorization"), time.Now())
		if err != nil {
			h.respondError(w, err, r.Method, r.URL.Path)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

func claimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}
