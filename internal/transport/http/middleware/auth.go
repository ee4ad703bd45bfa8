package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/infrastructure/security"
)

type TokenVerifier interface {
	VerifyAccessToken(token string) (security.TokenClaims, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

type claimsCtxKey int

const userClaimsKey claimsCtxKey = iota

// Auth verifies Authorization: Bearer <access_token> and injects the
// verified claims into the request context.
func Auth(verifier TokenVerifier, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" {
				writeErr(w, r, domain.ErrTokenMissing())
				return
			}

			parts := strings.SplitN(h, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeErr(w, r, domain.ErrAccessTokenInvalid())
				return
			}

			raw := strings.TrimSpace(parts[1])
			if raw == "" {
				writeErr(w, r, domain.ErrAccessTokenInvalid())
				return
			}

			claims, err := verifier.VerifyAccessToken(raw)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			if strings.TrimSpace(claims.Email) == "" {
				writeErr(w, r, domain.ErrAccessTokenInvalid())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims)))
		})
	}
}

// WithUser stores verified claims in the context.
func WithUser(ctx context.Context, claims security.TokenClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// UserFromContext returns the verified claims set by Auth.
func UserFromContext(ctx context.Context) (security.TokenClaims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(security.TokenClaims)
	return claims, ok
}
