package handlers

import (
	"context"
	"net/http"

	"github.com/md-rashed-zaman/courtbook/internal/api"
	"github.com/md-rashed-zaman/courtbook/libs/auth"
	"github.com/md-rashed-zaman/courtbook/libs/httpx"
)

type ctxKey int

const ctxKeyClaims ctxKey = iota

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(ctxKeyClaims).(*auth.Claims)
	return claims
}

// Authenticate verifies a bearer token when one is present and stores the
// claims on the request context. Requests without an Authorization header
// pass through anonymously; role enforcement happens per handler.
func Authenticate(secret string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := auth.BearerToken(header)
			if !ok {
				api.Unauthorized(w, "invalid Authorization header")
				return
			}
			claims, err := auth.ParseAndVerifyHS256(token, secret)
			if err != nil {
				api.Unauthorized(w, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireRole gates a handler to the given roles. It writes the failure
// response itself and reports whether the request may proceed.
func requireRole(w http.ResponseWriter, r *http.Request, roles ...string) (*auth.Claims, bool) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		api.Unauthorized(w, "you have no access to this route")
		return nil, false
	}
	for _, role := range roles {
		if claims.Role == role {
			return claims, true
		}
	}
	api.Forbidden(w, "you have no access to this route")
	return nil, false
}
