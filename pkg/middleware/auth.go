package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ritahmida/boutique/pkg/auth"
	"github.com/ritahmida/boutique/pkg/response"
)

type claimsKey struct{}

// Auth guards admin routes. The token is read from the boutique_token
// cookie first, then from the Authorization: Bearer header. Validated
// claims are stored in the request context for downstream handlers.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			response.Unauthorized(w)
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(auth.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

// ClaimsFromCtx returns the validated claims, or nil outside an
// authenticated request.
func ClaimsFromCtx(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}

// UsernameFromCtx returns the authenticated username, or "".
func UsernameFromCtx(ctx context.Context) string {
	if claims := ClaimsFromCtx(ctx); claims != nil {
		return claims.Username
	}
	return ""
}

// RoleFromCtx returns the authenticated role, or "".
func RoleFromCtx(ctx context.Context) string {
	if claims := ClaimsFromCtx(ctx); claims != nil {
		return claims.Role
	}
	return ""
}
