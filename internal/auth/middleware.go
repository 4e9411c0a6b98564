package auth

import (
	"context"
	"net/http"
	"strings"
)

type authUserKey struct{}

// UserFromContext returns the claims the middleware attached to the request,
// or nil when the request never passed authentication.
func UserFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(authUserKey{}).(*Claims)
	return c
}

// publicPaths can be reached without a token: the login flow itself, and
// setup, which has to run before any account exists.
var publicPaths = map[string]bool{
	"/api/v1/auth/login":        true,
	"/api/v1/auth/mfa/verify":   true,
	"/api/v1/auth/refresh":      true,
	"/api/v1/auth/logout":       true,
	"/api/v1/auth/setup":        true,
	"/api/v1/auth/setup/status": true,
}

// skipAuth reports whether the path is reachable without a Bearer token.
// Non-API paths (health, readiness, metrics) and WebSocket upgrades carry
// their own access rules.
func skipAuth(path string) bool {
	if !strings.HasPrefix(path, "/api/") {
		return true
	}
	if strings.HasPrefix(path, "/api/v1/ws/") {
		return true
	}
	return publicPaths[path]
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// AuthMiddleware validates JWT access tokens on API routes and attaches the
// resulting claims to the request context.
func AuthMiddleware(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipAuth(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			claims, err := tokens.ValidateAccessToken(token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired access token")
				return
			}

			ctx := context.WithValue(r.Context(), authUserKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
