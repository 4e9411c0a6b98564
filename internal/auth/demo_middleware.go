package auth

import (
	"context"
	"net/http"
	"strings"
)

// demoClaims builds the synthetic read-only identity used in demo mode.
func demoClaims() *Claims {
	return &Claims{
		UserID:   "demo-user",
		Username: "demo",
		Role:     "viewer",
	}
}

// DemoAuthMiddleware replaces JWT validation in demo deployments: every API
// request runs as a synthetic viewer, so endpoints work without login.
func DemoAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Claims only matter on API paths, same scope as AuthMiddleware.
			if strings.HasPrefix(r.URL.Path, "/api/") {
				r = r.WithContext(context.WithValue(r.Context(), authUserKey{}, demoClaims()))
			}
			next.ServeHTTP(w, r)
		})
	}
}
