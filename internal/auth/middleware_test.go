package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// guardProbe records whether the wrapped handler ran and what claims it saw.
type guardProbe struct {
	called bool
	claims *Claims
}

func (p *guardProbe) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.called = true
		p.claims = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func guardedRequest(t *testing.T, ts *TokenService, path, authorization string) (*httptest.ResponseRecorder, *guardProbe) {
	t.Helper()
	probe := &guardProbe{}
	h := AuthMiddleware(ts)(probe.handler())

	req := httptest.NewRequest("GET", path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, probe
}

func TestAuthMiddleware_OpenPaths(t *testing.T) {
	ts := newTestTokenService()

	paths := []string{
		"/healthz",
		"/metrics",
		"/api/v1/ws/events",
		"/api/v1/auth/login",
		"/api/v1/auth/mfa/verify",
		"/api/v1/auth/refresh",
		"/api/v1/auth/logout",
		"/api/v1/auth/setup",
		"/api/v1/auth/setup/status",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec, probe := guardedRequest(t, ts, path, "")
			if !probe.called {
				t.Fatalf("handler not reached on %s without a token", path)
			}
			if rec.Code != http.StatusNoContent {
				t.Errorf("status = %d, want 204", rec.Code)
			}
		})
	}
}

func TestAuthMiddleware_GuardedPathNeedsToken(t *testing.T) {
	ts := newTestTokenService()

	tests := []struct {
		name          string
		authorization string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty bearer", "Bearer "},
		{"malformed jwt", "Bearer not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, probe := guardedRequest(t, ts, "/api/v1/drift/series", tt.authorization)
			if probe.called {
				t.Error("handler ran without valid credentials")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("Content-Type = %q, want application/problem+json", ct)
			}
		})
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	ts := newTestTokenService()
	user := newTestUser()

	token, err := ts.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	rec, probe := guardedRequest(t, ts, "/api/v1/drift/series", "Bearer "+token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if probe.claims == nil {
		t.Fatal("expected claims in request context")
	}
	if probe.claims.UserID != user.ID {
		t.Errorf("UserID = %q, want %q", probe.claims.UserID, user.ID)
	}
	if probe.claims.Username != user.Username {
		t.Errorf("Username = %q, want %q", probe.claims.Username, user.Username)
	}
	if probe.claims.Role != string(user.Role) {
		t.Errorf("Role = %q, want %q", probe.claims.Role, user.Role)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	expired := NewTokenService([]byte("test-secret-key-32bytes-long!!"), -time.Second, time.Hour)
	token, err := expired.IssueAccessToken(newTestUser())
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	rec, probe := guardedRequest(t, expired, "/api/v1/drift/series", "Bearer "+token)
	if probe.called {
		t.Error("handler ran with an expired token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestUserFromContext_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if claims := UserFromContext(req.Context()); claims != nil {
		t.Errorf("claims = %+v, want nil outside the middleware", claims)
	}
}
