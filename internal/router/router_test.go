package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/panjilaras/Dashboard-PI/internal/config"
	"github.com/panjilaras/Dashboard-PI/internal/errs"
	"github.com/panjilaras/Dashboard-PI/internal/handler"
	"github.com/panjilaras/Dashboard-PI/internal/model/auth"
	"github.com/panjilaras/Dashboard-PI/internal/model/user"
	"github.com/panjilaras/Dashboard-PI/internal/server"
	"github.com/panjilaras/Dashboard-PI/internal/service"
	"github.com/rs/zerolog"
)

type stubAuthenticator struct{}

func (stubAuthenticator) AuthenticateSession(_ context.Context, token string) (*auth.Identity, error) {
	switch token {
	case "admin-token":
		return &auth.Identity{AuthUserID: "auth-1", MasterUserID: 1, Role: user.RoleAdmin}, nil
	case "member-token":
		return &auth.Identity{AuthUserID: "auth-2", MasterUserID: 2, Role: user.RoleMember}, nil
	}
	return nil, errs.NewUnauthorizedCodeError("Session is invalid or has expired", "INVALID_SESSION")
}

func (stubAuthenticator) AuthenticateClerk(context.Context, string, string) (*auth.Identity, error) {
	return nil, errs.NewUnauthorizedError("Unauthorized", false)
}

// newTestRouter builds the full route table. Services are left nil, so only
// requests stopped by middleware can be exercised.
func newTestRouter() http.Handler {
	logger := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Primary:       config.Primary{Env: "test"},
			Auth:          config.AuthConfig{Provider: config.AuthProviderSession},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &logger,
	}
	return NewRouter(s, handler.NewHandlers(s, &service.Services{}), stubAuthenticator{})
}

func TestRouteGuards(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
		code   string
	}{
		{"tasks need a token", http.MethodGet, "/api/tasks", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"unknown session", http.MethodGet, "/api/dashboard/metrics", "stale", http.StatusUnauthorized, "INVALID_SESSION"},
		{"member cannot create tasks", http.MethodPost, "/api/tasks", "member-token", http.StatusForbidden, "FORBIDDEN"},
		{"member cannot change status", http.MethodPatch, "/api/tasks/1/status", "member-token", http.StatusForbidden, "FORBIDDEN"},
		{"member cannot delete categories", http.MethodDelete, "/api/task-categories/1", "member-token", http.StatusForbidden, "FORBIDDEN"},
		{"member cannot delete users", http.MethodDelete, "/api/users/1", "member-token", http.StatusForbidden, "FORBIDDEN"},
		{"member cannot set passwords", http.MethodPost, "/api/users/set-default-password", "member-token", http.StatusForbidden, "FORBIDDEN"},
		{"member cannot sync roles", http.MethodPut, "/api/auth/sync-role", "member-token", http.StatusForbidden, "FORBIDDEN"},
		{"exports need a token", http.MethodGet, "/api/reports/export.pdf", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"sign-out needs a token", http.MethodPost, "/api/auth/sign-out", "", http.StatusUnauthorized, "MISSING_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			var body errs.HTTPError
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid body %q: %v", rec.Body.String(), err)
			}
			if body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
		})
	}
}

func TestSystemRoutes(t *testing.T) {
	r := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing request id header")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/does-not-exist", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", rec.Code)
	}
}
