package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/panjilaras/Dashboard-PI/internal/config"
	"github.com/panjilaras/Dashboard-PI/internal/errs"
	"github.com/panjilaras/Dashboard-PI/internal/model/auth"
	"github.com/panjilaras/Dashboard-PI/internal/model/user"
	"github.com/panjilaras/Dashboard-PI/internal/server"
	"github.com/panjilaras/Dashboard-PI/internal/sqlerr"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

func newTestServer() *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Server: config.ServerConfig{CORSAllowedOrigins: []string{"http://localhost:3000"}},
			Auth:   config.AuthConfig{Provider: config.AuthProviderSession},
		},
		Logger: &logger,
	}
}

type stubAuthenticator struct {
	tokens map[string]*auth.Identity
}

func (s *stubAuthenticator) AuthenticateSession(_ context.Context, token string) (*auth.Identity, error) {
	if identity, ok := s.tokens[token]; ok {
		return identity, nil
	}
	return nil, errs.NewUnauthorizedCodeError("Session is invalid or has expired", "INVALID_SESSION")
}

func (s *stubAuthenticator) AuthenticateClerk(context.Context, string, string) (*auth.Identity, error) {
	return nil, errs.NewUnauthorizedError("Unauthorized", false)
}

// newTestEcho mounts a protected /protected route guarded by roles.
func newTestEcho(roles ...user.Role) *echo.Echo {
	s := newTestServer()
	m := NewMiddlewares(s, &stubAuthenticator{tokens: map[string]*auth.Identity{
		"admin-token":  {AuthUserID: "auth-1", MasterUserID: 1, Role: user.RoleAdmin},
		"member-token": {AuthUserID: "auth-2", MasterUserID: 2, Role: user.RoleMember},
	}})

	e := echo.New()
	e.HTTPErrorHandler = m.Global.GlobalErrorHandler
	e.Use(RequestID(), m.ContextEnhancer.EnhanceContext())

	handler := func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"userId": GetUserID(c),
			"role":   GetIdentity(c).Role,
		})
	}
	if len(roles) > 0 {
		e.GET("/protected", handler, m.Auth.RequireAuth, m.Auth.RequireRole(roles...))
	} else {
		e.GET("/protected", handler, m.Auth.RequireAuth)
	}
	return e
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()
	var body errs.HTTPError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestRequireAuth(t *testing.T) {
	testCases := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"missing header", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, "INVALID_SESSION"},
		{"valid token", "Bearer member-token", http.StatusOK, ""},
		{"case-insensitive scheme", "bearer member-token", http.StatusOK, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			if tc.wantCode != "" {
				if body := decodeError(t, rec); body.Code != tc.wantCode {
					t.Errorf("expected code %s, got %s", tc.wantCode, body.Code)
				}
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	testCases := []struct {
		token      string
		wantStatus int
	}{
		{"admin-token", http.StatusOK},
		{"member-token", http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.token, func(t *testing.T) {
			e := newTestEcho(user.RoleAdmin, user.RoleManager)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+tc.token)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, GetRequestID(c)) }, RequestID())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(RequestIDHeader)
	if generated == "" || rec.Body.String() != generated {
		t.Errorf("expected generated id in header and context, got %q and %q", generated, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Header().Get(RequestIDHeader) != "upstream-id" {
		t.Errorf("incoming id not reused, got %q", rec.Header().Get(RequestIDHeader))
	}
}

func TestGlobalErrorHandler(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"http error", errs.NewBadRequestError("bad", true, errs.Code("INVALID_ASSIGNEES"), nil, nil), 400, "INVALID_ASSIGNEES"},
		{"wrapped http error", errors.Wrap(errs.NewForbiddenError("no", true), "context"), 403, "FORBIDDEN"},
		{"not found row", sqlerr.NotFound("tasks", pgx.ErrNoRows), 404, "NOT_FOUND"},
		{"echo 404", echo.ErrNotFound, 404, "NOT_FOUND"},
		{"echo 405", echo.ErrMethodNotAllowed, 405, "METHOD_NOT_ALLOWED"},
		{"unknown", errors.New("boom"), 500, "INTERNAL_SERVER_ERROR"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGlobalMiddlewares(newTestServer())
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			g.GlobalErrorHandler(tc.err, c)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
			body := decodeError(t, rec)
			if body.Code != tc.wantCode || body.Status != tc.wantStatus {
				t.Errorf("unexpected body %+v", body)
			}
			if tc.wantStatus == 500 && body.Message != http.StatusText(500) {
				t.Errorf("internal details leaked: %s", body.Message)
			}
		})
	}
}

func TestGlobalErrorHandler_NotFoundMessage(t *testing.T) {
	g := NewGlobalMiddlewares(newTestServer())
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	g.GlobalErrorHandler(sqlerr.NotFound("task_categories", pgx.ErrNoRows), c)

	if body := decodeError(t, rec); body.Message != "Task Category not found" {
		t.Errorf("unexpected message %q", body.Message)
	}
}

func TestRateLimit(t *testing.T) {
	r := NewRateLimitMiddleware(newTestServer())
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(newTestServer()).GlobalErrorHandler
	e.POST("/sign-in", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, r.Limit("auth", 0.001, 2))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/sign-in", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/sign-in", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("second client throttled: %d", rec.Code)
	}
}

func TestLoggerFallbacks(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if GetLogger(c) == nil || LoggerFromContext(context.Background()) == nil {
		t.Fatal("expected no-op loggers")
	}
	if GetIdentity(c) != nil || GetUserID(c) != "" {
		t.Error("expected empty identity")
	}

	setIdentity(c, &auth.Identity{AuthUserID: "auth-1", Role: user.RoleViewer})
	if GetUserID(c) != "auth-1" || c.Get(UserRoleKey) != "viewer" {
		t.Error("identity keys not set")
	}
	if LoggerFromContext(c.Request().Context()) != GetLogger(c) {
		t.Error("request context logger differs from echo context logger")
	}
}
