package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/labstack/echo/v4"
	"github.com/panjilaras/Dashboard-PI/internal/config"
	"github.com/panjilaras/Dashboard-PI/internal/errs"
	"github.com/panjilaras/Dashboard-PI/internal/model/auth"
	"github.com/panjilaras/Dashboard-PI/internal/model/user"
	"github.com/panjilaras/Dashboard-PI/internal/server"
)

// Authenticator resolves a verified credential into an identity.
type Authenticator interface {
	AuthenticateSession(ctx context.Context, token string) (*auth.Identity, error)
	AuthenticateClerk(ctx context.Context, subject, sessionID string) (*auth.Identity, error)
}

var errMissingToken = errs.NewUnauthorizedCodeError("Authentication required", "MISSING_TOKEN")

type AuthMiddleware struct {
	server        *server.Server
	authenticator Authenticator
}

func NewAuthMiddleware(s *server.Server, authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{
		server:        s,
		authenticator: authenticator,
	}
}

// RequireAuth authenticates the request with the configured provider and
// stores the identity on the context.
//
// With the "session" provider the Authorization header must carry a bearer
// session token. With "clerk" the Clerk SDK verifies the header first and
// the subject is then mapped to a local identity.
func (am *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	if am.server.Config.Auth.Provider == config.AuthProviderClerk {
		return am.requireClerk(next)
	}
	return am.requireSession(next)
}

func (am *AuthMiddleware) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return errMissingToken
		}

		identity, err := am.authenticator.AuthenticateSession(c.Request().Context(), token)
		if err != nil {
			return err
		}

		setIdentity(c, identity)
		GetLogger(c).Debug().Str("function", "RequireAuth").Msg("user authenticated")
		return next(c)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func (am *AuthMiddleware) requireClerk(next echo.HandlerFunc) echo.HandlerFunc {
	return echo.WrapMiddleware(
		clerkhttp.WithHeaderAuthorization(
			clerkhttp.AuthorizationFailureHandler(http.HandlerFunc(am.writeClerkFailure)),
		),
	)(func(c echo.Context) error {
		claims, ok := clerk.SessionClaimsFromContext(c.Request().Context())
		if !ok {
			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		identity, err := am.authenticator.AuthenticateClerk(c.Request().Context(), claims.Subject, claims.SessionID)
		if err != nil {
			return err
		}

		setIdentity(c, identity)
		return next(c)
	})
}

// writeClerkFailure runs outside Echo, so it writes the standard error body
// itself.
func (am *AuthMiddleware) writeClerkFailure(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w.WriteHeader(http.StatusUnauthorized)

	if err := json.NewEncoder(w).Encode(errs.NewUnauthorizedError("Unauthorized", false)); err != nil {
		am.server.Logger.Error().Err(err).Str("function", "RequireAuth").Msg("failed to write JSON response")
		return
	}
	am.server.Logger.Warn().Str("path", r.URL.Path).Msg("clerk authorization failed")
}

// RequireRole rejects authenticated users whose role is not listed.
// It must run after RequireAuth.
func (am *AuthMiddleware) RequireRole(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := GetIdentity(c)
			if identity == nil {
				return errMissingToken
			}
			if !slices.Contains(roles, identity.Role) {
				GetLogger(c).Warn().Str("required", joinRoles(roles)).Msg("role not permitted")
				return errs.NewForbiddenError("You do not have permission to perform this action", true)
			}
			return next(c)
		}
	}
}

func joinRoles(roles []user.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ",")
}
