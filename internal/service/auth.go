package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkuser "github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/panjilaras/Dashboard-PI/internal/config"
	"github.com/panjilaras/Dashboard-PI/internal/errs"
	"github.com/panjilaras/Dashboard-PI/internal/lib/job"
	"github.com/panjilaras/Dashboard-PI/internal/lib/utils"
	"github.com/panjilaras/Dashboard-PI/internal/model"
	"github.com/panjilaras/Dashboard-PI/internal/model/auth"
	"github.com/panjilaras/Dashboard-PI/internal/model/user"
	"github.com/panjilaras/Dashboard-PI/internal/server"
	"golang.org/x/crypto/bcrypt"
)

const (
	resetIdentifierPrefix = "reset-password:"
	resetTokenBytes       = 32
)

// ClerkUserFetcher loads a Clerk user by id. It is clerkuser.Get in
// production.
type ClerkUserFetcher func(ctx context.Context, id string) (*clerk.User, error)

// SessionMeta describes the client a session is issued to.
type SessionMeta struct {
	IPAddress string
	UserAgent string
}

type AuthService struct {
	server     *server.Server
	auth       AuthStore
	users      UserStore
	jobs       Enqueuer
	cache      Cache
	fetchClerk ClerkUserFetcher
	now        func() time.Time
}

func NewAuthService(s *server.Server, authStore AuthStore, users UserStore, jobs Enqueuer, cache Cache) *AuthService {
	if s.Config.Auth.Provider == config.AuthProviderClerk {
		clerk.SetKey(s.Config.Auth.ClerkSecretKey)
	}

	return &AuthService{
		server:     s,
		auth:       authStore,
		users:      users,
		jobs:       jobs,
		cache:      cache,
		fetchClerk: clerkuser.Get,
		now:        time.Now,
	}
}

var (
	errInvalidCredentials = errs.NewUnauthorizedCodeError("Invalid email or password", "INVALID_CREDENTIALS")
	errInvalidSession     = errs.NewUnauthorizedCodeError("Session is invalid or has expired", "INVALID_SESSION")
	errAccountInactive    = errs.NewUnauthorizedCodeError("This account has been deactivated", "ACCOUNT_INACTIVE")
	errAuthUserNotFound   = errs.NewNotFoundError("Auth user not found", true, errs.Code("AUTH_USER_NOT_FOUND"))
	errInvalidResetToken  = errs.NewBadRequestError("Reset link is invalid or has expired", true, errs.Code("INVALID_RESET_TOKEN"), nil, nil)
)

// ------------------------------------------------------------ credentials

// SignUp creates the auth user with its credential account and links it to
// the master user of the same email, creating that row as an active member
// when needed. An existing master row keeps its role.
func (s *AuthService) SignUp(ctx context.Context, p *auth.SignUpPayload) (*auth.CurrentUser, error) {
	_, err := s.auth.GetUserByEmail(ctx, p.Email)
	switch {
	case err == nil:
		return nil, errs.NewBadRequestError("An account with this email already exists", true,
			errs.Code("AUTH_USER_ALREADY_EXISTS"), []errs.FieldError{{Field: "email", Error: "already registered"}}, nil)
	case !isNotFound(err):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	master, err := s.users.UpsertByEmail(ctx, p.Name, p.Email, nil, nil)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)

	authUser, err := s.auth.CreateCredentialUser(ctx, &auth.User{
		ID:    uuid.NewString(),
		Name:  p.Name,
		Email: p.Email,
		Role:  master.Role,
	}, string(hash))
	if err != nil {
		return nil, err
	}

	enqueue(ctx, s.jobs, s.server.Logger, func() (*asynq.Task, error) {
		return job.NewWelcomeEmailTask(authUser.Email, authUser.Name)
	})

	s.server.Logger.Info().Str("auth_user_id", authUser.ID).Int64("user_id", master.ID).Msg("user signed up")

	return mergeCurrentUser(authUser, master), nil
}

func (s *AuthService) SignIn(ctx context.Context, p *auth.SignInPayload, meta SessionMeta) (*auth.SignInResponse, error) {
	authUser, err := s.auth.GetUserByEmail(ctx, p.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	account, err := s.auth.GetCredentialAccount(ctx, authUser.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if account.Password == nil || bcrypt.CompareHashAndPassword([]byte(*account.Password), []byte(p.Password)) != nil {
		return nil, errInvalidCredentials
	}

	master, err := s.masterFor(ctx, authUser)
	if err != nil {
		return nil, err
	}
	if master != nil && !master.IsActive() {
		return nil, errAccountInactive
	}

	ttl := s.server.Config.Auth.SessionTTL
	if p.RememberMe {
		ttl = s.server.Config.Auth.RememberMeTTL
	}

	token, expiresAt, err := s.issueSession(ctx, authUser.ID, ttl, meta)
	if err != nil {
		return nil, err
	}

	return &auth.SignInResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *mergeCurrentUser(authUser, master),
	}, nil
}

// issueSession stores a session row and returns its signed token. The
// token's jti is the session id and only its hash is persisted.
func (s *AuthService) issueSession(ctx context.Context, userID string, ttl time.Duration, meta SessionMeta) (string, time.Time, error) {
	now := s.now()
	sessionID := uuid.NewString()
	expiresAt := now.Add(ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    config.ServiceName,
		Subject:   userID,
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.server.Config.Auth.SecretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	session := &auth.Session{
		ID:        sessionID,
		UserID:    userID,
		TokenHash: utils.HashToken(token),
		ExpiresAt: expiresAt,
		IPAddress: optional(meta.IPAddress),
		UserAgent: optional(meta.UserAgent),
	}
	if err := s.auth.CreateSession(ctx, session); err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *AuthService) SignOut(ctx context.Context, identity *auth.Identity) error {
	if identity == nil || identity.SessionID == "" {
		return nil
	}
	return s.auth.DeleteSession(ctx, identity.SessionID)
}

// ------------------------------------------------------------ authentication

// AuthenticateSession validates a session token: signature and expiry of
// the JWT, then the session row it names, which must exist, be unexpired
// and match the token hash.
func (s *AuthService) AuthenticateSession(ctx context.Context, token string) (*auth.Identity, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return []byte(s.server.Config.Auth.SecretKey), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || claims.ID == "" {
		return nil, errInvalidSession
	}

	session, err := s.auth.GetSession(ctx, claims.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, errInvalidSession
		}
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(session.TokenHash), []byte(utils.HashToken(token))) != 1 ||
		session.UserID != claims.Subject {
		return nil, errInvalidSession
	}

	if session.Expired(s.now()) {
		if err := s.auth.DeleteSession(ctx, session.ID); err != nil {
			s.server.Logger.Warn().Err(err).Str("session_id", session.ID).Msg("failed to delete expired session")
		}
		return nil, errInvalidSession
	}

	authUser, err := s.auth.GetUserByID(ctx, session.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, errInvalidSession
		}
		return nil, err
	}

	identity, err := s.identityFor(ctx, authUser)
	if err != nil {
		return nil, err
	}
	identity.SessionID = session.ID
	return identity, nil
}

// AuthenticateClerk resolves a verified Clerk subject. Subjects that have
// never been seen are pulled from the Clerk API and shadowed in auth_users.
func (s *AuthService) AuthenticateClerk(ctx context.Context, subject, sessionID string) (*auth.Identity, error) {
	authUser, err := s.auth.GetUserByID(ctx, subject)
	if isNotFound(err) {
		authUser, err = s.syncClerkUser(ctx, subject)
	}
	if err != nil {
		return nil, err
	}

	identity, err := s.identityFor(ctx, authUser)
	if err != nil {
		return nil, err
	}
	identity.SessionID = sessionID
	return identity, nil
}

func (s *AuthService) syncClerkUser(ctx context.Context, id string) (*auth.User, error) {
	cu, err := s.fetchClerk(ctx, id)
	if err != nil {
		s.server.Logger.Error().Err(err).Str("clerk_user_id", id).Msg("failed to fetch clerk user")
		return nil, errInvalidSession
	}

	email, verified := primaryEmail(cu)
	if email == "" {
		return nil, errs.NewUnauthorizedCodeError("Clerk user has no email address", "INVALID_SESSION")
	}

	role := user.RoleMember
	if master, err := s.users.GetByEmail(ctx, email); err == nil {
		role = master.Role
	}

	return s.auth.UpsertUser(ctx, &auth.User{
		ID:            cu.ID,
		Name:          clerkDisplayName(cu, email),
		Email:         email,
		EmailVerified: verified,
		Image:         cu.ImageURL,
		Role:          role,
	})
}

func primaryEmail(cu *clerk.User) (string, bool) {
	for _, e := range cu.EmailAddresses {
		if e == nil {
			continue
		}
		if cu.PrimaryEmailAddressID == nil || e.ID == *cu.PrimaryEmailAddressID {
			verified := e.Verification != nil && e.Verification.Status == "verified"
			return user.NormalizeEmail(e.EmailAddress), verified
		}
	}
	return "", false
}

func clerkDisplayName(cu *clerk.User, email string) string {
	var parts []string
	if cu.FirstName != nil && *cu.FirstName != "" {
		parts = append(parts, *cu.FirstName)
	}
	if cu.LastName != nil && *cu.LastName != "" {
		parts = append(parts, *cu.LastName)
	}
	if len(parts) == 0 {
		name, _, _ := strings.Cut(email, "@")
		return name
	}
	return strings.Join(parts, " ")
}

// masterFor returns the master user with the auth user's email, or nil.
func (s *AuthService) masterFor(ctx context.Context, authUser *auth.User) (*user.User, error) {
	master, err := s.users.GetByEmail(ctx, authUser.Email)
	if isNotFound(err) {
		return nil, nil
	}
	return master, err
}

// identityFor takes the role from the master row, which is authoritative,
// falling back to the auth user's role until that row exists.
func (s *AuthService) identityFor(ctx context.Context, authUser *auth.User) (*auth.Identity, error) {
	identity := &auth.Identity{
		AuthUserID: authUser.ID,
		Email:      authUser.Email,
		Role:       authUser.Role,
	}

	master, err := s.masterFor(ctx, authUser)
	if err != nil {
		return nil, err
	}
	if master != nil {
		if !master.IsActive() {
			return nil, errAccountInactive
		}
		identity.MasterUserID = master.ID
		identity.Role = master.Role
	}
	return identity, nil
}

// ------------------------------------------------------------ profile

// CurrentUser merges the auth user with its master row, creating the master
// row on first access.
func (s *AuthService) CurrentUser(ctx context.Context, identity *auth.Identity) (*auth.CurrentUser, error) {
	authUser, err := s.auth.GetUserByID(ctx, identity.AuthUserID)
	if err != nil {
		if isNotFound(err) {
			return nil, errAuthUserNotFound
		}
		return nil, err
	}

	master, err := s.masterFor(ctx, authUser)
	if err != nil {
		return nil, err
	}

	if master == nil {
		role := authUser.Role
		master, err = s.users.UpsertByEmail(ctx, authUser.Name, authUser.Email, &role, authUser.Image)
		if err != nil {
			return nil, err
		}
		s.cache.Invalidate(ctx)
		s.server.Logger.Info().Str("auth_user_id", authUser.ID).Int64("user_id", master.ID).Msg("created master user for auth user")
	}

	return mergeCurrentUser(authUser, master), nil
}

func mergeCurrentUser(authUser *auth.User, master *user.User) *auth.CurrentUser {
	cu := &auth.CurrentUser{
		ID:        authUser.ID,
		Email:     authUser.Email,
		Name:      authUser.Name,
		Role:      authUser.Role,
		Status:    user.StatusActive,
		AvatarURL: authUser.Image,
	}
	if master != nil {
		cu.UserID = master.ID
		cu.Role = master.Role
		cu.Status = master.Status
		cu.Position = master.Position
		if master.AvatarURL != nil {
			cu.AvatarURL = master.AvatarURL
		}
	}
	return cu
}

// SyncRole copies a role onto the auth user with the given email.
func (s *AuthService) SyncRole(ctx context.Context, p *auth.SyncRolePayload) (*auth.SyncRoleResponse, error) {
	u, err := s.auth.UpdateUserRole(ctx, p.Email, p.Role)
	if err != nil {
		if isNotFound(err) {
			return nil, errAuthUserNotFound
		}
		return nil, err
	}
	return &auth.SyncRoleResponse{Success: true, User: *u}, nil
}

// ------------------------------------------------------------ password reset

const forgotPasswordMessage = "If an account exists for this email, a reset link has been sent."

// ForgotPassword always answers the same way so it cannot be used to probe
// for registered emails.
func (s *AuthService) ForgotPassword(ctx context.Context, p *auth.ForgotPasswordPayload) (*model.MessageResponse, error) {
	response := &model.MessageResponse{Message: forgotPasswordMessage}

	authUser, err := s.auth.GetUserByEmail(ctx, p.Email)
	if err != nil {
		if isNotFound(err) {
			s.server.Logger.Info().Msg("password reset requested for unknown email")
			return response, nil
		}
		return nil, err
	}

	token, err := utils.RandomToken(resetTokenBytes)
	if err != nil {
		return nil, err
	}

	ttl := s.server.Config.Auth.ResetTokenTTL
	err = s.auth.ReplaceVerification(ctx, &auth.Verification{
		ID:         uuid.NewString(),
		Identifier: resetIdentifierPrefix + authUser.Email,
		Value:      utils.HashToken(token),
		ExpiresAt:  s.now().Add(ttl),
	})
	if err != nil {
		return nil, err
	}

	enqueue(ctx, s.jobs, s.server.Logger, func() (*asynq.Task, error) {
		return job.NewPasswordResetEmailTask(authUser.Email, authUser.Name, token, humanizeTTL(ttl))
	})

	return response, nil
}

// ResetPassword consumes a reset token and sets a new password, creating
// the credential account for users that never had one. Existing sessions
// are revoked.
func (s *AuthService) ResetPassword(ctx context.Context, p *auth.ResetPasswordPayload) (*model.MessageResponse, error) {
	identifier := resetIdentifierPrefix + p.Email

	v, err := s.auth.GetVerification(ctx, identifier)
	if err != nil {
		if isNotFound(err) {
			return nil, errInvalidResetToken
		}
		return nil, err
	}

	if !s.now().Before(v.ExpiresAt) ||
		subtle.ConstantTimeCompare([]byte(v.Value), []byte(utils.HashToken(p.Token))) != 1 {
		return nil, errInvalidResetToken
	}

	authUser, err := s.auth.GetUserByEmail(ctx, p.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, errInvalidResetToken
		}
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.auth.SetPassword(ctx, authUser.ID, string(hash)); err != nil {
		return nil, err
	}

	if err := s.auth.DeleteVerifications(ctx, identifier); err != nil {
		s.server.Logger.Warn().Err(err).Msg("failed to delete used reset token")
	}

	s.server.Logger.Info().Str("auth_user_id", authUser.ID).Msg("password reset")
	return &model.MessageResponse{Message: "Password has been reset. Please sign in with your new password."}, nil
}

func humanizeTTL(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%d minutes", int(d/time.Minute))
}

// ------------------------------------------------------------ maintenance

// HandleSessionCleanup is the asynq handler of the periodic session purge.
func (s *AuthService) HandleSessionCleanup(ctx context.Context, _ *asynq.Task) error {
	deleted, err := s.auth.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return err
	}
	s.server.Logger.Info().Int64("deleted", deleted).Msg("expired sessions purged")
	return nil
}
