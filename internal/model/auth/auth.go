// Package auth holds the authentication provider tables (auth_users,
// auth_sessions, auth_accounts, auth_verifications) and the payloads of the
// /api/auth endpoints.
package auth

import (
	"strings"
	"time"

	"github.com/panjilaras/Dashboard-PI/internal/model/user"
	"github.com/panjilaras/Dashboard-PI/internal/validation"
)

// CredentialProvider is the provider id of email/password accounts.
const CredentialProvider = "credential"

// User is the auth identity. Its ID is a UUID for credential sign-ups or
// the Clerk subject when Clerk is the provider.
type User struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Email         string    `json:"email" db:"email"`
	EmailVerified bool      `json:"emailVerified" db:"email_verified"`
	Image         *string   `json:"image" db:"image"`
	Role          user.Role `json:"role" db:"role"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// Session stores the SHA-256 of the issued token, never the token itself.
type Session struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	IPAddress *string   `db:"ip_address"`
	UserAgent *string   `db:"user_agent"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type Account struct {
	ID         string    `db:"id"`
	AccountID  string    `db:"account_id"`
	ProviderID string    `db:"provider_id"`
	UserID     string    `db:"user_id"`
	Password   *string   `db:"password"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Verification is a one-time token, e.g. for password resets. Value holds
// the token hash.
type Verification struct {
	ID         string    `db:"id"`
	Identifier string    `db:"identifier"`
	Value      string    `db:"value"`
	ExpiresAt  time.Time `db:"expires_at"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Identity is what the auth middleware stores on the request: the auth user
// id plus the role and status read from the master users table.
type Identity struct {
	AuthUserID   string
	Email        string
	MasterUserID int64
	Role         user.Role
	SessionID    string
}

// CurrentUser merges the auth identity with its master user row.
type CurrentUser struct {
	ID        string      `json:"id"`
	UserID    int64       `json:"userId"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      user.Role   `json:"role"`
	Status    user.Status `json:"status"`
	AvatarURL *string     `json:"avatarUrl"`
	Position  *string     `json:"position"`
}

// ------------------------------------------------------------

type SignUpPayload struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,password"`
}

func (p *SignUpPayload) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = user.NormalizeEmail(p.Email)
	return validation.Struct(p)
}

// ------------------------------------------------------------

type SignInPayload struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

func (p *SignInPayload) Validate() error {
	p.Email = user.NormalizeEmail(p.Email)
	return validation.Struct(p)
}

type SignInResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      CurrentUser `json:"user"`
}

// ------------------------------------------------------------

type SyncRolePayload struct {
	Email string    `json:"email" validate:"required,email"`
	Role  user.Role `json:"role" validate:"required,oneof=admin manager member viewer"`
}

func (p *SyncRolePayload) Validate() error {
	p.Email = user.NormalizeEmail(p.Email)
	return validation.Struct(p)
}

type SyncRoleResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

// ------------------------------------------------------------

type ForgotPasswordPayload struct {
	Email string `json:"email" validate:"required,email"`
}

func (p *ForgotPasswordPayload) Validate() error {
	p.Email = user.NormalizeEmail(p.Email)
	return validation.Struct(p)
}

// ------------------------------------------------------------

type ResetPasswordPayload struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,password"`
}

func (p *ResetPasswordPayload) Validate() error {
	p.Email = user.NormalizeEmail(p.Email)
	return validation.Struct(p)
}
