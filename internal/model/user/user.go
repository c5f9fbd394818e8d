package user

import (
	"strings"

	"github.com/panjilaras/Dashboard-PI/internal/model"
	"github.com/panjilaras/Dashboard-PI/internal/validation"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
	RoleViewer  Role = "viewer"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// User is a row of the master users table. It is the source of truth for
// roles and status; the auth tables only shadow it.
type User struct {
	model.Base
	Name      string  `json:"name" db:"name"`
	Email     string  `json:"email" db:"email"`
	Role      Role    `json:"role" db:"role"`
	Status    Status  `json:"status" db:"status"`
	Position  *string `json:"position" db:"position"`
	JoinDate  *string `json:"joinDate" db:"join_date"`
	AvatarURL *string `json:"avatarUrl" db:"avatar_url"`
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// NormalizeEmail lower-cases and trims an address before it is stored or
// compared.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ------------------------------------------------------------

type ListUsersQuery struct {
	model.ListWindow
	Search string `query:"search" validate:"omitempty,max=255"`
	Role   string `query:"role" validate:"omitempty,oneof=admin manager member viewer"`
	Status string `query:"status" validate:"omitempty,oneof=active inactive"`
}

func (q *ListUsersQuery) Validate() error {
	return validation.Struct(q)
}

// ------------------------------------------------------------

type GetUserPayload struct {
	model.IDParam
}

func (p *GetUserPayload) Validate() error {
	return validation.Struct(p)
}

// ------------------------------------------------------------

type CreateUserPayload struct {
	Name      string  `json:"name" validate:"required,min=1,max=255"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	Role      *Role   `json:"role" validate:"omitempty,oneof=admin manager member viewer"`
	Status    *Status `json:"status" validate:"omitempty,oneof=active inactive"`
	Position  *string `json:"position" validate:"omitempty,max=255"`
	JoinDate  *string `json:"joinDate" validate:"omitempty,datetime=2006-01-02"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
}

func (p *CreateUserPayload) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = NormalizeEmail(p.Email)
	return validation.Struct(p)
}

// ------------------------------------------------------------

type UpdateUserPayload struct {
	model.IDParam
	Name      *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	Role      *Role   `json:"role" validate:"omitempty,oneof=admin manager member viewer"`
	Status    *Status `json:"status" validate:"omitempty,oneof=active inactive"`
	Position  *string `json:"position" validate:"omitempty,max=255"`
	JoinDate  *string `json:"joinDate" validate:"omitempty,datetime=2006-01-02"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
}

func (p *UpdateUserPayload) Validate() error {
	if p.Name != nil {
		trimmed := strings.TrimSpace(*p.Name)
		p.Name = &trimmed
	}
	if p.Email != nil {
		normalized := NormalizeEmail(*p.Email)
		p.Email = &normalized
	}
	return validation.Struct(p)
}

// ------------------------------------------------------------

type DeleteUserPayload struct {
	model.IDParam
}

func (p *DeleteUserPayload) Validate() error {
	return validation.Struct(p)
}

// ------------------------------------------------------------

// SyncUserPayload upserts a master user from an auth identity.
type SyncUserPayload struct {
	ID    string  `json:"id"`
	Name  string  `json:"name" validate:"required,max=255"`
	Email string  `json:"email" validate:"required,email"`
	Role  *Role   `json:"role" validate:"omitempty,oneof=admin manager member viewer"`
	Image *string `json:"image" validate:"omitempty,url"`
}

func (p *SyncUserPayload) Validate() error {
	p.Email = NormalizeEmail(p.Email)
	return validation.Struct(p)
}

// ------------------------------------------------------------

type SetDefaultPasswordPayload struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"omitempty,max=255"`
	Role  *Role  `json:"role" validate:"omitempty,oneof=admin manager member viewer"`
}

func (p *SetDefaultPasswordPayload) Validate() error {
	p.Email = NormalizeEmail(p.Email)
	return validation.Struct(p)
}

type SetDefaultPasswordResponse struct {
	Email           string `json:"email"`
	DefaultPassword string `json:"defaultPassword"`
	Message         string `json:"message"`
}
