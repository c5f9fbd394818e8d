// Package model holds the persisted entities and request payloads.
//
// Entities live in one sub-package per domain (user, task, category, auth)
// and embed Base for the shared identity and audit columns.
package model

import "time"

// Base carries the surrogate key and audit timestamps every master table has.
type Base struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Pagination limits shared by every list endpoint.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// ListWindow is the limit/offset pair used by list queries.
type ListWindow struct {
	Limit  *int `query:"limit" validate:"omitempty,min=1,max=1000"`
	Offset *int `query:"offset" validate:"omitempty,min=0"`
}

// Resolve returns the effective limit and offset.
func (w ListWindow) Resolve() (limit, offset int) {
	limit = DefaultListLimit
	if w.Limit != nil {
		limit = min(max(*w.Limit, 1), MaxListLimit)
	}
	if w.Offset != nil && *w.Offset > 0 {
		offset = *w.Offset
	}
	return limit, offset
}

// IDParam binds the ":id" path segment.
type IDParam struct {
	ID int64 `json:"-" param:"id" validate:"required,min=1"`
}

// MessageResponse is returned by endpoints that only acknowledge an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// EmptyPayload is bound by endpoints that take no input.
type EmptyPayload struct{}

func (p *EmptyPayload) Validate() error {
	return nil
}
