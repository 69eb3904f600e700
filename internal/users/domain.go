// Package users manages staff accounts, their roles and store assignments.
package users

import (
	"fmt"
	"strings"
	"time"

	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/rbac"
)

var (
	ErrUserNotFound      = fmt.Errorf("users: user not found: %w", httpx.ErrNotFound)
	ErrEmailTaken        = fmt.Errorf("users: email already registered: %w", httpx.ErrDuplicate)
	ErrUnknownRole       = fmt.Errorf("users: unknown role: %w", httpx.ErrValidation)
	ErrStoreRequired     = fmt.Errorf("users: role requires an assigned store: %w", httpx.ErrValidation)
	ErrStoreNotFound     = fmt.Errorf("users: assigned store does not exist: %w", httpx.ErrValidation)
	ErrUnknownPermission = fmt.Errorf("users: unknown permission: %w", httpx.ErrValidation)
	ErrSelfChange        = fmt.Errorf("users: cannot deactivate or delete your own account: %w", httpx.ErrConflict)
	ErrSelfAccessChange  = fmt.Errorf("users: cannot change your own role or permissions: %w", httpx.ErrForbidden)
	ErrPrivilegedTarget  = fmt.Errorf("users: only system managers may manage this account: %w", httpx.ErrForbidden)
	ErrPermissionGrant   = fmt.Errorf("users: cannot grant a permission you do not hold: %w", httpx.ErrForbidden)
	ErrWeakPassword      = fmt.Errorf("users: password does not meet the security policy: %w", httpx.ErrValidation)
	ErrWrongPassword     = fmt.Errorf("users: current password is incorrect: %w", httpx.ErrUnauthorized)
)

// User is a staff account.
type User struct {
	ID              string            `json:"id"`
	Email           string            `json:"email"`
	FullName        string            `json:"full_name"`
	Role            rbac.Role         `json:"role"`
	AssignedStoreID string            `json:"assigned_store_id,omitempty"`
	Permissions     []rbac.Permission `json:"permissions"`
	IsActive        bool              `json:"is_active"`
	PasswordHash    string            `json:"-"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Principal converts the account into the authorization view.
func (u User) Principal() *rbac.Principal {
	return &rbac.Principal{
		ID:              u.ID,
		Email:           u.Email,
		FullName:        u.FullName,
		Role:            u.Role,
		AssignedStoreID: u.AssignedStoreID,
		Permissions:     u.Permissions,
		Active:          u.IsActive,
	}
}

// CreateInput carries the fields of a new account.
type CreateInput struct {
	Email           string            `json:"email" validate:"required,email,max=255"`
	FullName        string            `json:"full_name" validate:"required,max=120"`
	Role            rbac.Role         `json:"role" validate:"required"`
	AssignedStoreID string            `json:"assigned_store_id"`
	Permissions     []rbac.Permission `json:"permissions"`
	Password        string            `json:"password" validate:"required,max=72"`
}

// UpdateInput carries a partial account update. Nil fields are left unchanged.
type UpdateInput struct {
	FullName        *string            `json:"full_name" validate:"omitempty,min=1,max=120"`
	Role            *rbac.Role         `json:"role"`
	AssignedStoreID *string            `json:"assigned_store_id"`
	Permissions     *[]rbac.Permission `json:"permissions"`
	IsActive        *bool              `json:"is_active"`
}

// ListFilter narrows account listings.
type ListFilter struct {
	Role       rbac.Role
	StoreID    string
	Search     string
	ActiveOnly bool
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
