// Package directory is the read-only store of users, roles, and permissions.
// Accounts are administered elsewhere; this core only loads them.
package directory

import (
	"errors"
	"time"
)

// ErrNotFound indicates that the requested account does not exist.
var ErrNotFound = errors.New("directory: not found")

// Permission represents an atomic capability.
type Permission struct {
	ID          int64
	Name        string
	Description string
}

// Role groups permissions. Every user has exactly one role, and the role's
// permission set is the sole source of the user's capabilities.
type Role struct {
	ID          int64
	Name        string
	Description string
	Permissions []Permission
}

// User represents an account as the authorization core sees it.
type User struct {
	ID           int64
	Email        string
	Name         string
	BranchID     *int64
	PasswordHash string
	IsActive     bool
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PermissionNames returns the user's capability names via its role.
func (u *User) PermissionNames() []string {
	names := make([]string, len(u.Role.Permissions))
	for i, p := range u.Role.Permissions {
		names[i] = p.Name
	}
	return names
}
