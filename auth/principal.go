package auth

import (
	"fmt"
	"time"
)

// Role is an account's authorization role.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// DefaultRole is assigned to newly created accounts.
const DefaultRole = RoleViewer

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleEditor, RoleViewer}
}

// ParseRole validates s as a known role.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return r, nil
	default:
		return "", fmt.Errorf("auth: unknown role %q", s)
	}
}

// Principal is the verified caller attached to a request context.
type Principal struct {
	SubjectID  int64
	Identifier string
	Role       Role

	// Method indicates how the principal was authenticated.
	Method string

	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasRole reports whether the principal holds role.
func (p *Principal) HasRole(role Role) bool {
	return p != nil && p.Role == role
}
