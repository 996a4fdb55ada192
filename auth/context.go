package auth

import (
	"context"
)

type contextKey int

const (
	principalKey contextKey = iota
)

// WithPrincipal returns a new context with the given principal attached.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the principal from the context.
// Returns nil if no principal is present.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}

// IdentifierFromContext returns the principal's identifier, or "".
func IdentifierFromContext(ctx context.Context) string {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.Identifier
	}
	return ""
}

// SubjectIDFromContext returns the principal's account id, or 0.
func SubjectIDFromContext(ctx context.Context) int64 {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.SubjectID
	}
	return 0
}

// RoleFromContext returns the principal's role, or "".
func RoleFromContext(ctx context.Context) Role {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.Role
	}
	return ""
}
