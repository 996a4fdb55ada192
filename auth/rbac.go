package auth

import (
	"context"
)

// RoleAuthorizer admits a principal when its role satisfies the
// operation's effective requirement. Roles are flat: no role implies
// another.
type RoleAuthorizer struct{}

// NewRoleAuthorizer creates a RoleAuthorizer.
func NewRoleAuthorizer() *RoleAuthorizer {
	return &RoleAuthorizer{}
}

// Name returns "role".
func (a *RoleAuthorizer) Name() string {
	return "role"
}

// Authorize checks the subject's role against req.Required.
func (a *RoleAuthorizer) Authorize(_ context.Context, req *AuthzRequest) error {
	if req.Subject == nil {
		return &AuthzError{
			Resource:  req.Resource,
			Operation: req.Operation,
			Reason:    "no principal provided",
		}
	}

	if req.Required.Allows(req.Subject.Role) {
		return nil
	}

	return &AuthzError{
		Subject:   req.Subject.Identifier,
		Role:      req.Subject.Role,
		Resource:  req.Resource,
		Operation: req.Operation,
		Reason:    "role not in " + req.Required.String(),
	}
}

var _ Authorizer = (*RoleAuthorizer)(nil)
