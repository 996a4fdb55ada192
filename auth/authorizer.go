package auth

import (
	"context"
	"fmt"
)

// Authorizer determines if a principal may invoke an operation.
type Authorizer interface {
	// Authorize returns nil if permitted, or an error (typically
	// *AuthzError) if denied.
	Authorize(ctx context.Context, req *AuthzRequest) error

	// Name returns a unique identifier for this authorizer.
	Name() string
}

// AuthzRequest contains the information needed for authorization.
type AuthzRequest struct {
	// Subject is the principal making the request.
	Subject *Principal

	// Resource and Operation name the target.
	Resource  string
	Operation string

	// Required is the operation's effective role requirement.
	Required Requirement
}

// AuthzError represents an authorization failure.
type AuthzError struct {
	Subject   string
	Role      Role
	Resource  string
	Operation string
	Reason    string
	Cause     error
}

func (e *AuthzError) Error() string {
	return fmt.Sprintf("authorization denied: subject=%q role=%q resource=%q operation=%q reason=%q",
		e.Subject, e.Role, e.Resource, e.Operation, e.Reason)
}

// Unwrap returns the cause error for errors.Is/As support.
func (e *AuthzError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target.
func (e *AuthzError) Is(target error) bool {
	return target == ErrInsufficientPermissions
}
