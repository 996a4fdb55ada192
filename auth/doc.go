// Package auth decides whether a caller may invoke a protected operation.
//
// A decision runs in four steps: the JWTAuthenticator extracts and verifies
// the bearer token, the operation's effective role requirement is resolved
// from its group and operation declarations, the RoleAuthorizer compares
// the principal's role against it, and on success the Principal is
// attached to the request context.
//
// Role requirements use override semantics. A requirement declared on an
// operation replaces the one declared on its group, even when the
// operation's set is empty; an undeclared operation inherits the group's
// requirement; when neither declares one, any authenticated principal may
// proceed.
//
// Failures are reported as ErrMissingCredentials, ErrInvalidCredentials or
// ErrInsufficientPermissions. The package is transport-agnostic.
package auth
