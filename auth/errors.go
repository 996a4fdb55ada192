package auth

import (
	"errors"

	"github.com/jonwraymond/catalogd/token"
)

// Sentinel errors for authentication and authorization.
var (
	// Authentication errors
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// Authorization errors
	ErrInsufficientPermissions = errors.New("auth: insufficient permissions")
)

// Reason labels used in telemetry.
const (
	ReasonOK                      = "ok"
	ReasonMissingCredentials      = "missing_credentials"
	ReasonTokenExpired            = "token_expired"
	ReasonTokenInvalid            = "token_invalid"
	ReasonInvalidCredentials      = "invalid_credentials"
	ReasonInsufficientPermissions = "insufficient_permissions"
	ReasonError                   = "error"
)

// Reason classifies a guard outcome into a low-cardinality label. It
// distinguishes expired from otherwise invalid tokens, which callers of
// the guard never see.
func Reason(err error) string {
	switch {
	case err == nil:
		return ReasonOK
	case errors.Is(err, ErrMissingCredentials):
		return ReasonMissingCredentials
	case errors.Is(err, token.ErrTokenExpired):
		return ReasonTokenExpired
	case errors.Is(err, token.ErrTokenInvalid):
		return ReasonTokenInvalid
	case errors.Is(err, ErrInvalidCredentials):
		return ReasonInvalidCredentials
	case errors.Is(err, ErrInsufficientPermissions):
		return ReasonInsufficientPermissions
	default:
		return ReasonError
	}
}
