// Package account implements signup and signin on top of a persistent
// account store, the credential hasher and the token service.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jonwraymond/catalogd/auth"
)

var (
	// ErrDuplicateIdentifier indicates an account with the identifier exists.
	ErrDuplicateIdentifier = errors.New("account: identifier already registered")

	// ErrStoreFailure wraps any store error other than a uniqueness
	// violation or a missing account.
	ErrStoreFailure = errors.New("account: store failure")

	// ErrInvalidInput indicates a malformed identifier or secret on signup.
	ErrInvalidInput = errors.New("account: invalid input")

	// ErrNotFound is returned by stores when no account matches.
	ErrNotFound = errors.New("account: not found")
)

// Account is a registered user.
type Account struct {
	ID           int64
	Identifier   string
	PasswordHash []byte
	Role         auth.Role
	CreatedAt    time.Time
}

// Store persists accounts. Identifiers are unique.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: FindByIdentifier returns ErrNotFound when no account matches;
//   Create returns ErrDuplicateIdentifier on a uniqueness violation.
type Store interface {
	FindByIdentifier(ctx context.Context, identifier string) (Account, error)
	Create(ctx context.Context, a Account) (Account, error)
}

// NormalizeIdentifier trims surrounding space and lower-cases an identifier.
func NormalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// Reason extends auth.Reason with account outcomes.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateIdentifier):
		return "duplicate_identifier"
	case errors.Is(err, ErrStoreFailure):
		return "store_failure"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return auth.Reason(err)
	}
}
