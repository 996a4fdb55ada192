package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/jonwraymond/catalogd/auth"
	"github.com/jonwraymond/catalogd/observe"
	"github.com/jonwraymond/catalogd/token"
)

// Hasher hashes and verifies secrets. *credential.Hasher satisfies it.
type Hasher interface {
	Hash(ctx context.Context, secret string) ([]byte, error)
	Verify(ctx context.Context, secret string, hash []byte) bool
	VerifyNothing(ctx context.Context, secret string) bool
}

// Issuer issues session tokens. *token.Service satisfies it.
type Issuer interface {
	Issue(ctx context.Context, c token.Claims) (string, token.Claims, error)
}

// SignInResult is returned by a successful signin.
type SignInResult struct {
	AccessToken string
	ExpiresAt   time.Time
	Account     Account
}

type credentials struct {
	identifier string
	secret     string
}

// Service registers accounts and exchanges credentials for session tokens.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: SignUp returns ErrDuplicateIdentifier, ErrInvalidInput or
//   ErrStoreFailure; SignIn returns auth.ErrInvalidCredentials for any
//   unknown identifier or wrong secret, and ErrStoreFailure otherwise.
type Service struct {
	store       Store
	hasher      Hasher
	tokens      Issuer
	defaultRole auth.Role
	now         func() time.Time

	signUp observe.ExecuteFunc
	signIn observe.ExecuteFunc
}

// Option configures a Service.
type Option func(*Service)

// WithMiddleware records signups and signins with mw.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(s *Service) {
		s.signUp = mw.Wrap(s.doSignUp)
		s.signIn = mw.Wrap(s.doSignIn)
	}
}

// WithDefaultRole sets the role given to new accounts.
func WithDefaultRole(r auth.Role) Option {
	return func(s *Service) { s.defaultRole = r }
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service.
func NewService(store Store, hasher Hasher, tokens Issuer, opts ...Option) *Service {
	s := &Service{
		store:       store,
		hasher:      hasher,
		tokens:      tokens,
		defaultRole: auth.DefaultRole,
		now:         time.Now,
	}
	nop := observe.NopMiddleware()
	s.signUp = nop.Wrap(s.doSignUp)
	s.signIn = nop.Wrap(s.doSignIn)

	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	signUpOp = observe.OperationMeta{Resource: "account", Name: "signup"}
	signInOp = observe.OperationMeta{Resource: "account", Name: "signin"}
)

// SignUp registers a new account with the default role.
func (s *Service) SignUp(ctx context.Context, identifier, secret string) (Account, error) {
	out, err := s.signUp(ctx, signUpOp, credentials{identifier: identifier, secret: secret})
	if err != nil {
		return Account{}, err
	}
	return out.(Account), nil
}

// SignIn verifies credentials and issues a session token.
func (s *Service) SignIn(ctx context.Context, identifier, secret string) (SignInResult, error) {
	out, err := s.signIn(ctx, signInOp, credentials{identifier: identifier, secret: secret})
	if err != nil {
		return SignInResult{}, err
	}
	return out.(SignInResult), nil
}

func (s *Service) doSignUp(ctx context.Context, _ observe.OperationMeta, input any) (any, error) {
	in := input.(credentials)
	identifier := NormalizeIdentifier(in.identifier)
	if err := validateIdentifier(identifier); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, in.secret)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	created, err := s.store.Create(ctx, Account{
		Identifier:   identifier,
		PasswordHash: hash,
		Role:         s.defaultRole,
		CreatedAt:    s.now().UTC(),
	})
	switch {
	case errors.Is(err, ErrDuplicateIdentifier):
		return nil, ErrDuplicateIdentifier
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return created, nil
}

func (s *Service) doSignIn(ctx context.Context, _ observe.OperationMeta, input any) (any, error) {
	in := input.(credentials)
	identifier := NormalizeIdentifier(in.identifier)

	acct, err := s.store.FindByIdentifier(ctx, identifier)
	switch {
	case errors.Is(err, ErrNotFound):
		s.hasher.VerifyNothing(ctx, in.secret)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, auth.ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	if !s.hasher.Verify(ctx, in.secret, acct.PasswordHash) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, auth.ErrInvalidCredentials
	}

	signed, claims, err := s.tokens.Issue(ctx, token.Claims{
		SubjectID:  acct.ID,
		Identifier: acct.Identifier,
		Role:       string(acct.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("account: issue token: %w", err)
	}

	return SignInResult{AccessToken: signed, ExpiresAt: claims.ExpiresAt, Account: acct}, nil
}

func validateIdentifier(identifier string) error {
	if identifier == "" {
		return fmt.Errorf("%w: identifier is empty", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(identifier)
	if err != nil || addr.Address != identifier {
		return fmt.Errorf("%w: identifier is not an email address", ErrInvalidInput)
	}
	return nil
}
