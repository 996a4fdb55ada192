package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonwraymond/catalogd/token"
)

// MethodJWT identifies principals authenticated by JWTAuthenticator.
const MethodJWT = "jwt"

// TokenVerifier verifies a session token and returns its claims.
// *token.Service satisfies it.
type TokenVerifier interface {
	Verify(ctx context.Context, tokenString string) (token.Claims, error)
}

// JWTConfig configures the JWT authenticator.
type JWTConfig struct {
	// HeaderName is the header containing the token.
	// Default: "Authorization"
	HeaderName string

	// Scheme is the authorization scheme preceding the token, matched
	// case-insensitively.
	// Default: "Bearer"
	Scheme string
}

// JWTAuthenticator authenticates bearer session tokens.
type JWTAuthenticator struct {
	config   JWTConfig
	verifier TokenVerifier
}

// NewJWTAuthenticator creates a new JWT authenticator.
func NewJWTAuthenticator(config JWTConfig, verifier TokenVerifier) *JWTAuthenticator {
	if config.HeaderName == "" {
		config.HeaderName = "Authorization"
	}
	if config.Scheme == "" {
		config.Scheme = "Bearer"
	}
	return &JWTAuthenticator{config: config, verifier: verifier}
}

// Name returns "jwt".
func (a *JWTAuthenticator) Name() string { return MethodJWT }

// Supports returns true if the request carries a bearer token.
func (a *JWTAuthenticator) Supports(_ context.Context, req *AuthRequest) bool {
	_, ok := a.extract(req)
	return ok
}

// Authenticate extracts and verifies the bearer token. A missing header,
// another scheme or an empty token fails with ErrMissingCredentials
// without touching the verifier; a token that fails verification fails
// with ErrInvalidCredentials wrapping the verifier's error.
func (a *JWTAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	raw, ok := a.extract(req)
	if !ok {
		return AuthFailure(ErrMissingCredentials, MethodJWT), nil
	}

	claims, err := a.verifier.Verify(ctx, raw)
	if err != nil {
		return AuthFailure(fmt.Errorf("%w: %w", ErrInvalidCredentials, err), MethodJWT), nil
	}

	role, err := ParseRole(claims.Role)
	if err != nil {
		return AuthFailure(fmt.Errorf("%w: %w", ErrInvalidCredentials, err), MethodJWT), nil
	}

	return AuthSuccess(&Principal{
		SubjectID:  claims.SubjectID,
		Identifier: claims.Identifier,
		Role:       role,
		Method:     MethodJWT,
		IssuedAt:   claims.IssuedAt,
		ExpiresAt:  claims.ExpiresAt,
	}), nil
}

// extract returns the token from "<Scheme> <token>".
func (a *JWTAuthenticator) extract(req *AuthRequest) (string, bool) {
	parts := strings.Fields(req.GetHeader(a.config.HeaderName))
	if len(parts) != 2 || !strings.EqualFold(parts[0], a.config.Scheme) {
		return "", false
	}
	return parts[1], true
}

var _ Authenticator = (*JWTAuthenticator)(nil)
