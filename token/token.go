// Package token issues and verifies stateless HS256 session tokens.
//
// A session token carries the account id, identifier and role. Nothing is
// persisted: a token is valid exactly when its signature checks out against
// the server key and its expiry has not passed.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid covers bad signatures, wrong keys, disallowed
	// algorithms, malformed encodings and missing claims.
	ErrTokenInvalid = errors.New("token: invalid")

	// ErrTokenExpired indicates the token's expiry has passed.
	ErrTokenExpired = errors.New("token: expired")

	ErrInvalidTTL  = errors.New("token: ttl must be positive")
	ErrEmptyKey    = errors.New("token: signing key is empty")
	ErrKeyNotFound = errors.New("token: signing key not found")
	ErrEmptyClaims = errors.New("token: identifier and role are required")
)

// Claims is the decoded content of a session token.
type Claims struct {
	SubjectID  int64
	Identifier string
	Role       string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// sessionClaims is the wire form.
type sessionClaims struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies session tokens.
//
// Contract:
// - Concurrency: safe for concurrent use; holds no mutable state.
// - Errors: Verify returns errors matching ErrTokenInvalid or ErrTokenExpired.
type Service struct {
	keys   KeyProvider
	ttl    time.Duration
	keyID  string
	issuer string
	leeway time.Duration
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithKeyID stamps issued tokens with a kid header and uses it to look up
// the signing key.
func WithKeyID(kid string) Option {
	return func(s *Service) { s.keyID = kid }
}

// WithIssuer sets the iss claim on issued tokens and requires it on
// verification.
func WithIssuer(iss string) Option {
	return func(s *Service) { s.issuer = iss }
}

// WithLeeway tolerates clock skew when checking exp and iat.
func WithLeeway(d time.Duration) Option {
	return func(s *Service) { s.leeway = d }
}

// New creates a Service. The signing key is resolved once so a missing
// key fails at startup rather than on the first signin.
func New(keys KeyProvider, ttl time.Duration, opts ...Option) (*Service, error) {
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	s := &Service{
		keys: keys,
		ttl:  ttl,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := s.hmacKey(context.Background(), s.keyID); err != nil {
		return nil, err
	}
	return s, nil
}

// TTL returns the lifetime of issued tokens.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue signs a token for c. IssuedAt and ExpiresAt are stamped from the
// service clock; the stamped claims are returned alongside the token.
func (s *Service) Issue(ctx context.Context, c Claims) (string, Claims, error) {
	if c.Identifier == "" || c.Role == "" {
		return "", Claims{}, ErrEmptyClaims
	}

	key, err := s.hmacKey(ctx, s.keyID)
	if err != nil {
		return "", Claims{}, err
	}

	now := s.now().Truncate(time.Second)
	c.IssuedAt = now
	c.ExpiresAt = now.Add(s.ttl)

	claims := sessionClaims{
		ID:    c.SubjectID,
		Email: c.Identifier,
		Role:  c.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", c.SubjectID),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	if s.keyID != "" {
		t.Header["kid"] = s.keyID
	}
	signed, err := t.SignedString(key)
	if err != nil {
		return "", Claims{}, fmt.Errorf("token: sign: %w", err)
	}
	return signed, c, nil
}

// Verify checks the token's signature and expiry and returns its claims.
func (s *Service) Verify(ctx context.Context, tokenString string) (Claims, error) {
	if tokenString == "" {
		return Claims{}, ErrTokenInvalid
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(s.leeway),
	}
	if s.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.issuer))
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return s.hmacKey(ctx, kid)
	}, parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return Claims{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if claims.ID == 0 || claims.Email == "" || claims.Role == "" {
		return Claims{}, fmt.Errorf("%w: missing session claims", ErrTokenInvalid)
	}

	return Claims{
		SubjectID:  claims.ID,
		Identifier: claims.Email,
		Role:       claims.Role,
		IssuedAt:   claims.IssuedAt.Time,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}

func (s *Service) hmacKey(ctx context.Context, kid string) ([]byte, error) {
	if s.keys == nil {
		return nil, ErrKeyNotFound
	}
	raw, err := s.keys.GetKey(ctx, kid)
	if err != nil {
		return nil, err
	}
	key, ok := raw.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: want []byte, got %T", ErrKeyNotFound, raw)
	}
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	return key, nil
}

// Probe issues and verifies a throwaway token, proving the signing key
// is loaded and usable.
func (s *Service) Probe(ctx context.Context) error {
	signed, _, err := s.Issue(ctx, Claims{SubjectID: -1, Identifier: "probe", Role: "probe"})
	if err != nil {
		return err
	}
	_, err = s.Verify(ctx, signed)
	return err
}
