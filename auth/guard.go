package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/catalogd/observe"
)

// ErrNilOperation indicates Check was called without an operation.
var ErrNilOperation = errors.New("auth: operation is nil")

// Guard runs authentication and authorization for one operation.
//
// Contract:
// - Concurrency: safe for concurrent use; holds no per-request state.
// - Errors: Check returns errors matching exactly one of
//   ErrMissingCredentials, ErrInvalidCredentials or ErrInsufficientPermissions.
type Guard struct {
	authn Authenticator
	authz Authorizer
	check observe.ExecuteFunc
}

// GuardOption configures a Guard.
type GuardOption func(*guardOptions)

type guardOptions struct {
	mw *observe.Middleware
}

// WithMiddleware records every check with mw.
func WithMiddleware(mw *observe.Middleware) GuardOption {
	return func(o *guardOptions) { o.mw = mw }
}

// NewGuard creates a Guard.
func NewGuard(authn Authenticator, authz Authorizer, opts ...GuardOption) *Guard {
	var o guardOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.mw == nil {
		o.mw = observe.NopMiddleware()
	}

	g := &Guard{authn: authn, authz: authz}
	g.check = o.mw.Wrap(g.run)
	return g
}

// Check authenticates req and authorizes the principal for op. On
// success it returns the principal; the caller attaches it with
// WithPrincipal.
func (g *Guard) Check(ctx context.Context, req *AuthRequest, op *Operation) (*Principal, error) {
	if op == nil {
		return nil, ErrNilOperation
	}

	meta := observe.OperationMeta{Resource: op.Resource(), Name: op.Name()}
	if req != nil {
		meta.Method = req.Method
		meta.Route = req.Route
	}

	out, err := g.check(ctx, meta, guardInput{req: req, op: op})
	if err != nil {
		return nil, err
	}
	return out.(*Principal), nil
}

type guardInput struct {
	req *AuthRequest
	op  *Operation
}

func (g *Guard) run(ctx context.Context, _ observe.OperationMeta, input any) (any, error) {
	in := input.(guardInput)

	result, err := g.authn.Authenticate(ctx, in.req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	if !result.Authenticated {
		if result.Error == nil {
			return nil, ErrInvalidCredentials
		}
		return nil, result.Error
	}

	if err := g.authz.Authorize(ctx, &AuthzRequest{
		Subject:   result.Principal,
		Resource:  in.op.Resource(),
		Operation: in.op.Name(),
		Required:  in.op.RequiredRoles(),
	}); err != nil {
		if errors.Is(err, ErrInsufficientPermissions) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInsufficientPermissions, err)
	}

	return result.Principal, nil
}
