package health

import (
	"context"
	"fmt"
	"time"
)

// Status represents the health status of a component.
type Status int

const (
	// StatusHealthy indicates the component is functioning normally.
	StatusHealthy Status = iota
	// StatusDegraded indicates the component works with reduced quality.
	StatusDegraded
	// StatusUnhealthy indicates the component cannot serve requests.
	StatusUnhealthy
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Result contains the outcome of a health check.
type Result struct {
	Status   Status
	Message  string
	Duration time.Duration
	Error    error
}

// Healthy creates a healthy result.
func Healthy(message string) Result {
	return Result{Status: StatusHealthy, Message: message}
}

// Degraded creates a degraded result.
func Degraded(message string) Result {
	return Result{Status: StatusDegraded, Message: message}
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string, err error) Result {
	return Result{Status: StatusUnhealthy, Message: message, Error: err}
}

// Checker reports the health of one component.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc creates a new CheckerFunc.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

func (f *CheckerFunc) Name() string { return f.name }

func (f *CheckerFunc) Check(ctx context.Context) Result { return f.fn(ctx) }

// Pinger is implemented by account stores.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewPingChecker reports unhealthy while p.Ping fails.
func NewPingChecker(name string, p Pinger) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		if err := p.Ping(ctx); err != nil {
			return Unhealthy("ping failed", err)
		}
		return Healthy("reachable")
	})
}

// RoundTripper signs and verifies a probe value. The token checker
// uses it to prove the signing key is loaded and usable.
type RoundTripper interface {
	RoundTrip(ctx context.Context) error
}

// RoundTripFunc adapts a function to RoundTripper.
type RoundTripFunc func(ctx context.Context) error

func (f RoundTripFunc) RoundTrip(ctx context.Context) error { return f(ctx) }

// NewSigningKeyChecker reports unhealthy while a probe token cannot be
// issued and verified.
func NewSigningKeyChecker(name string, rt RoundTripper) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		if err := rt.RoundTrip(ctx); err != nil {
			return Unhealthy("signing key unusable", fmt.Errorf("%s: %w", name, err))
		}
		return Healthy("signing key loaded")
	})
}
