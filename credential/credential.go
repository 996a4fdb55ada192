// Package credential hashes and verifies account secrets with bcrypt.
//
// bcrypt is CPU-bound, so a Hasher bounds how many
// hash or compare operations run at once. Waiting for a slot honours
// context cancellation; the bound never changes the outcome of a check.
package credential

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// MaxSecretBytes is the longest secret bcrypt will accept.
const MaxSecretBytes = 72

var (
	ErrEmptySecret   = errors.New("credential: secret is empty")
	ErrSecretTooLong = errors.New("credential: secret exceeds 72 bytes")
	ErrInvalidCost   = errors.New("credential: bcrypt cost out of range")
)

// Hasher produces and checks bcrypt hashes.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: Hash and Verify honour cancellation while waiting for a slot.
type Hasher struct {
	cost  int
	slots int64
	sem   *semaphore.Weighted

	// dummy is a hash of random bytes at cost, compared by VerifyNothing.
	dummy []byte
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithCost sets the bcrypt work factor. Zero selects bcrypt.DefaultCost.
func WithCost(cost int) Option {
	return func(h *Hasher) { h.cost = cost }
}

// WithConcurrency sets how many bcrypt operations may run at once.
// Values below one select runtime.GOMAXPROCS(0).
func WithConcurrency(n int64) Option {
	return func(h *Hasher) { h.slots = n }
}

// New creates a Hasher.
func New(opts ...Option) (*Hasher, error) {
	h := &Hasher{}
	for _, opt := range opts {
		opt(h)
	}

	if h.cost == 0 {
		h.cost = bcrypt.DefaultCost
	}
	if err := ValidateCost(h.cost); err != nil {
		return nil, err
	}
	if h.slots < 1 {
		h.slots = int64(runtime.GOMAXPROCS(0))
	}
	h.sem = semaphore.NewWeighted(h.slots)

	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("credential: seed dummy hash: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword(seed, h.cost)
	if err != nil {
		return nil, fmt.Errorf("credential: dummy hash: %w", err)
	}
	h.dummy = dummy
	return h, nil
}

// ValidateCost reports whether cost is usable. Zero means "default" and
// is accepted.
func ValidateCost(cost int) error {
	if cost == 0 {
		return nil
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidCost, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

// Cost returns the configured work factor.
func (h *Hasher) Cost() int { return h.cost }

// Hash returns a salted bcrypt hash of secret. Two calls with the same
// secret return different hashes.
func (h *Hasher) Hash(ctx context.Context, secret string) ([]byte, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if len(secret) > MaxSecretBytes {
		return nil, ErrSecretTooLong
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer h.sem.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return nil, fmt.Errorf("credential: hash: %w", err)
	}
	return hash, nil
}

// Verify reports whether secret matches hash. A wrong secret, a malformed
// hash or a cancelled context all yield false.
func (h *Hasher) Verify(ctx context.Context, secret string, hash []byte) bool {
	if len(hash) == 0 {
		return false
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword(hash, []byte(secret)) == nil
}

// VerifyNothing spends the same work as a Verify against a real hash and
// always returns false. Callers use it when the account being checked
// does not exist, so that response time does not reveal that fact.
func (h *Hasher) VerifyNothing(ctx context.Context, secret string) bool {
	_ = h.Verify(ctx, secret, h.dummy)
	return false
}
