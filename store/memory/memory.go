// Package memory provides an in-process account.Store for development and
// tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/jonwraymond/catalogd/account"
)

// Store is an in-memory account store.
type Store struct {
	mu     sync.RWMutex
	byID   map[int64]account.Account
	byName map[string]int64
	nextID int64
}

// New creates an empty store.
func New() *Store {
	return &Store{
		byID:   make(map[int64]account.Account),
		byName: make(map[string]int64),
	}
}

// FindByIdentifier returns the account registered under identifier.
func (s *Store) FindByIdentifier(_ context.Context, identifier string) (account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[identifier]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return clone(s.byID[id]), nil
}

// Create stores a with a fresh id. The identifier must be unused.
func (s *Store) Create(ctx context.Context, a account.Account) (account.Account, error) {
	if err := ctx.Err(); err != nil {
		return account.Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[a.Identifier]; exists {
		return account.Account{}, account.ErrDuplicateIdentifier
	}

	s.nextID++
	a.ID = s.nextID
	a = clone(a)
	s.byID[a.ID] = a
	s.byName[a.Identifier] = a.ID
	return clone(a), nil
}

// Ping reports the store as always reachable.
func (s *Store) Ping(context.Context) error { return nil }

// Len returns the number of stored accounts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func clone(a account.Account) account.Account {
	a.PasswordHash = slices.Clone(a.PasswordHash)
	return a
}

var _ account.Store = (*Store)(nil)
