package token

import (
	"context"
	"fmt"
	"sync"
)

// KeyProvider retrieves HMAC signing keys.
type KeyProvider interface {
	// GetKey returns the key for the given key ID. An empty ID selects
	// the provider's default key.
	GetKey(ctx context.Context, keyID string) (any, error)
}

// StaticKeyProvider provides a single key regardless of key ID.
type StaticKeyProvider struct {
	key []byte
}

// NewStaticKeyProvider creates a static key provider.
func NewStaticKeyProvider(key []byte) *StaticKeyProvider {
	return &StaticKeyProvider{key: key}
}

// GetKey returns the static key.
func (p *StaticKeyProvider) GetKey(_ context.Context, _ string) (any, error) {
	return p.key, nil
}

// KeySet holds several keys by ID so a new signing key can be introduced
// while tokens signed with the previous one are still verified.
type KeySet struct {
	mu         sync.RWMutex
	keys       map[string][]byte
	defaultKID string
}

// NewKeySet creates a KeySet whose default key is defaultKID.
func NewKeySet(defaultKID string, keys map[string][]byte) *KeySet {
	ks := &KeySet{keys: make(map[string][]byte, len(keys)), defaultKID: defaultKID}
	for kid, k := range keys {
		ks.keys[kid] = k
	}
	return ks
}

// Add registers or replaces a key.
func (ks *KeySet) Add(kid string, key []byte) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.keys[kid] = key
}

// GetKey returns the key for keyID, or the default key when keyID is empty.
func (ks *KeySet) GetKey(_ context.Context, keyID string) (any, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	if keyID == "" {
		keyID = ks.defaultKID
	}
	k, ok := ks.keys[keyID]
	if !ok {
		return nil, fmt.Errorf("%w: kid %q", ErrKeyNotFound, keyID)
	}
	return k, nil
}

var (
	_ KeyProvider = (*StaticKeyProvider)(nil)
	_ KeyProvider = (*KeySet)(nil)
)
