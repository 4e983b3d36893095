package keys

//go:generate mockgen -source=directory.go -destination=../mock/keys_directory_mock.go -package=mock

import (
	"context"
	"crypto/rsa"
	"errors"
	"sync"
)

// ErrUnknownIdentity is returned when a directory lookup finds no key
// material for the requested identity.
var ErrUnknownIdentity = errors.New("unknown identity")

// Directory resolves the key pair of an identity at request time.
//
// Private keys are server-custodied: the server decrypts on the user's
// behalf during listing and search. The production implementation is the
// identity repository in internal/store.
type Directory interface {
	// PublicKey returns the identity's wrap key.
	PublicKey(ctx context.Context, identityID string) (*rsa.PublicKey, error)

	// PrivateKey returns the identity's unwrap key.
	PrivateKey(ctx context.Context, identityID string) (*rsa.PrivateKey, error)
}

// MemoryDirectory is an in-memory [Directory] used by tests and by the
// embedded sqlite deployment before any identities are persisted.
type MemoryDirectory struct {
	mu    sync.RWMutex
	pairs map[string]KeyPair
}

// NewMemoryDirectory constructs an empty [MemoryDirectory].
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{pairs: make(map[string]KeyPair)}
}

// Register stores the key pair for an identity, replacing any previous one.
func (d *MemoryDirectory) Register(identityID string, pair KeyPair) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pairs[identityID] = pair
}

// PublicKey implements [Directory].
func (d *MemoryDirectory) PublicKey(_ context.Context, identityID string) (*rsa.PublicKey, error) {
	d.mu.RLock()
	pair, ok := d.pairs[identityID]
	d.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownIdentity
	}

	return ParsePublic(pair.Public)
}

// PrivateKey implements [Directory].
func (d *MemoryDirectory) PrivateKey(_ context.Context, identityID string) (*rsa.PrivateKey, error) {
	d.mu.RLock()
	pair, ok := d.pairs[identityID]
	d.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownIdentity
	}

	return ParsePrivate(pair.Private)
}
