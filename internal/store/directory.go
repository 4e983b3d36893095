// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/notevault/notevault/internal/keys"
)

// identityDirectory adapts an [IdentityRepository] to the [keys.Directory]
// interface so the service layer can resolve wrap/unwrap keys without
// knowing about the persistence schema.
type identityDirectory struct {
	identities IdentityRepository
}

// NewIdentityDirectory returns a [keys.Directory] that resolves key pairs
// from the identities table.
func NewIdentityDirectory(identities IdentityRepository) keys.Directory {
	return &identityDirectory{identities: identities}
}

// PublicKey implements [keys.Directory].
func (d *identityDirectory) PublicKey(ctx context.Context, identityID string) (*rsa.PublicKey, error) {
	identity, err := d.identities.GetIdentity(ctx, identityID)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, keys.ErrUnknownIdentity
		}
		return nil, err
	}

	pub, err := keys.ParsePublic(identity.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("identity %s: %w", identityID, err)
	}

	return pub, nil
}

// PrivateKey implements [keys.Directory].
func (d *identityDirectory) PrivateKey(ctx context.Context, identityID string) (*rsa.PrivateKey, error) {
	identity, err := d.identities.GetIdentity(ctx, identityID)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, keys.ErrUnknownIdentity
		}
		return nil, err
	}

	priv, err := keys.ParsePrivate(identity.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("identity %s: %w", identityID, err)
	}

	return priv, nil
}
