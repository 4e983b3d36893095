// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
)

// rsaKeyWrapper is the RSA-OAEP (SHA-256) implementation of [KeyWrapper].
// With a 2048-bit modulus the maximum wrappable payload is 190 bytes, which
// comfortably fits a 32-byte note key. A key that does not fit is a design
// error surfaced as [ErrKeyTooLarge], never truncated.
type rsaKeyWrapper struct{}

// NewRSAKeyWrapper constructs the RSA-OAEP [KeyWrapper].
func NewRSAKeyWrapper() KeyWrapper {
	return &rsaKeyWrapper{}
}

// Wrap implements [KeyWrapper].
func (w *rsaKeyWrapper) Wrap(key []byte, recipientPublic *rsa.PublicKey) ([]byte, error) {
	if max := oaepMaxPayload(recipientPublic); len(key) > max {
		return nil, fmt.Errorf("%w: %d bytes, scheme maximum %d", ErrKeyTooLarge, len(key), max)
	}

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, recipientPublic, key, nil)
	if err != nil {
		return nil, fmt.Errorf("wrap note key: %w", err)
	}

	return wrapped, nil
}

// Unwrap implements [KeyWrapper]. A wrong private key and a corrupted blob
// are indistinguishable by construction; both surface as [ErrKeyUnwrap].
func (w *rsaKeyWrapper) Unwrap(wrapped []byte, recipientPrivate *rsa.PrivateKey) ([]byte, error) {
	key, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, recipientPrivate, wrapped, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyUnwrap, err)
	}

	return key, nil
}

// oaepMaxPayload returns k - 2*hLen - 2 for the recipient's modulus,
// the OAEP plaintext limit (190 bytes for RSA-2048 with SHA-256).
func oaepMaxPayload(pub *rsa.PublicKey) int {
	return pub.Size() - 2*sha256.Size - 2
}
