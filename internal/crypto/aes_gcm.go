// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/notevault/notevault/models"
)

const keySize = 32 // 256 bits

// aesGCMCipher is the default [SymmetricCipher]: AES-256-GCM with a random
// 12-byte nonce per encryption. The GCM tag is split off the sealed output
// so the bundle stores IV, tag and ciphertext as separate segments.
type aesGCMCipher struct{}

// NewAESGCMCipher constructs the AES-256-GCM [SymmetricCipher].
func NewAESGCMCipher() SymmetricCipher {
	return &aesGCMCipher{}
}

// GenerateKey implements [SymmetricCipher]. It reads 32 random bytes from
// the OS CSPRNG. Returns an error if the random read fails.
func (c *aesGCMCipher) GenerateKey() ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate note key: %w", err)
	}
	return key, nil
}

// Encrypt implements [SymmetricCipher].
func (c *aesGCMCipher) Encrypt(plaintext, key []byte) (models.CipherBundle, error) {
	aead, err := newGCM(key)
	if err != nil {
		return models.CipherBundle{}, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return models.CipherBundle{}, fmt.Errorf("generate nonce: %w", err)
	}

	return sealBundle(aead, nonce, plaintext), nil
}

// Decrypt implements [SymmetricCipher]. The auth tag is verified before any
// plaintext is returned; tag mismatch and malformed bundles both surface as
// [ErrIntegrity].
func (c *aesGCMCipher) Decrypt(bundle models.CipherBundle, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	return openBundle(aead, bundle)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return aead, nil
}

// sealBundle runs aead.Seal and splits the trailing tag into its own
// segment: sealed = ciphertext ‖ tag.
func sealBundle(aead cipher.AEAD, nonce, plaintext []byte) models.CipherBundle {
	sealed := aead.Seal(nil, nonce, plaintext, nil)
	split := len(sealed) - aead.Overhead()

	return models.CipherBundle{
		IV:         nonce,
		AuthTag:    sealed[split:],
		Ciphertext: sealed[:split],
	}
}

// openBundle validates the bundle segments, reassembles ciphertext ‖ tag and
// opens it. All failures surface as [ErrIntegrity].
func openBundle(aead cipher.AEAD, bundle models.CipherBundle) ([]byte, error) {
	if len(bundle.IV) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: bad iv length %d", ErrIntegrity, len(bundle.IV))
	}
	if len(bundle.AuthTag) != aead.Overhead() {
		return nil, fmt.Errorf("%w: bad auth tag length %d", ErrIntegrity, len(bundle.AuthTag))
	}

	sealed := make([]byte, 0, len(bundle.Ciphertext)+len(bundle.AuthTag))
	sealed = append(sealed, bundle.Ciphertext...)
	sealed = append(sealed, bundle.AuthTag...)

	plaintext, err := aead.Open(nil, bundle.IV, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIntegrity, err)
	}

	return plaintext, nil
}

// Zero overwrites b in place. Raw note keys exist only transiently during a
// single request; callers zero them as soon as the seal/open sequence ends.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
