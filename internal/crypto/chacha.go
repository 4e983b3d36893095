package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/notevault/notevault/models"
)

// chachaCipher is an alternative [SymmetricCipher] built on
// XChaCha20-Poly1305. The 24-byte nonce makes random nonces safe at any
// volume. Selected via CRYPTO_CIPHER=chacha20poly1305.
type chachaCipher struct{}

// NewChaChaCipher constructs the XChaCha20-Poly1305 [SymmetricCipher].
func NewChaChaCipher() SymmetricCipher {
	return &chachaCipher{}
}

func (c *chachaCipher) GenerateKey() ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate note key: %w", err)
	}
	return key, nil
}

func (c *chachaCipher) Encrypt(plaintext, key []byte) (models.CipherBundle, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return models.CipherBundle{}, fmt.Errorf("create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return models.CipherBundle{}, fmt.Errorf("generate nonce: %w", err)
	}

	return sealBundle(aead, nonce, plaintext), nil
}

func (c *chachaCipher) Decrypt(bundle models.CipherBundle, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	return openBundle(aead, bundle)
}
