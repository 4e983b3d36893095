package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/crypto_mock.go -package=mock

import (
	"crypto/rsa"

	"github.com/notevault/notevault/models"
)

// SymmetricCipher performs authenticated encryption of note payloads under
// a per-note random key. Implementations must use a fresh IV on every
// Encrypt call; reusing an IV with the same key breaks AEAD security.
type SymmetricCipher interface {
	// GenerateKey returns a cryptographically secure random 256-bit key.
	// An error here means the OS CSPRNG failed and is fatal.
	GenerateKey() ([]byte, error)

	// Encrypt seals plaintext under key and returns the bundle segments
	// (IV, auth tag, ciphertext) separately.
	Encrypt(plaintext, key []byte) (models.CipherBundle, error)

	// Decrypt verifies the bundle's auth tag before returning plaintext.
	// Returns an error matching [ErrIntegrity] on tag mismatch or a
	// malformed bundle.
	Decrypt(bundle models.CipherBundle, key []byte) ([]byte, error)
}

// KeyWrapper encrypts a symmetric note key for exactly one recipient.
// Each recipient of a note gets an independently wrapped copy of the same
// raw key.
type KeyWrapper interface {
	// Wrap encrypts key under the recipient's public key. Returns an
	// error matching [ErrKeyTooLarge] if the key does not fit the
	// scheme's maximum payload.
	Wrap(key []byte, recipientPublic *rsa.PublicKey) ([]byte, error)

	// Unwrap recovers the raw key using the recipient's private key.
	// Returns an error matching [ErrKeyUnwrap] on wrong key or corrupted
	// input, never a silent garbage key.
	Unwrap(wrapped []byte, recipientPrivate *rsa.PrivateKey) ([]byte, error)
}

// SealedNote is the output of [EnvelopeCodec.SealForCreation].
// Key carries the raw symmetric key transiently so the caller can echo the
// plaintext back to the creator without a decrypt round-trip; the caller
// must Zero it as soon as it is no longer needed.
type SealedNote struct {
	Bundle          models.CipherBundle
	OwnerWrappedKey []byte
	Key             []byte
}

// EnvelopeCodec composes a SymmetricCipher with a KeyWrapper into
// note-level seal/open operations.
type EnvelopeCodec interface {
	// SealForCreation generates a fresh note key, encrypts payload with
	// it and wraps the key for the owner.
	SealForCreation(payload models.NotePayload, ownerPublic *rsa.PublicKey) (SealedNote, error)

	// OpenFor unwraps wrappedKey with private, then decrypts bundle.
	// Failures keep their kind: [ErrKeyUnwrap] for unwrap failures,
	// [ErrIntegrity] for tag or payload decoding failures. Callers must
	// propagate the typed error, never substitute empty content silently.
	OpenFor(bundle models.CipherBundle, wrappedKey []byte, private *rsa.PrivateKey) (models.NotePayload, error)

	// UnwrapKey recovers the raw note key for a caller that needs to
	// re-seal or wrap for a new recipient. The caller must Zero the key
	// after use.
	UnwrapKey(wrapped []byte, private *rsa.PrivateKey) ([]byte, error)

	// ReSeal re-encrypts newPayload under the same raw key with a fresh
	// IV and auth tag. The note key is never rotated here.
	ReSeal(key []byte, newPayload models.NotePayload) (models.CipherBundle, error)

	// AddRecipientWrap wraps the raw note key for one more recipient and
	// returns the share entry to append to the note.
	AddRecipientWrap(key []byte, recipientID string, recipientPublic *rsa.PublicKey, permission models.Permission) (models.ShareEntry, error)
}
