package crypto

import "errors"

// Sentinel errors returned by the crypto package. Callers use [errors.Is]
// to classify failures; the distinction between them is part of the service
// contract and must survive wrapping.
var (
	// ErrIntegrity is returned when authenticated decryption fails: the
	// authentication tag does not verify (tampered ciphertext or wrong
	// key) or the cipher bundle is malformed (missing or short segments).
	// It is never recoverable by retrying; the caller must re-fetch or
	// re-share.
	ErrIntegrity = errors.New("ciphertext integrity check failed")

	// ErrKeyUnwrap is returned when asymmetric unwrap of a note key fails,
	// either because the private key does not match the wrapped blob or
	// the blob is corrupted. Distinct from "not shared with you".
	ErrKeyUnwrap = errors.New("key unwrap failed")

	// ErrKeyTooLarge is returned when a symmetric key exceeds the maximum
	// payload of the asymmetric wrapping scheme. The fix is a larger
	// modulus or a KEM, never truncation.
	ErrKeyTooLarge = errors.New("key exceeds asymmetric wrap capacity")
)
