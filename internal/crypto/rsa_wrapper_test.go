package crypto

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
)

func testKeyPair(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey error: %v", err)
	}
	return priv
}

func TestWrapUnwrap_RoundTrip(t *testing.T) {
	w := NewRSAKeyWrapper()
	priv := testKeyPair(t)

	key := bytes.Repeat([]byte{0x42}, 32)

	wrapped, err := w.Wrap(key, &priv.PublicKey)
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	if bytes.Contains(wrapped, key) {
		t.Fatalf("wrapped blob leaks raw key bytes")
	}

	got, err := w.Unwrap(wrapped, priv)
	if err != nil {
		t.Fatalf("Unwrap error: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Fatalf("unwrapped key mismatch: got %x, want %x", got, key)
	}
}

// TestUnwrap_WrongPrivateKey verifies that unwrapping with another identity's
// private key fails loudly with ErrKeyUnwrap instead of yielding garbage.
func TestUnwrap_WrongPrivateKey(t *testing.T) {
	w := NewRSAKeyWrapper()
	alice := testKeyPair(t)
	mallory := testKeyPair(t)

	key := bytes.Repeat([]byte{0x17}, 32)

	wrapped, err := w.Wrap(key, &alice.PublicKey)
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}

	if _, err := w.Unwrap(wrapped, mallory); !errors.Is(err, ErrKeyUnwrap) {
		t.Fatalf("wrong key: error = %v, want ErrKeyUnwrap", err)
	}
}

func TestUnwrap_CorruptedBlob(t *testing.T) {
	w := NewRSAKeyWrapper()
	priv := testKeyPair(t)

	wrapped, err := w.Wrap(bytes.Repeat([]byte{0x01}, 32), &priv.PublicKey)
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}

	corrupted := flipBit(wrapped, 10)
	if _, err := w.Unwrap(corrupted, priv); !errors.Is(err, ErrKeyUnwrap) {
		t.Fatalf("corrupted blob: error = %v, want ErrKeyUnwrap", err)
	}
}

// TestWrap_KeyTooLarge pins the OAEP payload limit: 190 bytes for a
// 2048-bit modulus with SHA-256.
func TestWrap_KeyTooLarge(t *testing.T) {
	w := NewRSAKeyWrapper()
	priv := testKeyPair(t)

	atLimit := make([]byte, 190)
	if _, err := w.Wrap(atLimit, &priv.PublicKey); err != nil {
		t.Fatalf("190-byte payload should fit: %v", err)
	}

	overLimit := make([]byte, 191)
	if _, err := w.Wrap(overLimit, &priv.PublicKey); !errors.Is(err, ErrKeyTooLarge) {
		t.Fatalf("191-byte payload: error = %v, want ErrKeyTooLarge", err)
	}
}
