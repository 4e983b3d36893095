package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/notevault/notevault/models"
)

func ciphersUnderTest() map[string]SymmetricCipher {
	return map[string]SymmetricCipher{
		"aes-gcm":            NewAESGCMCipher(),
		"xchacha20-poly1305": NewChaChaCipher(),
	}
}

func TestGenerateKey_LengthAndRandomness(t *testing.T) {
	for name, c := range ciphersUnderTest() {
		t.Run(name, func(t *testing.T) {
			k1, err := c.GenerateKey()
			if err != nil {
				t.Fatalf("GenerateKey error: %v", err)
			}
			k2, err := c.GenerateKey()
			if err != nil {
				t.Fatalf("GenerateKey error: %v", err)
			}

			if len(k1) != 32 {
				t.Fatalf("key length = %d, want 32", len(k1))
			}
			if bytes.Equal(k1, k2) {
				t.Fatalf("expected keys to differ, but they are equal")
			}
		})
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	for name, c := range ciphersUnderTest() {
		t.Run(name, func(t *testing.T) {
			key, err := c.GenerateKey()
			if err != nil {
				t.Fatalf("GenerateKey error: %v", err)
			}

			plaintext := []byte(`{"title":"groceries","content":"milk, eggs","format":"plain"}`)

			bundle, err := c.Encrypt(plaintext, key)
			if err != nil {
				t.Fatalf("Encrypt error: %v", err)
			}

			got, err := c.Decrypt(bundle, key)
			if err != nil {
				t.Fatalf("Decrypt error: %v", err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Fatalf("round trip mismatch: got %q, want %q", got, plaintext)
			}
		})
	}
}

func TestEncrypt_FreshIVPerCall(t *testing.T) {
	for name, c := range ciphersUnderTest() {
		t.Run(name, func(t *testing.T) {
			key, _ := c.GenerateKey()
			plaintext := []byte("same plaintext twice")

			b1, err := c.Encrypt(plaintext, key)
			if err != nil {
				t.Fatalf("Encrypt error: %v", err)
			}
			b2, err := c.Encrypt(plaintext, key)
			if err != nil {
				t.Fatalf("Encrypt error: %v", err)
			}

			if bytes.Equal(b1.IV, b2.IV) {
				t.Fatalf("expected fresh IV per encryption, got identical IVs")
			}
			if bytes.Equal(b1.Ciphertext, b2.Ciphertext) {
				t.Fatalf("expected differing ciphertexts for fresh IVs")
			}
		})
	}
}

// TestDecrypt_TamperDetection flips a single bit in every bundle segment and
// verifies that decryption fails with ErrIntegrity, never returning corrupted
// plaintext.
func TestDecrypt_TamperDetection(t *testing.T) {
	for name, c := range ciphersUnderTest() {
		t.Run(name, func(t *testing.T) {
			key, _ := c.GenerateKey()
			bundle, err := c.Encrypt([]byte("sensitive note body"), key)
			if err != nil {
				t.Fatalf("Encrypt error: %v", err)
			}

			tamper := map[string]func(models.CipherBundle) models.CipherBundle{
				"ciphertext": func(b models.CipherBundle) models.CipherBundle {
					b.Ciphertext = flipBit(b.Ciphertext, 0)
					return b
				},
				"auth_tag": func(b models.CipherBundle) models.CipherBundle {
					b.AuthTag = flipBit(b.AuthTag, 3)
					return b
				},
				"iv": func(b models.CipherBundle) models.CipherBundle {
					b.IV = flipBit(b.IV, 1)
					return b
				},
			}

			for segment, mutate := range tamper {
				got, decErr := c.Decrypt(mutate(bundle), key)
				if decErr == nil {
					t.Fatalf("tampered %s: expected error, got plaintext %q", segment, got)
				}
				if !errors.Is(decErr, ErrIntegrity) {
					t.Fatalf("tampered %s: error = %v, want ErrIntegrity", segment, decErr)
				}
			}
		})
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	for name, c := range ciphersUnderTest() {
		t.Run(name, func(t *testing.T) {
			key, _ := c.GenerateKey()
			otherKey, _ := c.GenerateKey()

			bundle, err := c.Encrypt([]byte("note"), key)
			if err != nil {
				t.Fatalf("Encrypt error: %v", err)
			}

			if _, err := c.Decrypt(bundle, otherKey); !errors.Is(err, ErrIntegrity) {
				t.Fatalf("wrong key: error = %v, want ErrIntegrity", err)
			}
		})
	}
}

func TestDecrypt_MalformedBundle(t *testing.T) {
	for name, c := range ciphersUnderTest() {
		t.Run(name, func(t *testing.T) {
			key, _ := c.GenerateKey()

			malformed := []models.CipherBundle{
				{},                                   // everything missing
				{IV: []byte{1, 2, 3}},                // short IV
				{IV: make([]byte, 24), AuthTag: nil}, // missing tag
				{IV: make([]byte, 12), AuthTag: make([]byte, 4)}, // short tag
			}

			for i, b := range malformed {
				if _, err := c.Decrypt(b, key); !errors.Is(err, ErrIntegrity) {
					t.Fatalf("malformed bundle %d: error = %v, want ErrIntegrity", i, err)
				}
			}
		})
	}
}

func TestZero_OverwritesKeyMaterial(t *testing.T) {
	key := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	Zero(key)
	if !bytes.Equal(key, []byte{0, 0, 0, 0}) {
		t.Fatalf("Zero left key material behind: %x", key)
	}
}

func flipBit(b []byte, idx int) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	out[idx%len(out)] ^= 0x01
	return out
}
