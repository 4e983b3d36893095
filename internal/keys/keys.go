// Package keys supplies per-identity asymmetric key pairs for the envelope
// scheme. The registration flow owns key creation timing; this package owns
// generation and the PEM codec, and exposes a Directory for resolving the
// keys of an identity at request time.
package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// KeyPairBits is the RSA modulus size for identity key pairs. 2048 bits
// gives a 190-byte OAEP payload limit, well above the 32-byte note key.
const KeyPairBits = 2048

const (
	privatePEMType = "RSA PRIVATE KEY"
	publicPEMType  = "PUBLIC KEY"
)

// ErrMalformedKey is returned when PEM decoding or key parsing fails.
var ErrMalformedKey = errors.New("malformed key material")

// KeyPair holds one identity's PEM-encoded key pair.
type KeyPair struct {
	Public  []byte
	Private []byte
}

// Generate creates a fresh RSA key pair and returns both halves PEM-encoded
// (PKCS#1 private, PKIX public).
func Generate() (KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, KeyPairBits)
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate key pair: %w", err)
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  privatePEMType,
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	pubASN1, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return KeyPair{}, fmt.Errorf("marshal public key: %w", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  publicPEMType,
		Bytes: pubASN1,
	})

	return KeyPair{Public: pubPEM, Private: privPEM}, nil
}

// ParsePrivate decodes a PEM-encoded PKCS#1 RSA private key.
func ParsePrivate(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil || block.Type != privatePEMType {
		return nil, fmt.Errorf("%w: expected %q PEM block", ErrMalformedKey, privatePEMType)
	}

	priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedKey, err)
	}

	return priv, nil
}

// ParsePublic decodes a PEM-encoded PKIX RSA public key.
func ParsePublic(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil || block.Type != publicPEMType {
		return nil, fmt.Errorf("%w: expected %q PEM block", ErrMalformedKey, publicPEMType)
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedKey, err)
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA public key", ErrMalformedKey)
	}

	return rsaPub, nil
}
