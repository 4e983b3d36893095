// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"

	"github.com/notevault/notevault/models"
)

// envelopeCodec composes a [SymmetricCipher] with a [KeyWrapper] into the
// note-level envelope operations. Payloads are serialized to JSON before
// sealing, so the storage backend only ever sees the opaque bundle.
type envelopeCodec struct {
	cipher  SymmetricCipher
	wrapper KeyWrapper
}

// NewEnvelopeCodec constructs an [EnvelopeCodec] from the given cipher and
// wrapper implementations.
func NewEnvelopeCodec(cipher SymmetricCipher, wrapper KeyWrapper) EnvelopeCodec {
	return &envelopeCodec{
		cipher:  cipher,
		wrapper: wrapper,
	}
}

// SealForCreation implements [EnvelopeCodec]. One symmetric key is generated
// per note and reused for the note's lifetime; the returned SealedNote
// carries it raw so the create path can echo plaintext without a decrypt
// round-trip.
func (e *envelopeCodec) SealForCreation(payload models.NotePayload, ownerPublic *rsa.PublicKey) (SealedNote, error) {
	key, err := e.cipher.GenerateKey()
	if err != nil {
		return SealedNote{}, err
	}

	bundle, err := e.seal(key, payload)
	if err != nil {
		Zero(key)
		return SealedNote{}, err
	}

	ownerWrapped, err := e.wrapper.Wrap(key, ownerPublic)
	if err != nil {
		Zero(key)
		return SealedNote{}, err
	}

	return SealedNote{
		Bundle:          bundle,
		OwnerWrappedKey: ownerWrapped,
		Key:             key,
	}, nil
}

// OpenFor implements [EnvelopeCodec]. The raw key recovered from wrappedKey
// is zeroed before returning, success or not.
func (e *envelopeCodec) OpenFor(bundle models.CipherBundle, wrappedKey []byte, private *rsa.PrivateKey) (models.NotePayload, error) {
	key, err := e.wrapper.Unwrap(wrappedKey, private)
	if err != nil {
		return models.NotePayload{}, err
	}
	defer Zero(key)

	return e.open(key, bundle)
}

// UnwrapKey implements [EnvelopeCodec].
func (e *envelopeCodec) UnwrapKey(wrapped []byte, private *rsa.PrivateKey) ([]byte, error) {
	return e.wrapper.Unwrap(wrapped, private)
}

// ReSeal implements [EnvelopeCodec]. The key is reused as is; only the IV
// and auth tag are fresh.
func (e *envelopeCodec) ReSeal(key []byte, newPayload models.NotePayload) (models.CipherBundle, error) {
	return e.seal(key, newPayload)
}

// AddRecipientWrap implements [EnvelopeCodec].
func (e *envelopeCodec) AddRecipientWrap(key []byte, recipientID string, recipientPublic *rsa.PublicKey, permission models.Permission) (models.ShareEntry, error) {
	wrapped, err := e.wrapper.Wrap(key, recipientPublic)
	if err != nil {
		return models.ShareEntry{}, err
	}

	return models.ShareEntry{
		RecipientID: recipientID,
		Permission:  permission,
		WrappedKey:  wrapped,
	}, nil
}

func (e *envelopeCodec) seal(key []byte, payload models.NotePayload) (models.CipherBundle, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return models.CipherBundle{}, fmt.Errorf("marshal payload: %w", err)
	}

	return e.cipher.Encrypt(plaintext, key)
}

func (e *envelopeCodec) open(key []byte, bundle models.CipherBundle) (models.NotePayload, error) {
	plaintext, err := e.cipher.Decrypt(bundle, key)
	if err != nil {
		return models.NotePayload{}, err
	}

	var payload models.NotePayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		// the tag verified, so a broken payload means the sealed bytes
		// were never a note payload
		return models.NotePayload{}, fmt.Errorf("%w: unmarshal payload: %w", ErrIntegrity, err)
	}

	return payload, nil
}
