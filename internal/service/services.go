// SPDX-License-Identifier: Apache-2.0

package service

import (
	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/crypto"
	"github.com/notevault/notevault/internal/logger"
	"github.com/notevault/notevault/internal/store"
	"github.com/notevault/notevault/internal/workers"
)

// Services aggregates the application services behind their interfaces.
type Services struct {
	NoteService     NoteService
	IdentityService IdentityService
}

// NewServices wires the repositories, the configured AEAD cipher, the RSA
// key wrapper and the crypto worker pool into the service layer. The note
// service is wrapped with input validation.
func NewServices(storages *store.Storages, cfg *config.StructuredConfig, log *logger.Logger) *Services {
	var cipher crypto.SymmetricCipher
	switch cfg.Crypto.Cipher {
	case config.CipherChaCha20:
		cipher = crypto.NewChaChaCipher()
	default:
		cipher = crypto.NewAESGCMCipher()
	}

	codec := crypto.NewEnvelopeCodec(cipher, crypto.NewRSAKeyWrapper())
	pool := workers.NewPool(cfg.Workers.CryptoPoolSize)
	directory := store.NewIdentityDirectory(storages.Identities)

	notes := NewNoteService(storages.Notes, directory, codec, pool, log)
	notes = NewNoteValidationService().Wrap(notes)

	return &Services{
		NoteService:     notes,
		IdentityService: NewIdentityService(storages.Identities, log),
	}
}
