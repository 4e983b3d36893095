// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"time"

	"github.com/notevault/notevault/internal/keys"
	"github.com/notevault/notevault/internal/logger"
	"github.com/notevault/notevault/internal/store"
	"github.com/notevault/notevault/models"
)

type identityService struct {
	identities store.IdentityRepository

	logger *logger.Logger
}

// NewIdentityService constructs an [IdentityService] backed by the
// identities repository.
func NewIdentityService(identities store.IdentityRepository, logger *logger.Logger) IdentityService {
	return &identityService{
		identities: identities,
		logger:     logger,
	}
}

func (s *identityService) RegisterIdentity(ctx context.Context, identityID string) (models.Identity, error) {
	log := logger.FromContext(ctx)

	pair, err := keys.Generate()
	if err != nil {
		log.Err(err).
			Str("func", "identityService.RegisterIdentity").
			Str("identity_id", identityID).
			Msg("failed to generate key pair")
		return models.Identity{}, err
	}

	identity := models.Identity{
		ID:         identityID,
		PublicKey:  pair.Public,
		PrivateKey: pair.Private,
		CreatedAt:  time.Now().UTC(),
	}

	if err = s.identities.SaveIdentity(ctx, &identity); err != nil {
		return models.Identity{}, err
	}

	log.Info().
		Str("func", "identityService.RegisterIdentity").
		Str("identity_id", identityID).
		Msg("registered identity")

	return identity, nil
}

func (s *identityService) GetIdentity(ctx context.Context, identityID string) (models.Identity, error) {
	return s.identities.GetIdentity(ctx, identityID)
}
