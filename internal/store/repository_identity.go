// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/logger"
	"github.com/notevault/notevault/models"
)

// identityRepository is the SQL-backed implementation of
// [IdentityRepository] over the "identities" table.
type identityRepository struct {
	*DB
	logger *logger.Logger
}

// NewIdentityRepository constructs an [IdentityRepository] backed by the
// provided database connection and logger.
func NewIdentityRepository(db *DB, logger *logger.Logger) IdentityRepository {
	return &identityRepository{
		DB:     db,
		logger: logger,
	}
}

// SaveIdentity inserts a new identity with its PEM-encoded key pair.
func (r *identityRepository) SaveIdentity(ctx context.Context, identity *models.Identity) error {
	log := logger.FromContext(ctx)

	query := saveIdentity
	if r.driver == config.DriverSQLite {
		query = sqliteSaveIdentity
	}

	_, execErr := r.DB.ExecContext(ctx, query,
		identity.ID,
		identity.PublicKey,
		identity.PrivateKey,
		identity.CreatedAt,
	)
	if execErr != nil {
		if isUniqueViolation(execErr) {
			log.Warn().
				Str("func", "identityRepository.SaveIdentity").
				Str("identity_id", identity.ID).
				Msg("identity id already taken")
			return ErrIdentityAlreadyExists
		}

		log.Err(execErr).
			Str("func", "identityRepository.SaveIdentity").
			Str("identity_id", identity.ID).
			Msg("failed to save identity")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, execErr)
	}

	return nil
}

// GetIdentity retrieves one identity by id.
func (r *identityRepository) GetIdentity(ctx context.Context, identityID string) (models.Identity, error) {
	log := logger.FromContext(ctx)

	query := getIdentity
	if r.driver == config.DriverSQLite {
		query = sqliteGetIdentity
	}

	var identity models.Identity
	scanErr := r.DB.QueryRowContext(ctx, query, identityID).Scan(
		&identity.ID,
		&identity.PublicKey,
		&identity.PrivateKey,
		&identity.CreatedAt,
	)
	if scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			log.Warn().
				Str("func", "identityRepository.GetIdentity").
				Str("identity_id", identityID).
				Msg("identity not found")
			return models.Identity{}, ErrIdentityNotFound
		}

		log.Err(scanErr).
			Str("func", "identityRepository.GetIdentity").
			Str("identity_id", identityID).
			Msg("failed to scan identity row")
		return models.Identity{}, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
	}

	return identity, nil
}
