// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"

	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/logger"
)

// Storages aggregates every repository backed by one database connection.
type Storages struct {
	DB         *DB
	Notes      NoteRepository
	Identities IdentityRepository
}

// NewStorages connects to the configured database, runs migrations, and
// wires up all repositories.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	var db *DB
	var err error

	switch cfg.DB.Driver {
	case config.DriverSQLite:
		db, err = NewConnectSQLite(ctx, cfg.DB, log)
	default:
		db, err = NewConnectPostgres(ctx, cfg.DB, log)
	}
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Storages{
		DB:         db,
		Notes:      NewNoteRepository(db, log),
		Identities: NewIdentityRepository(db, log),
	}, nil
}
