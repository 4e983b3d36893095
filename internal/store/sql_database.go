// SPDX-License-Identifier: Apache-2.0

package store

import (
	"database/sql"

	"github.com/notevault/notevault/internal/logger"
	"github.com/notevault/notevault/migrations"
)

// DB wraps the raw SQL connection together with the driver name (needed to
// pick the correct compare-and-swap dialect) and an error classifier.
type DB struct {
	*sql.DB
	driver             string
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// Migrate applies all pending schema migrations for the connected driver.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.driver)
}

// retryable reports whether the driver classified err as transient.
func (db *DB) retryable(err error) bool {
	return db.errorClassificator != nil && db.errorClassificator.Classify(err) == Retryable
}
