// SPDX-License-Identifier: Apache-2.0

package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrNoteNotFound is returned when a query or update targets a note
	// that does not exist in the database.
	ErrNoteNotFound = errors.New("note was not found")

	// ErrNoteAlreadyExists is returned when an INSERT fails because a note
	// with the same id is already persisted.
	ErrNoteAlreadyExists = errors.New("note already exists")

	// ErrVersionConflict is returned when an optimistic-locking check fails:
	// the version supplied by the caller does not match the current version
	// stored in the database, meaning another writer has modified the record
	// since the caller last read it.
	ErrVersionConflict = errors.New("note version conflict occurred")

	// ErrIdentityNotFound is returned when a key-directory lookup finds no
	// identity record for the requested id.
	ErrIdentityNotFound = errors.New("identity was not found")

	// ErrIdentityAlreadyExists is returned when registering an identity
	// whose id is already taken.
	ErrIdentityAlreadyExists = errors.New("identity already exists")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan note row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan note rows")

	// ErrEncodingRecord is returned when a note's JSON document columns
	// (bundle, shares, tags) cannot be marshalled for storage.
	ErrEncodingRecord = errors.New("failed to encode note record")

	// ErrDecodingRecord is returned when a stored JSON document column
	// cannot be unmarshalled back into the note model.
	ErrDecodingRecord = errors.New("failed to decode note record")
)
