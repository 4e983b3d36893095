// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/logger"
	"github.com/notevault/notevault/models"
)

// noteRepository is the SQL-backed implementation of [NoteRepository]. It
// executes all note CRUD operations against the "notes" table using the
// embedded [*DB] connection and dispatches the compare-and-swap path on the
// connected driver.
//
// Every public method obtains a context-scoped logger via
// [logger.FromContext] so that all database interactions are traced with
// structured fields (note_id, owner_id, versions).
type noteRepository struct {
	*DB
	logger *logger.Logger
}

// NewNoteRepository constructs a [NoteRepository] backed by the provided
// database connection and logger.
//
// The logger parameter is stored for fallback logging; most methods prefer
// the context-scoped logger obtained via [logger.FromContext].
func NewNoteRepository(db *DB, logger *logger.Logger) NoteRepository {
	return &noteRepository{
		DB:     db,
		logger: logger,
	}
}

// noteDocs holds the JSON document columns of a note row.
type noteDocs struct {
	bundle []byte
	shares []byte
	tags   []byte
}

func encodeNoteDocs(note *models.Note) (noteDocs, error) {
	var docs noteDocs
	var err error

	if docs.bundle, err = json.Marshal(note.Bundle); err != nil {
		return noteDocs{}, fmt.Errorf("%w: %w", ErrEncodingRecord, err)
	}

	shares := note.Shares
	if shares == nil {
		shares = []models.ShareEntry{}
	}
	if docs.shares, err = json.Marshal(shares); err != nil {
		return noteDocs{}, fmt.Errorf("%w: %w", ErrEncodingRecord, err)
	}

	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}
	if docs.tags, err = json.Marshal(tags); err != nil {
		return noteDocs{}, fmt.Errorf("%w: %w", ErrEncodingRecord, err)
	}

	return docs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (models.Note, error) {
	var note models.Note
	var docs noteDocs
	var deletedAt sql.NullTime

	scanErr := row.Scan(
		&note.ID,
		&note.OwnerID,
		&docs.bundle,
		&note.OwnerWrappedKey,
		&docs.shares,
		&docs.tags,
		&note.Pinned,
		&deletedAt,
		&note.Version,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if scanErr != nil {
		return models.Note{}, scanErr
	}

	if deletedAt.Valid {
		t := deletedAt.Time
		note.DeletedAt = &t
	}

	if err := json.Unmarshal(docs.bundle, &note.Bundle); err != nil {
		return models.Note{}, fmt.Errorf("%w: %w", ErrDecodingRecord, err)
	}
	if err := json.Unmarshal(docs.shares, &note.Shares); err != nil {
		return models.Note{}, fmt.Errorf("%w: %w", ErrDecodingRecord, err)
	}
	if err := json.Unmarshal(docs.tags, &note.Tags); err != nil {
		return models.Note{}, fmt.Errorf("%w: %w", ErrDecodingRecord, err)
	}

	return note, nil
}

// SaveNote inserts a new note at version 0.
//
// The caller is expected to have assigned the id and timestamps; the
// version column is written from the model as-is.
// Returns [ErrNoteAlreadyExists] on a primary-key collision.
func (p *noteRepository) SaveNote(ctx context.Context, note *models.Note) error {
	log := logger.FromContext(ctx)

	log.Debug().
		Str("note_id", note.ID).
		Str("owner_id", note.OwnerID).
		Msg("saving new note record")

	docs, err := encodeNoteDocs(note)
	if err != nil {
		log.Err(err).
			Str("func", "noteRepository.SaveNote").
			Str("note_id", note.ID).
			Msg("failed to encode note documents")
		return err
	}

	query := saveNote
	if p.driver == config.DriverSQLite {
		query = sqliteSaveNote
	}

	_, execErr := p.DB.ExecContext(ctx, query,
		note.ID,
		note.OwnerID,
		docs.bundle,
		note.OwnerWrappedKey,
		docs.shares,
		docs.tags,
		note.Pinned,
		note.DeletedAt,
		note.Version,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if execErr != nil {
		if isUniqueViolation(execErr) {
			log.Warn().
				Str("func", "noteRepository.SaveNote").
				Str("note_id", note.ID).
				Msg("note id already taken")
			return ErrNoteAlreadyExists
		}

		log.Err(execErr).
			Str("func", "noteRepository.SaveNote").
			Str("note_id", note.ID).
			Str("owner_id", note.OwnerID).
			Bool("retryable", p.retryable(execErr)).
			Msg("failed to save note")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, execErr)
	}

	return nil
}

// GetNote retrieves one note by id, including soft-deleted records.
func (p *noteRepository) GetNote(ctx context.Context, noteID string) (models.Note, error) {
	log := logger.FromContext(ctx)

	query := getNote
	if p.driver == config.DriverSQLite {
		query = sqliteGetNote
	}

	note, err := scanNote(p.DB.QueryRowContext(ctx, query, noteID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn().
				Str("func", "noteRepository.GetNote").
				Str("note_id", noteID).
				Msg("note not found")
			return models.Note{}, ErrNoteNotFound
		}
		if errors.Is(err, ErrDecodingRecord) {
			log.Err(err).
				Str("func", "noteRepository.GetNote").
				Str("note_id", noteID).
				Msg("failed to decode note documents")
			return models.Note{}, err
		}

		log.Err(err).
			Str("func", "noteRepository.GetNote").
			Str("note_id", noteID).
			Msg("failed to scan note row")
		return models.Note{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return note, nil
}

// UpdateNote writes the full encrypted row state back under optimistic
// locking: the write succeeds only if the stored version still equals
// note.Version. On success the model's Version and UpdatedAt are advanced
// in place so the caller can echo the committed state.
func (p *noteRepository) UpdateNote(ctx context.Context, note *models.Note) error {
	if p.driver == config.DriverSQLite {
		return p.casUpdateSQLite(ctx, note)
	}

	return p.casUpdatePostgres(ctx, note)
}

// casUpdatePostgres executes the CTE-based compare-and-swap query
// ([updateNoteCAS]) that returns both the updated row id and the current
// database version, distinguishing "not found" (both NULL) from "version
// conflict" (updated_id NULL, current_db_version non-NULL).
func (p *noteRepository) casUpdatePostgres(ctx context.Context, note *models.Note) error {
	log := logger.FromContext(ctx)

	docs, err := encodeNoteDocs(note)
	if err != nil {
		log.Err(err).
			Str("func", "noteRepository.casUpdatePostgres").
			Str("note_id", note.ID).
			Msg("failed to encode note documents")
		return err
	}

	now := time.Now().UTC()

	var updatedID *string
	var currentDBVersion *int64

	queryRowErr := p.DB.QueryRowContext(ctx, updateNoteCAS,
		note.ID,
		docs.bundle,
		note.OwnerWrappedKey,
		docs.shares,
		docs.tags,
		note.Pinned,
		note.DeletedAt,
		now,
		note.Version,
	).Scan(&updatedID, &currentDBVersion)
	if queryRowErr != nil {
		log.Err(queryRowErr).
			Str("func", "noteRepository.casUpdatePostgres").
			Str("note_id", note.ID).
			Bool("retryable", p.retryable(queryRowErr)).
			Msg("failed to execute update query")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, queryRowErr)
	}

	// not found: target_record empty -> both NULL
	if currentDBVersion == nil {
		log.Warn().
			Str("func", "noteRepository.casUpdatePostgres").
			Str("note_id", note.ID).
			Msg("note not found")
		return ErrNoteNotFound
	}

	// found but not updated -> version mismatch
	if updatedID == nil {
		log.Warn().
			Str("func", "noteRepository.casUpdatePostgres").
			Str("note_id", note.ID).
			Int64("db_version", *currentDBVersion).
			Int64("provided_version", note.Version).
			Msg("optimistic lock failed: version mismatch")
		return ErrVersionConflict
	}

	note.Version++
	note.UpdatedAt = now

	log.Info().
		Str("func", "noteRepository.casUpdatePostgres").
		Str("note_id", note.ID).
		Int64("new_version", note.Version).
		Msg("successfully updated note")

	return nil
}

// casUpdateSQLite runs the compare-and-swap as a conditional UPDATE inside
// a transaction. The UPDATE itself is a single engine-level statement; the
// preceding probe only serves to tell "not found" apart from "version
// conflict" when zero rows are affected.
func (p *noteRepository) casUpdateSQLite(ctx context.Context, note *models.Note) error {
	log := logger.FromContext(ctx)

	docs, err := encodeNoteDocs(note)
	if err != nil {
		log.Err(err).
			Str("func", "noteRepository.casUpdateSQLite").
			Str("note_id", note.ID).
			Msg("failed to encode note documents")
		return err
	}

	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "noteRepository.casUpdateSQLite").
			Str("note_id", note.ID).
			Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	var currentDBVersion int64
	probeErr := tx.QueryRowContext(ctx, sqliteProbeNoteVersion, note.ID).Scan(&currentDBVersion)
	if probeErr != nil {
		if errors.Is(probeErr, sql.ErrNoRows) {
			log.Warn().
				Str("func", "noteRepository.casUpdateSQLite").
				Str("note_id", note.ID).
				Msg("note not found")
			return ErrNoteNotFound
		}

		log.Err(probeErr).
			Str("func", "noteRepository.casUpdateSQLite").
			Str("note_id", note.ID).
			Msg("failed to probe note version")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, probeErr)
	}

	now := time.Now().UTC()

	res, execErr := tx.ExecContext(ctx, sqliteUpdateNote,
		docs.bundle,
		note.OwnerWrappedKey,
		docs.shares,
		docs.tags,
		note.Pinned,
		note.DeletedAt,
		now,
		note.ID,
		note.Version,
	)
	if execErr != nil {
		log.Err(execErr).
			Str("func", "noteRepository.casUpdateSQLite").
			Str("note_id", note.ID).
			Msg("failed to execute update query")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, execErr)
	}

	affected, affErr := res.RowsAffected()
	if affErr != nil {
		log.Err(affErr).
			Str("func", "noteRepository.casUpdateSQLite").
			Str("note_id", note.ID).
			Msg("failed to read affected rows")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, affErr)
	}

	if affected == 0 {
		log.Warn().
			Str("func", "noteRepository.casUpdateSQLite").
			Str("note_id", note.ID).
			Int64("db_version", currentDBVersion).
			Int64("provided_version", note.Version).
			Msg("optimistic lock failed: version mismatch")
		return ErrVersionConflict
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "noteRepository.casUpdateSQLite").
			Str("note_id", note.ID).
			Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	note.Version++
	note.UpdatedAt = now

	return nil
}

// PurgeNote permanently removes the row. The ciphertext and every wrapped
// key are destroyed with it.
func (p *noteRepository) PurgeNote(ctx context.Context, noteID string) error {
	log := logger.FromContext(ctx)

	query := purgeNote
	if p.driver == config.DriverSQLite {
		query = sqlitePurgeNote
	}

	res, execErr := p.DB.ExecContext(ctx, query, noteID)
	if execErr != nil {
		log.Err(execErr).
			Str("func", "noteRepository.PurgeNote").
			Str("note_id", noteID).
			Msg("failed to execute purge query")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, execErr)
	}

	affected, affErr := res.RowsAffected()
	if affErr != nil {
		log.Err(affErr).
			Str("func", "noteRepository.PurgeNote").
			Str("note_id", noteID).
			Msg("failed to read affected rows")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, affErr)
	}

	if affected == 0 {
		log.Warn().
			Str("func", "noteRepository.PurgeNote").
			Str("note_id", noteID).
			Msg("note not found")
		return ErrNoteNotFound
	}

	log.Info().
		Str("func", "noteRepository.PurgeNote").
		Str("note_id", noteID).
		Msg("successfully purged note")

	return nil
}

// ListNotes retrieves the notes visible to the caller (owned plus
// shared-in), narrowed by the filter.
//
// Returns an empty slice when nothing matches.
func (p *noteRepository) ListNotes(ctx context.Context, callerID string, filter models.NoteFilter) ([]models.Note, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListNotesQuery(p.driver, callerID, filter)
	if err != nil {
		log.Err(err).
			Str("func", "noteRepository.ListNotes").
			Str("caller_id", callerID).
			Msg("failed to create query")
		return nil, err
	}

	rows, queryErr := p.DB.QueryContext(ctx, query, args...)
	if queryErr != nil {
		log.Err(queryErr).
			Str("func", "noteRepository.ListNotes").
			Str("caller_id", callerID).
			Msg("failed to execute query for listing notes")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, queryErr)
	}
	defer rows.Close()

	results := make([]models.Note, 0, 50)

	for rows.Next() {
		note, scanErr := scanNote(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "noteRepository.ListNotes").
				Str("caller_id", callerID).
				Msg("failed to scan note row")
			if errors.Is(scanErr, ErrDecodingRecord) {
				return nil, scanErr
			}
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		results = append(results, note)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "noteRepository.ListNotes").
			Str("caller_id", callerID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return results, nil
}

// isUniqueViolation reports whether err is a primary-key or unique
// constraint violation from either supported driver.
func isUniqueViolation(err error) bool {
	if postgresError(err) == pgerrcode.UniqueViolation {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}

	return false
}
