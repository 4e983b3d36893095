// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/logger"
	"github.com/notevault/notevault/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newDBFromSQL(db *sql.DB) *DB {
	return &DB{
		DB:                 db,
		driver:             config.DriverPostgres,
		errorClassificator: NewPostgresErrorClassifier(),
		logger:             logger.Nop(),
	}
}

func newTestRepo(t *testing.T, db *sql.DB) NoteRepository {
	t.Helper()
	return NewNoteRepository(newDBFromSQL(db), logger.Nop())
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

var noteColumns = []string{
	"id", "owner_id", "bundle", "owner_wrapped_key", "shares", "tags",
	"pinned", "deleted_at", "version", "created_at", "updated_at",
}

func testNote(t *testing.T) models.Note {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	return models.Note{
		ID:      "note-1",
		OwnerID: "alice",
		Bundle: models.CipherBundle{
			IV:         []byte("twelve-bytes"),
			AuthTag:    []byte("sixteen-byte-tag"),
			Ciphertext: []byte("opaque"),
		},
		OwnerWrappedKey: []byte("wrapped-for-alice"),
		Shares: []models.ShareEntry{
			{RecipientID: "bob", Permission: models.PermissionViewer, WrappedKey: []byte("wrapped-for-bob")},
		},
		Tags:      []string{"work"},
		Version:   3,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func noteToRowArgs(t *testing.T, n models.Note) []driver.Value {
	t.Helper()
	var deletedAt driver.Value
	if n.DeletedAt != nil {
		deletedAt = *n.DeletedAt
	}
	return []driver.Value{
		n.ID, n.OwnerID,
		mustJSON(t, n.Bundle), n.OwnerWrappedKey,
		mustJSON(t, n.Shares), mustJSON(t, n.Tags),
		n.Pinned, deletedAt,
		n.Version, n.CreatedAt, n.UpdatedAt,
	}
}

func TestSaveNote(t *testing.T) {
	note := testNote(t)
	note.Version = 0

	t.Run("success", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		mock.ExpectExec(regexp.QuoteMeta(saveNote)).
			WithArgs(
				note.ID, note.OwnerID,
				mustJSON(t, note.Bundle), note.OwnerWrappedKey,
				mustJSON(t, note.Shares), mustJSON(t, note.Tags),
				note.Pinned, nil,
				note.Version, note.CreatedAt, note.UpdatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		n := note
		err := repo.SaveNote(testContext(), &n)

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate id", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		mock.ExpectExec(regexp.QuoteMeta(saveNote)).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		n := note
		err := repo.SaveNote(testContext(), &n)

		assert.ErrorIs(t, err, ErrNoteAlreadyExists)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		mock.ExpectExec(regexp.QuoteMeta(saveNote)).
			WillReturnError(errors.New("connection reset"))

		n := note
		err := repo.SaveNote(testContext(), &n)

		assert.ErrorIs(t, err, ErrExecutingQuery)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetNote(t *testing.T) {
	note := testNote(t)

	t.Run("success", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		mock.ExpectQuery(regexp.QuoteMeta(getNote)).
			WithArgs(note.ID).
			WillReturnRows(sqlmock.NewRows(noteColumns).AddRow(noteToRowArgs(t, note)...))

		got, err := repo.GetNote(testContext(), note.ID)

		require.NoError(t, err)
		assert.Equal(t, note.ID, got.ID)
		assert.Equal(t, note.OwnerID, got.OwnerID)
		assert.Equal(t, note.Bundle, got.Bundle)
		assert.Equal(t, note.Shares, got.Shares)
		assert.Equal(t, note.Tags, got.Tags)
		assert.Equal(t, note.Version, got.Version)
		assert.Nil(t, got.DeletedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("soft-deleted record is returned", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		deleted := note
		deletedAt := time.Now().UTC().Truncate(time.Millisecond)
		deleted.DeletedAt = &deletedAt

		mock.ExpectQuery(regexp.QuoteMeta(getNote)).
			WithArgs(note.ID).
			WillReturnRows(sqlmock.NewRows(noteColumns).AddRow(noteToRowArgs(t, deleted)...))

		got, err := repo.GetNote(testContext(), note.ID)

		require.NoError(t, err)
		require.NotNil(t, got.DeletedAt)
		assert.Equal(t, deletedAt, got.DeletedAt.UTC())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		mock.ExpectQuery(regexp.QuoteMeta(getNote)).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(noteColumns))

		_, err := repo.GetNote(testContext(), "missing")

		assert.ErrorIs(t, err, ErrNoteNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt document column", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		args := noteToRowArgs(t, note)
		args[2] = []byte("{not json")

		mock.ExpectQuery(regexp.QuoteMeta(getNote)).
			WithArgs(note.ID).
			WillReturnRows(sqlmock.NewRows(noteColumns).AddRow(args...))

		_, err := repo.GetNote(testContext(), note.ID)

		assert.ErrorIs(t, err, ErrDecodingRecord)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateNote(t *testing.T) {
	note := testNote(t)

	cteColumns := []string{"updated_id", "current_db_version"}
	id1 := note.ID
	ver3 := note.Version

	casArgs := func(n models.Note) []driver.Value {
		return []driver.Value{
			n.ID,
			mustJSON(t, n.Bundle), n.OwnerWrappedKey,
			mustJSON(t, n.Shares), mustJSON(t, n.Tags),
			n.Pinned, nil,
			sqlmock.AnyArg(), // updated_at
			n.Version,
		}
	}

	t.Run("success: version advances", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		mock.ExpectQuery(regexp.QuoteMeta(updateNoteCAS)).
			WithArgs(casArgs(note)...).
			WillReturnRows(sqlmock.NewRows(cteColumns).AddRow(&id1, &ver3))

		n := note
		err := repo.UpdateNote(testContext(), &n)

		require.NoError(t, err)
		assert.Equal(t, note.Version+1, n.Version)
		assert.True(t, n.UpdatedAt.After(note.UpdatedAt) || n.UpdatedAt.Equal(note.UpdatedAt))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("version conflict: updated_id NULL", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		dbVersion := note.Version + 2

		mock.ExpectQuery(regexp.QuoteMeta(updateNoteCAS)).
			WithArgs(casArgs(note)...).
			WillReturnRows(sqlmock.NewRows(cteColumns).AddRow(nil, &dbVersion))

		n := note
		err := repo.UpdateNote(testContext(), &n)

		assert.ErrorIs(t, err, ErrVersionConflict)
		assert.Equal(t, note.Version, n.Version, "version must not advance on conflict")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found: both columns NULL", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		mock.ExpectQuery(regexp.QuoteMeta(updateNoteCAS)).
			WithArgs(casArgs(note)...).
			WillReturnRows(sqlmock.NewRows(cteColumns).AddRow(nil, nil))

		n := note
		err := repo.UpdateNote(testContext(), &n)

		assert.ErrorIs(t, err, ErrNoteNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		mock.ExpectQuery(regexp.QuoteMeta(updateNoteCAS)).
			WithArgs(casArgs(note)...).
			WillReturnError(errors.New("connection reset"))

		n := note
		err := repo.UpdateNote(testContext(), &n)

		assert.ErrorIs(t, err, ErrExecutingQuery)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPurgeNote(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		mock.ExpectExec(regexp.QuoteMeta(purgeNote)).
			WithArgs("note-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.PurgeNote(testContext(), "note-1")

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		mock.ExpectExec(regexp.QuoteMeta(purgeNote)).
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.PurgeNote(testContext(), "missing")

		assert.ErrorIs(t, err, ErrNoteNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListNotes(t *testing.T) {
	owned := testNote(t)
	shared := testNote(t)
	shared.ID = "note-2"
	shared.OwnerID = "carol"

	t.Run("owned and shared-in notes", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		query, args, err := buildListNotesQuery(config.DriverPostgres, "alice", models.NoteFilter{})
		require.NoError(t, err)

		driverArgs := make([]driver.Value, 0, len(args))
		for _, a := range args {
			driverArgs = append(driverArgs, a)
		}

		mock.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs(driverArgs...).
			WillReturnRows(sqlmock.NewRows(noteColumns).
				AddRow(noteToRowArgs(t, owned)...).
				AddRow(noteToRowArgs(t, shared)...))

		got, listErr := repo.ListNotes(testContext(), "alice", models.NoteFilter{})

		require.NoError(t, listErr)
		require.Len(t, got, 2)
		assert.Equal(t, owned.ID, got[0].ID)
		assert.Equal(t, shared.ID, got[1].ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestRepo(t, db)

		query, _, err := buildListNotesQuery(config.DriverPostgres, "nobody", models.NoteFilter{})
		require.NoError(t, err)

		mock.ExpectQuery(regexp.QuoteMeta(query)).
			WillReturnRows(sqlmock.NewRows(noteColumns))

		got, listErr := repo.ListNotes(testContext(), "nobody", models.NoteFilter{})

		require.NoError(t, listErr)
		assert.Empty(t, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
