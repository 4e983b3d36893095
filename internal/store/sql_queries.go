// SPDX-License-Identifier: Apache-2.0

package store

import (
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/models"
)

const (
	saveNote = `INSERT INTO notes (
			id,
			owner_id,
			bundle,
			owner_wrapped_key,
			shares,
			tags,
			pinned,
			deleted_at,
			version,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`

	getNote = `SELECT id, owner_id, bundle, owner_wrapped_key, shares, tags, pinned, deleted_at, version, created_at, updated_at
		FROM notes
		WHERE id = $1;`

	purgeNote = `DELETE FROM notes
		WHERE id = $1;`

	// updateNoteCAS replaces the full encrypted row state in a single
	// optimistic-locking statement. The two-CTE shape lets one round trip
	// distinguish the outcomes: both result columns NULL means the note
	// does not exist, a NULL updated_id with a non-NULL current_db_version
	// means the UPDATE was skipped because of a version mismatch.
	updateNoteCAS = `
       WITH target_record AS (
          SELECT id, version
          FROM notes
          WHERE id = $1
       ),
       updated_record AS (
          UPDATE notes
          SET bundle = $2, owner_wrapped_key = $3, shares = $4, tags = $5, pinned = $6, deleted_at = $7, updated_at = $8, version = version + 1
          WHERE id = $1
            AND version = $9
          RETURNING id
       )
       SELECT
          (SELECT id FROM updated_record)      AS updated_id,
          (SELECT version FROM target_record)   AS current_db_version;`

	saveIdentity = `INSERT INTO identities (id, public_key, private_key, created_at)
		VALUES ($1, $2, $3, $4);`

	getIdentity = `SELECT id, public_key, private_key, created_at
		FROM identities
		WHERE id = $1;`
)

// SQLite lacks data-modifying CTEs, so the compare-and-swap runs as a
// conditional UPDATE inside a transaction with a preceding version probe.
const (
	sqliteProbeNoteVersion = `SELECT version FROM notes WHERE id = ?;`

	sqliteUpdateNote = `UPDATE notes
		SET bundle = ?, owner_wrapped_key = ?, shares = ?, tags = ?, pinned = ?, deleted_at = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?;`

	sqliteSaveNote = `INSERT INTO notes (
			id,
			owner_id,
			bundle,
			owner_wrapped_key,
			shares,
			tags,
			pinned,
			deleted_at,
			version,
			created_at,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	sqliteGetNote = `SELECT id, owner_id, bundle, owner_wrapped_key, shares, tags, pinned, deleted_at, version, created_at, updated_at
		FROM notes
		WHERE id = ?;`

	sqlitePurgeNote = `DELETE FROM notes
		WHERE id = ?;`

	sqliteSaveIdentity = `INSERT INTO identities (id, public_key, private_key, created_at)
		VALUES (?, ?, ?, ?);`

	sqliteGetIdentity = `SELECT id, public_key, private_key, created_at
		FROM identities
		WHERE id = ?;`
)

// buildListNotesQuery dynamically builds the listing SELECT for the given
// driver. The caller sees notes they own plus notes shared with them; tag
// and pinned filters narrow the set, and soft-deleted records are excluded
// unless the filter asks for them.
//
// Share and tag membership tests live inside JSON document columns, so the
// predicates are dialect specific: jsonb containment on PostgreSQL,
// json_each scans on SQLite.
func buildListNotesQuery(driver, callerID string, filter models.NoteFilter) (string, []any, error) {
	builder := sq.Select(
		"id", "owner_id", "bundle", "owner_wrapped_key", "shares", "tags",
		"pinned", "deleted_at", "version", "created_at", "updated_at",
	).From("notes")

	var sharePredicate, tagPredicate sq.Sqlizer
	switch driver {
	case config.DriverPostgres:
		builder = builder.PlaceholderFormat(sq.Dollar)
		sharePredicate = sq.Expr("shares @> ?", fmt.Sprintf(`[{"recipient_id": %q}]`, callerID))
		if filter.Tag != "" {
			tagJSON, err := json.Marshal([]string{filter.Tag})
			if err != nil {
				return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
			}
			tagPredicate = sq.Expr("tags @> ?", string(tagJSON))
		}
	case config.DriverSQLite:
		builder = builder.PlaceholderFormat(sq.Question)
		sharePredicate = sq.Expr(
			"EXISTS (SELECT 1 FROM json_each(notes.shares) WHERE json_extract(json_each.value, '$.recipient_id') = ?)",
			callerID,
		)
		if filter.Tag != "" {
			tagPredicate = sq.Expr(
				"EXISTS (SELECT 1 FROM json_each(notes.tags) WHERE json_each.value = ?)",
				filter.Tag,
			)
		}
	default:
		return "", nil, fmt.Errorf("%w: unsupported driver %q", ErrBuildingSQLQuery, driver)
	}

	builder = builder.Where(sq.Or{
		sq.Eq{"owner_id": callerID},
		sharePredicate,
	})

	if !filter.IncludeDeleted {
		builder = builder.Where(sq.Eq{"deleted_at": nil})
	}
	if filter.Pinned != nil {
		builder = builder.Where(sq.Eq{"pinned": *filter.Pinned})
	}
	if tagPredicate != nil {
		builder = builder.Where(tagPredicate)
	}

	query, args, err := builder.OrderBy("pinned DESC", "updated_at DESC").ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}
