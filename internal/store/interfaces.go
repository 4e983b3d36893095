// SPDX-License-Identifier: Apache-2.0

package store

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

import (
	"context"

	"github.com/notevault/notevault/models"
)

// NoteRepository persists envelope-encrypted note records with
// optimistic-concurrency semantics.
//
// UpdateNote is the only mutation path after creation: it replaces the full
// encrypted row state (bundle, shares, tags, pinned flag, deletion marker)
// in a single compare-and-swap on the version column. Soft delete and
// restore are expressed through it by toggling [models.Note.DeletedAt].
type NoteRepository interface {
	// SaveNote inserts a new note at version 0.
	// Returns ErrNoteAlreadyExists when the id is already taken.
	SaveNote(ctx context.Context, note *models.Note) error

	// GetNote returns the note with the given id, including soft-deleted
	// records. Returns ErrNoteNotFound when no row matches.
	GetNote(ctx context.Context, noteID string) (models.Note, error)

	// UpdateNote writes the note back if and only if the stored version
	// equals note.Version. On success note.Version and note.UpdatedAt are
	// advanced in place. Returns ErrVersionConflict on a stale version and
	// ErrNoteNotFound when the row does not exist.
	UpdateNote(ctx context.Context, note *models.Note) error

	// PurgeNote permanently destroys the row, its ciphertext and every
	// wrapped key. Returns ErrNoteNotFound when no row matches.
	PurgeNote(ctx context.Context, noteID string) error

	// ListNotes returns the notes the caller owns plus the notes shared
	// with the caller, narrowed by the filter.
	ListNotes(ctx context.Context, callerID string, filter models.NoteFilter) ([]models.Note, error)
}

// IdentityRepository persists the principals known to the notes core
// together with their server-custodied key pairs.
type IdentityRepository interface {
	// SaveIdentity inserts a new identity.
	// Returns ErrIdentityAlreadyExists when the id is already taken.
	SaveIdentity(ctx context.Context, identity *models.Identity) error

	// GetIdentity returns the identity with the given id.
	// Returns ErrIdentityNotFound when no row matches.
	GetIdentity(ctx context.Context, identityID string) (models.Identity, error)
}

// ErrorClassificator reports whether a failed database operation is worth
// retrying. Implementations are driver specific.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
