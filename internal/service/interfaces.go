// SPDX-License-Identifier: Apache-2.0

package service

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

import (
	"context"

	"github.com/notevault/notevault/models"
)

// NoteService is the application core for envelope-encrypted notes.
//
// Every mutation after creation is an optimistic-concurrency write: a stale
// version surfaces as [store.ErrVersionConflict] which propagates to the
// caller verbatim — the service never retries on the caller's behalf.
// Authorization failures, including operations on note ids that do not
// exist, surface as [ErrAccessDenied].
type NoteService interface {
	// CreateNote seals the payload under a fresh note key and persists it
	// at version 0. The returned note echoes the plaintext back.
	CreateNote(ctx context.Context, ownerID string, payload models.NotePayload, tags []string, pinned bool) (models.DecryptedNote, error)

	// ReadNote decrypts the note for the caller using the caller's own
	// wrapped key. Soft-deleted notes are readable by the owner only.
	ReadNote(ctx context.Context, noteID, callerID string) (models.DecryptedNote, error)

	// UpdateNote applies a partial update: decrypt, merge non-nil fields,
	// re-encrypt under the same key, compare-and-swap at expectedVersion.
	// Viewer shares are rejected; editors and the owner may write.
	UpdateNote(ctx context.Context, noteID, callerID string, changes models.NoteUpdate, expectedVersion int64) (models.DecryptedNote, error)

	// ShareNote wraps the note key for one more recipient. Owner only.
	// Sharing again with the same recipient replaces the existing entry.
	ShareNote(ctx context.Context, noteID, callerID, recipientID string, permission models.Permission) (models.Note, error)

	// UnshareNote removes the recipient's share entry. Owner only. The
	// note key is not rotated: a recipient that copied their wrapped key
	// before revocation can still decrypt ciphertext they already hold.
	UnshareNote(ctx context.Context, noteID, callerID, recipientID string) (models.Note, error)

	// ListNotes returns the caller's notes (owned plus shared-in),
	// decrypted, narrowed by the filter.
	ListNotes(ctx context.Context, callerID string, filter models.NoteFilter) ([]models.DecryptedNote, error)

	// DeleteNote soft-deletes the note under compare-and-swap. Owner only.
	DeleteNote(ctx context.Context, noteID, callerID string, expectedVersion int64) error

	// RestoreNote clears the deletion marker under compare-and-swap.
	// Owner only.
	RestoreNote(ctx context.Context, noteID, callerID string, expectedVersion int64) error

	// PurgeNote destroys the row permanently: ciphertext and every
	// wrapped key are gone. Owner only, no version check.
	PurgeNote(ctx context.Context, noteID, callerID string) error
}

// IdentityService provisions principals with their server-custodied RSA
// key pairs.
type IdentityService interface {
	// RegisterIdentity generates a fresh key pair and persists the
	// identity under the given id.
	RegisterIdentity(ctx context.Context, identityID string) (models.Identity, error)

	// GetIdentity returns the stored identity.
	GetIdentity(ctx context.Context, identityID string) (models.Identity, error)
}

// NoteServiceWrapper defines middleware composition for NoteService.
// Implementations wrap an existing NoteService to add behavior such as
// validating inputs before they reach the crypto and storage layers.
type NoteServiceWrapper interface {
	Wrap(NoteService) NoteService
}
