// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/notevault/notevault/internal/crypto"
	"github.com/notevault/notevault/internal/keys"
	"github.com/notevault/notevault/internal/logger"
	"github.com/notevault/notevault/internal/store"
	"github.com/notevault/notevault/internal/utils"
	"github.com/notevault/notevault/internal/workers"
	"github.com/notevault/notevault/models"
)

// noteService implements [NoteService] on top of the note repository, the
// key directory and the envelope codec. All CPU-heavy crypto work runs
// through the bounded worker pool.
type noteService struct {
	notes     store.NoteRepository
	directory keys.Directory
	codec     crypto.EnvelopeCodec
	pool      *workers.Pool
	ids       *utils.UUIDGenerator

	logger *logger.Logger
}

// NewNoteService constructs a [NoteService].
func NewNoteService(notes store.NoteRepository, directory keys.Directory, codec crypto.EnvelopeCodec, pool *workers.Pool, logger *logger.Logger) NoteService {
	return &noteService{
		notes:     notes,
		directory: directory,
		codec:     codec,
		pool:      pool,
		ids:       utils.NewUUIDGenerator(),
		logger:    logger,
	}
}

// getNote loads the note and hides non-existence behind [ErrAccessDenied]
// so callers cannot probe for valid note ids.
func (s *noteService) getNote(ctx context.Context, noteID string) (models.Note, error) {
	note, err := s.notes.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			return models.Note{}, ErrAccessDenied
		}
		return models.Note{}, err
	}

	return note, nil
}

// wrappedKeyFor resolves the caller's own wrapped copy of the note key.
func wrappedKeyFor(note models.Note, callerID string) ([]byte, bool) {
	if note.OwnerID == callerID {
		return note.OwnerWrappedKey, true
	}
	if entry, ok := note.ShareFor(callerID); ok {
		return entry.WrappedKey, true
	}
	return nil, false
}

func (s *noteService) CreateNote(ctx context.Context, ownerID string, payload models.NotePayload, tags []string, pinned bool) (models.DecryptedNote, error) {
	log := logger.FromContext(ctx)

	ownerPublic, err := s.directory.PublicKey(ctx, ownerID)
	if err != nil {
		log.Err(err).
			Str("func", "noteService.CreateNote").
			Str("owner_id", ownerID).
			Msg("failed to resolve owner public key")
		return models.DecryptedNote{}, err
	}

	var sealed crypto.SealedNote
	if err = s.pool.Do(ctx, func() error {
		var sealErr error
		sealed, sealErr = s.codec.SealForCreation(payload, ownerPublic)
		return sealErr
	}); err != nil {
		log.Err(err).
			Str("func", "noteService.CreateNote").
			Str("owner_id", ownerID).
			Msg("failed to seal note payload")
		return models.DecryptedNote{}, err
	}
	// the plaintext is already in hand, the raw key has no further use here
	crypto.Zero(sealed.Key)

	now := time.Now().UTC()
	note := models.Note{
		ID:              s.ids.Generate(),
		OwnerID:         ownerID,
		Bundle:          sealed.Bundle,
		OwnerWrappedKey: sealed.OwnerWrappedKey,
		Tags:            tags,
		Pinned:          pinned,
		Version:         0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err = s.notes.SaveNote(ctx, &note); err != nil {
		return models.DecryptedNote{}, err
	}

	log.Info().
		Str("func", "noteService.CreateNote").
		Str("note_id", note.ID).
		Str("owner_id", ownerID).
		Msg("created note")

	return models.DecryptedNote{Note: note, Payload: payload}, nil
}

func (s *noteService) ReadNote(ctx context.Context, noteID, callerID string) (models.DecryptedNote, error) {
	log := logger.FromContext(ctx)

	note, err := s.getNote(ctx, noteID)
	if err != nil {
		return models.DecryptedNote{}, err
	}

	if note.DeletedAt != nil && note.OwnerID != callerID {
		return models.DecryptedNote{}, ErrAccessDenied
	}

	wrapped, ok := wrappedKeyFor(note, callerID)
	if !ok {
		return models.DecryptedNote{}, ErrAccessDenied
	}

	private, err := s.directory.PrivateKey(ctx, callerID)
	if err != nil {
		log.Err(err).
			Str("func", "noteService.ReadNote").
			Str("caller_id", callerID).
			Msg("failed to resolve caller private key")
		return models.DecryptedNote{}, err
	}

	var payload models.NotePayload
	if err = s.pool.Do(ctx, func() error {
		var openErr error
		payload, openErr = s.codec.OpenFor(note.Bundle, wrapped, private)
		return openErr
	}); err != nil {
		log.Err(err).
			Str("func", "noteService.ReadNote").
			Str("note_id", noteID).
			Str("caller_id", callerID).
			Msg("failed to open note")
		return models.DecryptedNote{}, err
	}

	return models.DecryptedNote{Note: note, Payload: payload}, nil
}

func (s *noteService) UpdateNote(ctx context.Context, noteID, callerID string, changes models.NoteUpdate, expectedVersion int64) (models.DecryptedNote, error) {
	log := logger.FromContext(ctx)

	note, err := s.getNote(ctx, noteID)
	if err != nil {
		return models.DecryptedNote{}, err
	}

	var wrapped []byte
	if note.OwnerID == callerID {
		wrapped = note.OwnerWrappedKey
	} else {
		entry, ok := note.ShareFor(callerID)
		if !ok || note.DeletedAt != nil {
			return models.DecryptedNote{}, ErrAccessDenied
		}
		if entry.Permission != models.PermissionEditor {
			return models.DecryptedNote{}, fmt.Errorf("%w: share grants read-only access", ErrAccessDenied)
		}
		wrapped = entry.WrappedKey
	}

	if note.DeletedAt != nil {
		return models.DecryptedNote{}, ErrNoteDeleted
	}

	private, err := s.directory.PrivateKey(ctx, callerID)
	if err != nil {
		log.Err(err).
			Str("func", "noteService.UpdateNote").
			Str("caller_id", callerID).
			Msg("failed to resolve caller private key")
		return models.DecryptedNote{}, err
	}

	var merged models.NotePayload
	if err = s.pool.Do(ctx, func() error {
		payload, openErr := s.codec.OpenFor(note.Bundle, wrapped, private)
		if openErr != nil {
			return openErr
		}

		merged = mergePayload(payload, changes)

		key, unwrapErr := s.codec.UnwrapKey(wrapped, private)
		if unwrapErr != nil {
			return unwrapErr
		}
		defer crypto.Zero(key)

		bundle, sealErr := s.codec.ReSeal(key, merged)
		if sealErr != nil {
			return sealErr
		}

		note.Bundle = bundle
		return nil
	}); err != nil {
		log.Err(err).
			Str("func", "noteService.UpdateNote").
			Str("note_id", noteID).
			Str("caller_id", callerID).
			Msg("failed to re-encrypt note")
		return models.DecryptedNote{}, err
	}

	if changes.Tags != nil {
		note.Tags = *changes.Tags
	}
	if changes.Pinned != nil {
		note.Pinned = *changes.Pinned
	}

	// the storage compare-and-swap is the single authority on staleness
	note.Version = expectedVersion

	if err = s.writeNote(ctx, &note); err != nil {
		return models.DecryptedNote{}, err
	}

	return models.DecryptedNote{Note: note, Payload: merged}, nil
}

// mergePayload applies the non-nil fields of the update on top of the
// decrypted payload. Untouched fields keep their decrypted values.
func mergePayload(payload models.NotePayload, changes models.NoteUpdate) models.NotePayload {
	if changes.Title != nil {
		payload.Title = *changes.Title
	}
	if changes.Content != nil {
		payload.Content = *changes.Content
	}
	if changes.Format != nil {
		payload.Format = *changes.Format
	}
	return payload
}

// writeNote runs the repository compare-and-swap and hides non-existence
// behind [ErrAccessDenied]. Version conflicts propagate verbatim.
func (s *noteService) writeNote(ctx context.Context, note *models.Note) error {
	err := s.notes.UpdateNote(ctx, note)
	if errors.Is(err, store.ErrNoteNotFound) {
		return ErrAccessDenied
	}
	return err
}

func (s *noteService) ShareNote(ctx context.Context, noteID, callerID, recipientID string, permission models.Permission) (models.Note, error) {
	log := logger.FromContext(ctx)

	note, err := s.getNote(ctx, noteID)
	if err != nil {
		return models.Note{}, err
	}

	if note.OwnerID != callerID {
		return models.Note{}, ErrAccessDenied
	}
	if recipientID == callerID {
		return models.Note{}, ErrSelfShare
	}
	if note.DeletedAt != nil {
		return models.Note{}, ErrNoteDeleted
	}

	recipientPublic, err := s.directory.PublicKey(ctx, recipientID)
	if err != nil {
		log.Err(err).
			Str("func", "noteService.ShareNote").
			Str("recipient_id", recipientID).
			Msg("failed to resolve recipient public key")
		return models.Note{}, err
	}

	ownerPrivate, err := s.directory.PrivateKey(ctx, callerID)
	if err != nil {
		log.Err(err).
			Str("func", "noteService.ShareNote").
			Str("caller_id", callerID).
			Msg("failed to resolve owner private key")
		return models.Note{}, err
	}

	var entry models.ShareEntry
	if err = s.pool.Do(ctx, func() error {
		key, unwrapErr := s.codec.UnwrapKey(note.OwnerWrappedKey, ownerPrivate)
		if unwrapErr != nil {
			return unwrapErr
		}
		defer crypto.Zero(key)

		var wrapErr error
		entry, wrapErr = s.codec.AddRecipientWrap(key, recipientID, recipientPublic, permission)
		return wrapErr
	}); err != nil {
		log.Err(err).
			Str("func", "noteService.ShareNote").
			Str("note_id", noteID).
			Str("recipient_id", recipientID).
			Msg("failed to wrap note key for recipient")
		return models.Note{}, err
	}

	// sharing again with the same recipient replaces the previous grant
	replaced := false
	for i, existing := range note.Shares {
		if existing.RecipientID == recipientID {
			note.Shares[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		note.Shares = append(note.Shares, entry)
	}

	if err = s.writeNote(ctx, &note); err != nil {
		return models.Note{}, err
	}

	log.Info().
		Str("func", "noteService.ShareNote").
		Str("note_id", noteID).
		Str("recipient_id", recipientID).
		Str("permission", string(permission)).
		Msg("shared note")

	return note, nil
}

func (s *noteService) UnshareNote(ctx context.Context, noteID, callerID, recipientID string) (models.Note, error) {
	log := logger.FromContext(ctx)

	note, err := s.getNote(ctx, noteID)
	if err != nil {
		return models.Note{}, err
	}

	if note.OwnerID != callerID {
		return models.Note{}, ErrAccessDenied
	}

	idx := -1
	for i, existing := range note.Shares {
		if existing.RecipientID == recipientID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Note{}, ErrShareNotFound
	}

	note.Shares = append(note.Shares[:idx], note.Shares[idx+1:]...)

	if err = s.writeNote(ctx, &note); err != nil {
		return models.Note{}, err
	}

	log.Info().
		Str("func", "noteService.UnshareNote").
		Str("note_id", noteID).
		Str("recipient_id", recipientID).
		Msg("revoked share")

	return note, nil
}

func (s *noteService) ListNotes(ctx context.Context, callerID string, filter models.NoteFilter) ([]models.DecryptedNote, error) {
	log := logger.FromContext(ctx)

	notes, err := s.notes.ListNotes(ctx, callerID, filter)
	if err != nil {
		return nil, err
	}

	if len(notes) == 0 {
		return []models.DecryptedNote{}, nil
	}

	private, err := s.directory.PrivateKey(ctx, callerID)
	if err != nil {
		log.Err(err).
			Str("func", "noteService.ListNotes").
			Str("caller_id", callerID).
			Msg("failed to resolve caller private key")
		return nil, err
	}

	results := make([]models.DecryptedNote, 0, len(notes))
	for _, note := range notes {
		// deleted notes stay visible to their owner only
		if note.DeletedAt != nil && note.OwnerID != callerID {
			continue
		}

		wrapped, ok := wrappedKeyFor(note, callerID)
		if !ok {
			continue
		}

		var payload models.NotePayload
		if err = s.pool.Do(ctx, func() error {
			var openErr error
			payload, openErr = s.codec.OpenFor(note.Bundle, wrapped, private)
			return openErr
		}); err != nil {
			log.Err(err).
				Str("func", "noteService.ListNotes").
				Str("note_id", note.ID).
				Str("caller_id", callerID).
				Msg("failed to open note during listing")
			return nil, err
		}

		results = append(results, models.DecryptedNote{Note: note, Payload: payload})
	}

	return results, nil
}

func (s *noteService) DeleteNote(ctx context.Context, noteID, callerID string, expectedVersion int64) error {
	note, err := s.getNote(ctx, noteID)
	if err != nil {
		return err
	}

	if note.OwnerID != callerID {
		return ErrAccessDenied
	}
	if note.DeletedAt != nil {
		return ErrNoteDeleted
	}

	now := time.Now().UTC()
	note.DeletedAt = &now
	note.Version = expectedVersion

	return s.writeNote(ctx, &note)
}

func (s *noteService) RestoreNote(ctx context.Context, noteID, callerID string, expectedVersion int64) error {
	note, err := s.getNote(ctx, noteID)
	if err != nil {
		return err
	}

	if note.OwnerID != callerID {
		return ErrAccessDenied
	}
	if note.DeletedAt == nil {
		return nil
	}

	note.DeletedAt = nil
	note.Version = expectedVersion

	return s.writeNote(ctx, &note)
}

func (s *noteService) PurgeNote(ctx context.Context, noteID, callerID string) error {
	log := logger.FromContext(ctx)

	note, err := s.getNote(ctx, noteID)
	if err != nil {
		return err
	}

	if note.OwnerID != callerID {
		return ErrAccessDenied
	}

	if err = s.notes.PurgeNote(ctx, noteID); err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			return ErrAccessDenied
		}
		return err
	}

	log.Info().
		Str("func", "noteService.PurgeNote").
		Str("note_id", noteID).
		Msg("purged note")

	return nil
}
