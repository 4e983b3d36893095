// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"

	"github.com/notevault/notevault/internal/validators"
	"github.com/notevault/notevault/models"
)

// NoteValidationService is a [NoteServiceWrapper] that validates inputs
// before they reach the crypto and storage layers. Operations with no user
// supplied content pass straight through to the wrapped service.
type NoteValidationService struct {
	inner     NoteService
	validator validators.Validator
}

// NewNoteValidationService constructs the validation decorator.
func NewNoteValidationService() NoteServiceWrapper {
	return &NoteValidationService{
		validator: validators.NewNoteValidator(),
	}
}

// Wrap implements [NoteServiceWrapper].
func (v *NoteValidationService) Wrap(inner NoteService) NoteService {
	v.inner = inner
	return v
}

func (v *NoteValidationService) CreateNote(ctx context.Context, ownerID string, payload models.NotePayload, tags []string, pinned bool) (models.DecryptedNote, error) {
	if err := v.validator.Validate(ctx, payload); err != nil {
		return models.DecryptedNote{}, fmt.Errorf("note validation before creation: %w", err)
	}
	if err := v.validator.Validate(ctx, models.NoteUpdate{Tags: &tags}, validators.FieldTags); err != nil {
		return models.DecryptedNote{}, fmt.Errorf("note validation before creation: %w", err)
	}

	return v.inner.CreateNote(ctx, ownerID, payload, tags, pinned)
}

func (v *NoteValidationService) ReadNote(ctx context.Context, noteID, callerID string) (models.DecryptedNote, error) {
	return v.inner.ReadNote(ctx, noteID, callerID)
}

func (v *NoteValidationService) UpdateNote(ctx context.Context, noteID, callerID string, changes models.NoteUpdate, expectedVersion int64) (models.DecryptedNote, error) {
	if err := v.validator.Validate(ctx, changes); err != nil {
		return models.DecryptedNote{}, fmt.Errorf("note validation before update: %w", err)
	}

	return v.inner.UpdateNote(ctx, noteID, callerID, changes, expectedVersion)
}

func (v *NoteValidationService) ShareNote(ctx context.Context, noteID, callerID, recipientID string, permission models.Permission) (models.Note, error) {
	if err := v.validator.Validate(ctx, permission); err != nil {
		return models.Note{}, fmt.Errorf("note validation before sharing: %w", err)
	}

	return v.inner.ShareNote(ctx, noteID, callerID, recipientID, permission)
}

func (v *NoteValidationService) UnshareNote(ctx context.Context, noteID, callerID, recipientID string) (models.Note, error) {
	return v.inner.UnshareNote(ctx, noteID, callerID, recipientID)
}

func (v *NoteValidationService) ListNotes(ctx context.Context, callerID string, filter models.NoteFilter) ([]models.DecryptedNote, error) {
	return v.inner.ListNotes(ctx, callerID, filter)
}

func (v *NoteValidationService) DeleteNote(ctx context.Context, noteID, callerID string, expectedVersion int64) error {
	return v.inner.DeleteNote(ctx, noteID, callerID, expectedVersion)
}

func (v *NoteValidationService) RestoreNote(ctx context.Context, noteID, callerID string, expectedVersion int64) error {
	return v.inner.RestoreNote(ctx, noteID, callerID, expectedVersion)
}

func (v *NoteValidationService) PurgeNote(ctx context.Context, noteID, callerID string) error {
	return v.inner.PurgeNote(ctx, noteID, callerID)
}
