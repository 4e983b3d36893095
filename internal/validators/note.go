// SPDX-License-Identifier: Apache-2.0

package validators

import (
	"context"
	"fmt"

	"github.com/notevault/notevault/models"
)

// Field name constants used to specify which fields should be validated.
// These constants are passed to Validate to restrict validation to a subset
// of fields (field-level scoping).
const (
	// FieldTitle targets the plaintext title of a note payload.
	FieldTitle = "title"

	// FieldFormat targets the payload format marker (plain or markdown).
	FieldFormat = "format"

	// FieldTags targets the plaintext tag list of a note.
	FieldTags = "tags"

	// FieldPermission targets the access level of a share entry.
	FieldPermission = "permission"

	// FieldVersion targets the optimistic concurrency version of a write.
	FieldVersion = "version"
)

// Structural limits enforced on plaintext note metadata.
const (
	MaxTitleLength = 256
	MaxTagLength   = 64
	MaxTags        = 32
)

// allowedFormats is the exhaustive set of payload formats accepted by the
// validator. Any format not present here is considered invalid.
var allowedFormats = []string{
	models.FormatPlain,
	models.FormatMarkdown,
}

// NoteValidator implements the Validator interface for the note domain
// models: NotePayload, NoteUpdate, and Permission.
//
// It supports both value and pointer receivers for every model type and
// allows optional field-level scoping via variadic field name arguments.
type NoteValidator struct {
}

// NewNoteValidator constructs a new NoteValidator and returns it as the
// Validator interface.
func NewNoteValidator() Validator {
	return &NoteValidator{}
}

// Validate dispatches validation to the appropriate type-specific method.
func (v *NoteValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.NotePayload:
		return v.validatePayload(ctx, value, fields...)
	case *models.NotePayload:
		return v.validatePayload(ctx, *value, fields...)

	case models.NoteUpdate:
		return v.validateUpdate(ctx, value, fields...)
	case *models.NoteUpdate:
		return v.validateUpdate(ctx, *value, fields...)

	case models.Permission:
		if !value.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidPermission, value)
		}
		return nil

	default:
		return ErrUnsupportedType
	}
}

func isValidFormat(format string) bool {
	for _, f := range allowedFormats {
		if format == f {
			return true
		}
	}
	return false
}

func validateTags(tags []string) error {
	if len(tags) > MaxTags {
		return ErrTooManyTags
	}
	for _, tag := range tags {
		if tag == "" {
			return ErrEmptyTag
		}
		if len(tag) > MaxTagLength {
			return fmt.Errorf("%w: %q", ErrTagTooLong, tag)
		}
	}
	return nil
}

func (v *NoteValidator) validatePayload(_ context.Context, payload models.NotePayload, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldTitle, FieldFormat}
	}

	for _, f := range fields {
		switch f {
		case FieldTitle:
			if payload.Title == "" {
				return ErrEmptyTitle
			}
			if len(payload.Title) > MaxTitleLength {
				return ErrTitleTooLong
			}
		case FieldFormat:
			if !isValidFormat(payload.Format) {
				return fmt.Errorf("%w: %q", ErrInvalidFormat, payload.Format)
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *NoteValidator) validateUpdate(_ context.Context, update models.NoteUpdate, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldTitle, FieldFormat, FieldTags}
	}

	for _, f := range fields {
		switch f {
		case FieldTitle:
			if update.Title != nil && *update.Title == "" {
				return ErrEmptyTitle
			}
			if update.Title != nil && len(*update.Title) > MaxTitleLength {
				return ErrTitleTooLong
			}
		case FieldFormat:
			if update.Format != nil && !isValidFormat(*update.Format) {
				return fmt.Errorf("%w: %q", ErrInvalidFormat, *update.Format)
			}
		case FieldTags:
			if update.Tags != nil {
				if err := validateTags(*update.Tags); err != nil {
					return err
				}
			}
		default:
			return ErrUnknownField
		}
	}

	if update.Empty() {
		return ErrNoFieldsToUpdate
	}

	return nil
}
