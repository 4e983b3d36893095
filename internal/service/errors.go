// SPDX-License-Identifier: Apache-2.0

package service

import "errors"

var (
	// ErrAccessDenied is returned whenever the caller may not perform the
	// requested operation on a note. It deliberately covers the
	// "note does not exist" case as well, so a denial never reveals
	// whether the note id is real.
	ErrAccessDenied = errors.New("access denied")

	// ErrNoteDeleted is returned to the owner when a write targets a
	// soft-deleted note. The note must be restored first.
	ErrNoteDeleted = errors.New("note is deleted")

	// ErrSelfShare is returned when the owner tries to share a note with
	// themselves. The owner already holds a wrapped key.
	ErrSelfShare = errors.New("cannot share a note with its owner")

	// ErrShareNotFound is returned by Unshare when the recipient has no
	// share entry on the note.
	ErrShareNotFound = errors.New("no share entry for recipient")
)
