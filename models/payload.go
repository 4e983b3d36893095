package models

// Note payload formats. Format is part of the encrypted payload, so the
// storage backend cannot tell a markdown note from a plain one.
const (
	FormatPlain    = "plain"
	FormatMarkdown = "markdown"
)

// NotePayload is the plaintext content of a note. It exists only in memory
// during a single request's decrypt→mutate→re-encrypt sequence and is never
// persisted.
type NotePayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Format  string `json:"format"`
}

// NoteUpdate describes a partial update of a note. Nil fields keep their
// current value, so an update touching only the title cannot clobber the
// content decrypted from the previous version.
type NoteUpdate struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Format  *string `json:"format,omitempty"`

	// Tags and Pinned live outside the ciphertext but follow the same
	// compare-and-swap write path as payload changes.
	Tags   *[]string `json:"tags,omitempty"`
	Pinned *bool     `json:"pinned,omitempty"`
}

// Empty reports whether the update carries no changes at all.
func (u NoteUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Format == nil &&
		u.Tags == nil && u.Pinned == nil
}

// NoteFilter narrows a listing to notes matching all set criteria.
type NoteFilter struct {
	// Tag, when non-empty, keeps only notes carrying this tag.
	Tag string

	// Pinned, when non-nil, keeps only notes with a matching pinned flag.
	Pinned *bool

	// IncludeDeleted also returns soft-deleted notes. Listing honors it
	// for the owner only; sharees never see deleted notes.
	IncludeDeleted bool
}

// DecryptedNote pairs a persisted note with its decrypted payload for the
// caller that requested it. Read and List return this so the typed result
// of the decryption is never silently substituted with empty content.
type DecryptedNote struct {
	Note    Note
	Payload NotePayload
}
