package models

import "time"

// Permission is the access level granted to a share recipient.
type Permission string

const (
	// PermissionViewer allows the recipient to decrypt and read the note.
	PermissionViewer Permission = "viewer"

	// PermissionEditor allows the recipient to decrypt, read, and rewrite
	// the note's content through the regular update path.
	PermissionEditor Permission = "editor"
)

// Valid reports whether p is one of the known permission values.
func (p Permission) Valid() bool {
	return p == PermissionViewer || p == PermissionEditor
}

// CipherBundle is the authenticated-encryption output stored for a note.
// The three segments are persisted separately so the storage layer never
// has to parse ciphertext to locate the nonce or the tag.
type CipherBundle struct {
	// IV is the fresh per-encryption nonce. Never reused with the same key.
	IV []byte `json:"iv"`

	// AuthTag is the AEAD authentication tag, verified before any
	// plaintext is returned.
	AuthTag []byte `json:"auth_tag"`

	// Ciphertext is the encrypted note payload.
	Ciphertext []byte `json:"ciphertext"`
}

// ShareEntry grants one recipient an independent decrypt path to a note.
// WrappedKey is the note's symmetric key encrypted under the recipient's
// public key; all entries of one note unwrap to the same raw key.
type ShareEntry struct {
	RecipientID string     `json:"recipient_id"`
	Permission  Permission `json:"permission"`
	WrappedKey  []byte     `json:"wrapped_key"`
}

// Note is the persisted envelope-encrypted note record.
// Plaintext title and content never appear here; they exist only inside
// Bundle.Ciphertext and transiently in memory as a [NotePayload].
type Note struct {
	// ID is assigned at creation and immutable afterwards.
	ID string `json:"id"`

	// OwnerID identifies the identity that created the note. Immutable.
	OwnerID string `json:"owner_id"`

	// Bundle holds the encrypted payload.
	Bundle CipherBundle `json:"bundle"`

	// OwnerWrappedKey is the note's symmetric key wrapped under the
	// owner's public key. Non-nil for every encrypted note.
	OwnerWrappedKey []byte `json:"owner_wrapped_key"`

	// Shares lists the recipients allowed to decrypt the note, in the
	// order they were granted access. Mutated by the owner only.
	Shares []ShareEntry `json:"shares"`

	// Tags and Pinned are plaintext metadata used for listing/filtering.
	Tags   []string `json:"tags"`
	Pinned bool     `json:"pinned"`

	// DeletedAt marks a soft-deleted note. Soft-deleted notes are hidden
	// from listings but remain decryptable by the owner for restore.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	// Version increases by exactly one on every successful write. Writes
	// are accepted only when the caller's expected version matches the
	// stored version at the instant of the compare-and-swap.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShareFor returns the share entry for the given recipient, if any.
func (n *Note) ShareFor(recipientID string) (ShareEntry, bool) {
	for _, s := range n.Shares {
		if s.RecipientID == recipientID {
			return s, true
		}
	}
	return ShareEntry{}, false
}

// TableName returns the name of the database table
// associated with the Note model.
func (n Note) TableName() string {
	return "notes"
}
