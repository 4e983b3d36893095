package models

import "time"

// Identity is an authenticated principal as seen by the notes core.
// Registration, login and session handling happen elsewhere; the core only
// consumes the identifier and the key pair.
//
// Both keys are held server-side (PEM-encoded) so the server can decrypt on
// the user's behalf during listing and search. This deliberately trades
// end-to-end confidentiality against a compromised server for server-side
// search; see DESIGN.md.
type Identity struct {
	// ID is the stable identifier of the principal.
	ID string `json:"id"`

	// PublicKey is the PEM-encoded RSA public key used to wrap note keys
	// for this identity.
	PublicKey []byte `json:"public_key"`

	// PrivateKey is the PEM-encoded RSA private key used to unwrap. It is
	// never exposed via JSON.
	PrivateKey []byte `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the Identity model.
func (i Identity) TableName() string {
	return "identities"
}
