/*
Package user defines the identity the chat core binds to each connection.

Identities are resolved upstream from a bearer credential; the core only consumes them.
*/
package user

// Identity is the authenticated user behind a connection.
type Identity struct {
	// ID is the stable user identifier.
	ID string `json:"userId"`

	// Username is the display name announced at connect time.
	Username string `json:"username"`
}

// UnknownUsername is shown in presence snapshots when no name was ever announced.
const UnknownUsername = "Unknown"
