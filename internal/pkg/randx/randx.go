/*
Package randx generates identifiers used by the chat backend.

Connection and message identifiers are UUID v4 strings.
*/
package randx

import (
	"github.com/google/uuid"
)

// ConnectionIDPrefix is prepended to every generated connection identifier.
const ConnectionIDPrefix = "conn_"

// MessageID generates a UUID v4 string identifying a persisted message.
func MessageID() string {
	return uuid.New().String()
}

// ConnectionID generates an identifier for one live transport link.
func ConnectionID() string {
	return ConnectionIDPrefix + uuid.New().String()
}
