package jwt

import (
	"github.com/golang-jwt/jwt"

	"guildchat/internal/app/user"
)

// Payload is the claim set of a guildchat bearer credential.
type Payload struct {
	// StandardClaims carries exp, iat and iss.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the authenticated user identifier.
	ID string `json:"id"`

	// Username is the display name known to the identity provider at issue time.
	Username string `json:"username"`
}

// Identity converts the claims into the identity bound to a connection.
func (p *Payload) Identity() user.Identity {
	return user.Identity{
		ID:       p.ID,
		Username: p.Username,
	}
}
