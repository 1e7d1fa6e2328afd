package chat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"guildchat/internal/app/user"
)

func newConn(id, userID, sessionID string) *Connection {
	return &Connection{
		id:        id,
		identity:  user.Identity{ID: userID},
		sessionID: sessionID,
		send:      make(chan Event, 1),
	}
}

func TestSessionRegistry_Register_And_Unregister(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()

	// Given one user with two sessions
	registry.RegisterConnection(newConn("c1", "u", "s1"))
	registry.RegisterConnection(newConn("c2", "u", "s2"))
	req.Equal(2, registry.Sessions("u"))
	req.Equal(2, registry.Len())

	// When one connection closes
	userID, sessionID, ok := registry.UnregisterConnection("c1")

	// Then only its session is gone
	req.True(ok)
	req.Equal("u", userID)
	req.Equal("s1", sessionID)
	req.False(registry.HasSession("u", "s1"))
	req.True(registry.HasSession("u", "s2"))

	// When the last one closes the user entry disappears
	_, _, ok = registry.UnregisterConnection("c2")
	req.True(ok)
	req.Zero(registry.Sessions("u"))
	req.Empty(registry.sessions)
}

func TestSessionRegistry_Unregister_Unknown(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()

	_, _, ok := registry.UnregisterConnection("missing")
	req.False(ok)
}

func TestSessionRegistry_Shared_Session_Survives_Until_Last_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()

	// Given two connections (a reconnect overlap) declaring the same session
	registry.RegisterConnection(newConn("c1", "u", "tab"))
	registry.RegisterConnection(newConn("c2", "u", "tab"))

	registry.UnregisterConnection("c1")

	// Then the session set is not empty while c2 is live
	req.True(registry.HasSession("u", "tab"))
	req.Equal(1, registry.Sessions("u"))
}

func TestSessionRegistry_Reregister_Overwrites(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()

	registry.RegisterConnection(newConn("c1", "u", "s1"))
	registry.RegisterConnection(newConn("c1", "u", "s2"))

	req.Equal(1, registry.Len())
	req.False(registry.HasSession("u", "s1"))
	req.True(registry.HasSession("u", "s2"))
}

func TestSessionRegistry_HasOtherConnectionInChannel(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()
	c1 := newConn("c1", "u", "s1")
	c2 := newConn("c2", "u", "s2")
	c3 := newConn("c3", "v", "s3")
	registry.RegisterConnection(c1)
	registry.RegisterConnection(c2)
	registry.RegisterConnection(c3)

	registry.SetChannel(c1, "room")
	registry.SetChannel(c3, "room")
	req.False(registry.HasOtherConnectionInChannel("u", "room", "c1"))
	req.True(registry.HasOtherConnectionInChannel("u", "room", "c2"))

	registry.SetChannel(c2, "room")
	req.True(registry.HasOtherConnectionInChannel("u", "room", "c1"))
	req.Len(registry.Subscribers("room"), 3)

	// Moving c2 elsewhere updates both indexes
	registry.SetChannel(c2, "lobby")
	req.False(registry.HasOtherConnectionInChannel("u", "room", "c1"))
	req.Len(registry.Subscribers("room"), 2)
	req.Equal([]*Connection{c2}, registry.Subscribers("lobby"))

	// Unregistering a joined connection clears its subscriptions
	registry.UnregisterConnection("c2")
	req.Empty(registry.Subscribers("lobby"))
	req.Empty(registry.subscribers["lobby"])
}
