package chat

import "github.com/samber/lo"

// memberKey indexes live connections by (user, channel).
type memberKey struct {
	userID    string
	channelID string
}

// SessionRegistry tracks live connections, the sessions each user has open, and
// which connections are subscribed to which channel.
//
// It is not safe for concurrent use; Hub serializes every call under its lock.
type SessionRegistry struct {
	// conns maps a connection ID to its live connection.
	conns map[string]*Connection

	// sessions maps a user ID to its open session IDs and the number of live
	// connections declaring each one.
	sessions map[string]map[string]int

	// members counts the connections of a user currently joined to a channel.
	members map[memberKey]int

	// subscribers maps a channel ID to the connections currently joined to it.
	subscribers map[string]map[string]*Connection
}

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		conns:       make(map[string]*Connection),
		sessions:    make(map[string]map[string]int),
		members:     make(map[memberKey]int),
		subscribers: make(map[string]map[string]*Connection),
	}
}

// RegisterConnection records conn and adds its session to the owner's session set.
// Registering an ID that is already live replaces the previous mapping.
func (r *SessionRegistry) RegisterConnection(conn *Connection) {
	if _, ok := r.conns[conn.id]; ok {
		r.UnregisterConnection(conn.id)
	}

	r.conns[conn.id] = conn

	userID := conn.identity.ID
	if r.sessions[userID] == nil {
		r.sessions[userID] = make(map[string]int)
	}
	r.sessions[userID][conn.sessionID]++

	if conn.channel != "" {
		r.subscribe(conn, conn.channel)
	}
}

// UnregisterConnection removes a connection and returns the user and session it
// was bound to. ok is false when the ID is not registered.
// The user's entry is dropped once its last session closes.
func (r *SessionRegistry) UnregisterConnection(connID string) (userID, sessionID string, ok bool) {
	conn, ok := r.conns[connID]
	if !ok {
		return "", "", false
	}

	if conn.channel != "" {
		r.unsubscribe(conn, conn.channel)
	}
	delete(r.conns, connID)

	userID, sessionID = conn.identity.ID, conn.sessionID
	if sessions := r.sessions[userID]; sessions != nil {
		if sessions[sessionID]--; sessions[sessionID] <= 0 {
			delete(sessions, sessionID)
		}
		if len(sessions) == 0 {
			delete(r.sessions, userID)
		}
	}

	return userID, sessionID, true
}

// Lookup returns the live connection registered under connID.
func (r *SessionRegistry) Lookup(connID string) (*Connection, bool) {
	conn, ok := r.conns[connID]
	return conn, ok
}

// SetChannel moves conn to channelID, or out of any channel when channelID is empty,
// keeping the member and subscriber indexes in step with conn.channel.
func (r *SessionRegistry) SetChannel(conn *Connection, channelID string) {
	if conn.channel == channelID {
		return
	}

	_, live := r.conns[conn.id]

	if conn.channel != "" && live {
		r.unsubscribe(conn, conn.channel)
	}

	conn.channel = channelID

	if channelID != "" && live {
		r.subscribe(conn, channelID)
	}
}

// HasOtherConnectionInChannel reports whether userID has a live connection other
// than excludingConnID joined to channelID.
func (r *SessionRegistry) HasOtherConnectionInChannel(userID, channelID, excludingConnID string) bool {
	count := r.members[memberKey{userID: userID, channelID: channelID}]

	if excluded, ok := r.conns[excludingConnID]; ok &&
		excluded.identity.ID == userID && excluded.channel == channelID {
		count--
	}

	return count > 0
}

// Sessions returns the number of open sessions of userID.
func (r *SessionRegistry) Sessions(userID string) int {
	return len(r.sessions[userID])
}

// HasSession reports whether userID has sessionID open.
func (r *SessionRegistry) HasSession(userID, sessionID string) bool {
	_, ok := r.sessions[userID][sessionID]
	return ok
}

// Subscribers returns the connections currently joined to channelID.
func (r *SessionRegistry) Subscribers(channelID string) []*Connection {
	return lo.Values(r.subscribers[channelID])
}

// Len returns the number of live connections.
func (r *SessionRegistry) Len() int {
	return len(r.conns)
}

// connections returns every live connection.
func (r *SessionRegistry) connections() []*Connection {
	return lo.Values(r.conns)
}

func (r *SessionRegistry) subscribe(conn *Connection, channelID string) {
	r.members[memberKey{userID: conn.identity.ID, channelID: channelID}]++

	if r.subscribers[channelID] == nil {
		r.subscribers[channelID] = make(map[string]*Connection)
	}
	r.subscribers[channelID][conn.id] = conn
}

func (r *SessionRegistry) unsubscribe(conn *Connection, channelID string) {
	key := memberKey{userID: conn.identity.ID, channelID: channelID}
	if r.members[key]--; r.members[key] <= 0 {
		delete(r.members, key)
	}

	if subs := r.subscribers[channelID]; subs != nil {
		delete(subs, conn.id)
		if len(subs) == 0 {
			delete(r.subscribers, channelID)
		}
	}
}
