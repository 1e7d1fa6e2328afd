package chat

import (
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"guildchat/internal/app/user"
	"guildchat/internal/pkg/logx"
)

const (
	// outboundBuffer is the per-connection queue size for outbound events.
	outboundBuffer = 256

	// UnknownSession is the session ID bound to connections that declared none.
	UnknownSession = "unknown-session"

	// MaxUsernameLength bounds display names in presence snapshots, in characters.
	MaxUsernameLength = 64
)

// ErrHubClosed is returned by Connect after Shutdown.
var ErrHubClosed = errors.New("hub is shut down")

// Connection is one live transport link. Its current channel is owned by the Hub.
type Connection struct {
	id        string
	identity  user.Identity
	sessionID string

	// channel is the joined channel, empty while unjoined. Guarded by Hub.mu.
	channel string

	// send queues outbound events; it is closed on disconnect.
	send chan Event

	// closed is set once send has been closed. Guarded by Hub.mu.
	closed bool
}

// ID returns the connection identifier.
func (c *Connection) ID() string { return c.id }

// UserID returns the user bound to the connection at connect time.
func (c *Connection) UserID() string { return c.identity.ID }

// SessionID returns the session declared at connect time.
func (c *Connection) SessionID() string { return c.sessionID }

// Outbound returns the queue of events to write to the peer. It is closed when
// the connection is disconnected.
func (c *Connection) Outbound() <-chan Event { return c.send }

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithClock replaces time.Now, letting tests drive the join limiter.
func WithClock(now func() time.Time) HubOption {
	return func(h *Hub) { h.now = now }
}

// WithJoinInterval sets the minimum spacing between accepted joins of one user.
func WithJoinInterval(d time.Duration) HubOption {
	return func(h *Hub) { h.joins = NewJoinLimiter(d) }
}

// Hub is the channel membership coordinator. A single mutex guards the session
// registry, the presence table and the join limiter together, so every transition
// and every snapshot it broadcasts observe one consistent state.
type Hub struct {
	// mu serializes every transition across registry, presence and joins.
	mu sync.Mutex

	registry *SessionRegistry
	presence *PresenceTable
	joins    *JoinLimiter

	// closed is set by Shutdown; later connects are refused.
	closed bool

	now      func() time.Time
	validate *validator.Validate

	// structured logger with Hub context.
	logger zerolog.Logger
}

// NewHub constructs an empty Hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		registry: NewSessionRegistry(),
		presence: NewPresenceTable(),
		joins:    NewJoinLimiter(DefaultJoinInterval),
		now:      time.Now,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logx.Component("hub"),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Connect registers a new unjoined connection for identity. An empty sessionID is
// bound as UnknownSession. Connecting with an ID that is already live first runs
// the full disconnect cleanup for the previous connection.
func (h *Hub) Connect(connID string, identity user.Identity, sessionID string) (*Connection, error) {
	if sessionID == "" {
		sessionID = UnknownSession
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	if _, ok := h.registry.Lookup(connID); ok {
		h.logger.Warn().Str("connection_id", connID).Msg("Connection ID reused. Replacing previous connection.")
		h.disconnectLocked(connID)
	}

	conn := &Connection{
		id:        connID,
		identity:  identity,
		sessionID: sessionID,
		send:      make(chan Event, outboundBuffer),
	}
	h.registry.RegisterConnection(conn)

	h.logger.Info().
		Str("connection_id", connID).
		Str("user_id", identity.ID).
		Str("session_id", sessionID).
		Int("user_sessions", h.registry.Sessions(identity.ID)).
		Msg("Connection registered.")

	return conn, nil
}

// Join moves a connection into p.ChannelID. It reports whether the join was
// accepted. Spoofed identities or sessions, malformed payloads and joins within
// the rate-limit interval are dropped without any state change or broadcast.
func (h *Hub) Join(connID string, p JoinChannelPayload) bool {
	if err := h.validate.Struct(p); err != nil {
		h.logger.Warn().Err(err).Str("connection_id", connID).Msg("Dropping malformed joinChannel payload.")
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.registry.Lookup(connID)
	if !ok {
		h.logger.Warn().Str("connection_id", connID).Msg("Join from unknown connection dropped.")
		return false
	}

	logger := h.logger.With().
		Str("connection_id", connID).
		Str("user_id", conn.identity.ID).
		Str("session_id", conn.sessionID).
		Str("channel_id", p.ChannelID).
		Logger()

	if p.UserID != conn.identity.ID {
		logger.Warn().Str("claimed_user_id", p.UserID).Msg("Join with mismatched user dropped.")
		return false
	}

	if p.SessionID != "" && p.SessionID != conn.sessionID {
		logger.Warn().Str("claimed_session_id", p.SessionID).Msg("Join with mismatched session dropped.")
		return false
	}

	if !h.joins.TryAcceptJoin(p.UserID, h.now()) {
		logger.Info().Dur("min_interval", h.joins.Interval()).Msg("Join rate limited.")
		return false
	}

	displayName := p.Username
	if displayName == "" {
		displayName = conn.identity.Username
	}
	displayName = truncateName(displayName)

	// Re-joining the current channel keeps membership and only refreshes the name.
	if conn.channel != p.ChannelID {
		h.leaveChannelLocked(conn)
		h.registry.SetChannel(conn, p.ChannelID)
	}
	h.presence.AddUser(p.ChannelID, p.UserID, displayName)

	logger.Info().Msg("Connection joined channel.")

	h.broadcastPresenceLocked(p.ChannelID)
	h.deliverLocked(conn, Event{
		Name: EventChannelJoined,
		Data: ChannelJoinedPayload{ChannelID: p.ChannelID},
	})

	return true
}

// Leave moves a connection out of its current channel. Leaving while unjoined is
// a no-op; a mismatched session is dropped.
func (h *Hub) Leave(connID string, p LeaveChannelPayload) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.registry.Lookup(connID)
	if !ok {
		return
	}

	if p.SessionID != "" && p.SessionID != conn.sessionID {
		h.logger.Warn().
			Str("connection_id", connID).
			Str("session_id", conn.sessionID).
			Str("claimed_session_id", p.SessionID).
			Msg("Leave with mismatched session dropped.")
		return
	}

	if conn.channel == "" {
		return
	}

	h.leaveChannelLocked(conn)
}

// Disconnect removes a connection, clearing its presence and its session, and
// closes its outbound queue. Unknown or already removed connections are ignored.
func (h *Hub) Disconnect(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.disconnectLocked(connID)
}

// CurrentChannel returns the channel connID is joined to, empty when unjoined.
// ok is false for unknown connections.
func (h *Hub) CurrentChannel(connID string) (channelID string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.registry.Lookup(connID)
	if !ok {
		return "", false
	}
	return conn.channel, true
}

// Presence returns the current snapshot of channelID; empty when nobody is present.
func (h *Hub) Presence(channelID string) []Member {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.presence.Members(channelID)
}

// Broadcast queues ev for every connection joined to channelID and returns how
// many connections accepted it.
func (h *Hub) Broadcast(channelID string, ev Event) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.broadcastLocked(channelID, ev)
}

// Unicast queues ev for one connection.
func (h *Hub) Unicast(connID string, ev Event) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.registry.Lookup(connID)
	if !ok {
		return false
	}
	return h.deliverLocked(conn, ev)
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.registry.Len()
}

// Shutdown disconnects every connection and refuses later connects.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down Hub...")

	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for _, conn := range h.registry.connections() {
		h.disconnectLocked(conn.id)
	}

	h.logger.Info().Msg("Hub shutdown complete.")
}

// sender returns the identity and joined channel of connID.
func (h *Hub) sender(connID string) (userID, channelID string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.registry.Lookup(connID)
	if !ok {
		return "", "", false
	}
	return conn.identity.ID, conn.channel, true
}

func (h *Hub) disconnectLocked(connID string) {
	conn, ok := h.registry.Lookup(connID)
	if !ok {
		h.logger.Debug().Str("connection_id", connID).Msg("Disconnect for unknown connection ignored.")
		return
	}

	h.leaveChannelLocked(conn)

	userID, sessionID, _ := h.registry.UnregisterConnection(connID)

	if !conn.closed {
		conn.closed = true
		close(conn.send)
	}

	h.logger.Info().
		Str("connection_id", connID).
		Str("user_id", userID).
		Str("session_id", sessionID).
		Int("user_sessions", h.registry.Sessions(userID)).
		Msg("Connection removed.")
}

// leaveChannelLocked moves conn out of its channel. The user stays present while
// another of its connections remains joined there; otherwise it is removed and
// the remaining subscribers receive a fresh snapshot.
func (h *Hub) leaveChannelLocked(conn *Connection) {
	channelID := conn.channel
	if channelID == "" {
		return
	}

	userID := conn.identity.ID
	hasOther := h.registry.HasOtherConnectionInChannel(userID, channelID, conn.id)

	h.registry.SetChannel(conn, "")

	logger := h.logger.With().
		Str("connection_id", conn.id).
		Str("user_id", userID).
		Str("channel_id", channelID).
		Logger()

	if hasOther {
		logger.Info().Msg("Connection left channel. User has other connections there, keeping presence.")
		return
	}

	remaining := h.presence.RemoveUser(channelID, userID)
	logger.Info().Int("remaining_users", remaining).Msg("Connection left channel. User removed from presence.")

	if remaining > 0 {
		h.broadcastPresenceLocked(channelID)
	}
}

// truncateName cuts name to MaxUsernameLength characters.
func truncateName(name string) string {
	if utf8.RuneCountInString(name) <= MaxUsernameLength {
		return name
	}
	return string([]rune(name)[:MaxUsernameLength])
}

func (h *Hub) broadcastPresenceLocked(channelID string) {
	h.broadcastLocked(channelID, Event{
		Name: EventUpdatePresence,
		Data: h.presence.Members(channelID),
	})
}

func (h *Hub) broadcastLocked(channelID string, ev Event) int {
	delivered := 0
	for _, conn := range h.registry.Subscribers(channelID) {
		if h.deliverLocked(conn, ev) {
			delivered++
		}
	}
	return delivered
}

// deliverLocked queues ev without blocking. A full queue drops the event for that connection.
func (h *Hub) deliverLocked(conn *Connection, ev Event) bool {
	if conn.closed {
		return false
	}

	select {
	case conn.send <- ev:
		return true
	default:
		h.logger.Warn().
			Str("connection_id", conn.id).
			Str("event", string(ev.Name)).
			Int("queue_len", len(conn.send)).
			Msg("Outbound queue full, dropping event.")
		return false
	}
}
