package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"guildchat/internal/pkg/errs"
	"guildchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192
)

// Client adapts one websocket to a Hub connection. Inbound frames are handled
// in arrival order by ReadPump; WritePump drains the connection's outbound queue.
type Client struct {
	hub   *Hub
	relay *Relay

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// the Hub connection this socket feeds.
	peer *Connection

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient binds wsConn to the registered peer connection.
func NewClient(hub *Hub, relay *Relay, wsConn *websocket.Conn, peer *Connection) *Client {
	return &Client{
		hub:   hub,
		relay: relay,
		conn:  wsConn,
		peer:  peer,
		logger: logx.Component("client").With().
			Str("connection_id", peer.ID()).
			Str("user_id", peer.UserID()).
			Str("session_id", peer.SessionID()).
			Logger(),
	}
}

// ReadPump reads frames until the socket fails or closes, then disconnects the
// peer from the Hub. It blocks and should run on the handler goroutine.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		c.processInbound(frame)
	}
}

// cleanupOnDisconnect runs the Hub disconnect for the peer and closes the socket.
// Hub.Disconnect is idempotent, so a Shutdown that already removed the peer is fine.
func (c *Client) cleanupOnDisconnect() {
	c.hub.Disconnect(c.peer.ID())

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// processInbound decodes one frame and dispatches it. Malformed frames are dropped.
func (c *Client) processInbound(frame []byte) {
	var envelope Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		return
	}

	switch envelope.Event {
	case EventJoinChannel:
		var payload JoinChannelPayload
		if !c.decode(envelope, &payload) {
			return
		}
		c.hub.Join(c.peer.ID(), payload)

	case EventLeaveChannel:
		var payload LeaveChannelPayload
		if len(envelope.Data) > 0 && !c.decode(envelope, &payload) {
			return
		}
		c.hub.Leave(c.peer.ID(), payload)

	case EventSendMessage:
		var payload map[string]any
		if !c.decode(envelope, &payload) {
			return
		}
		if _, err := c.relay.SendMessage(context.Background(), c.peer.ID(), payload); err != nil {
			c.logger.Debug().Err(err).Int("code", errs.CodeOf(err)).Msg("Message not relayed")
		}

	default:
		c.logger.Warn().Str("event", string(envelope.Event)).Msg("Client sent unsupported event")
	}
}

func (c *Client) decode(envelope Envelope, dst any) bool {
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		c.logger.Warn().Err(err).Str("event", string(envelope.Event)).Msg("Client sent invalid payload")
		return false
	}
	return true
}

// WritePump writes queued events and heartbeats until the queue is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	outbound := c.peer.Outbound()

	for {
		select {
		case ev, ok := <-outbound:
			if !c.writeEvent(ev, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeEvent writes one event, or a close frame when the queue was closed.
// It returns false when WritePump should stop.
func (c *Client) writeEvent(ev Event, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	frame, err := json.Marshal(ev)
	if err != nil {
		c.logger.Error().Err(err).Str("event", string(ev.Name)).Msg("Error marshaling event")
		return true
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePing sends a heartbeat ping. It returns false when WritePump should stop.
func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
