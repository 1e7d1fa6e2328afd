/*
Package chat is the presence and session-multiplexing engine of the chat backend.

The Hub tracks every live connection of every user, maps each connection to at most
one joined channel, keeps per-channel presence consistent across a user's many
sessions, rate-limits channel switching, and fans presence snapshots and chat
messages out to the connections subscribed to a channel. The Relay persists chat
messages before fanning them out, and Client adapts a websocket to both.
*/
package chat

import (
	"encoding/json"
	"time"
)

// EventName identifies an inbound or outbound event on a connection.
type EventName string

// Inbound events.
const (
	EventJoinChannel  EventName = "joinChannel"
	EventLeaveChannel EventName = "leaveChannel"
	EventSendMessage  EventName = "sendMessage"
)

// Outbound events.
const (
	EventChannelJoined  EventName = "channelJoined"
	EventUpdatePresence EventName = "updatePresence"
	EventReceiveMessage EventName = "receiveMessage"
	EventMessageError   EventName = "messageError"
)

// timestampLayout renders server timestamps in UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Envelope is the wire frame for inbound events.
type Envelope struct {
	Event EventName       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Event is an outbound event queued for one connection.
type Event struct {
	Name EventName `json:"event"`
	Data any       `json:"data"`
}

// JoinChannelPayload is the body of a joinChannel event.
type JoinChannelPayload struct {
	ChannelID string `json:"channelId" validate:"required,max=128"`
	UserID    string `json:"userId" validate:"required,max=128"`
	Username  string `json:"username"`
	SessionID string `json:"sessionId" validate:"max=128"`
}

// LeaveChannelPayload is the body of a leaveChannel event.
// ChannelID is informational; a connection always leaves its current channel.
type LeaveChannelPayload struct {
	ChannelID string `json:"channelId" validate:"max=128"`
	SessionID string `json:"sessionId" validate:"max=128"`
}

// ChannelJoinedPayload acknowledges an accepted join to the requesting connection.
type ChannelJoinedPayload struct {
	ChannelID string `json:"channelId"`
}

// MessageErrorPayload reports a message that was not sent.
type MessageErrorPayload struct {
	Error           string         `json:"error"`
	OriginalMessage map[string]any `json:"originalMessage"`
}

// FormatTimestamp renders t the way outbound events carry server timestamps.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
