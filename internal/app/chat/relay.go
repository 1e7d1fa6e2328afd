package chat

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"guildchat/internal/app/message"
	"guildchat/internal/pkg/errs"
	"guildchat/internal/pkg/logx"
)

const (
	// MaxContentBytes bounds the text of one chat message.
	MaxContentBytes = 5000

	// persistTimeout bounds one message store call.
	persistTimeout = 5 * time.Second
)

var (
	// ErrUnknownConnection is returned for sends from connections the Hub does not know.
	ErrUnknownConnection = errors.New("unknown connection")

	// ErrNotJoined is returned for sends from connections that are not in a channel.
	ErrNotJoined = errors.New("connection is not in a channel")
)

// Relay persists chat messages and fans them out to the sender's channel.
type Relay struct {
	hub   *Hub
	store message.Store

	// structured logger with Relay context.
	logger zerolog.Logger
}

// NewRelay constructs a Relay delivering through hub and persisting to store.
func NewRelay(hub *Hub, store message.Store) *Relay {
	return &Relay{
		hub:    hub,
		store:  store,
		logger: logx.Component("relay"),
	}
}

// SendMessage persists payload["text"] in the sender's current channel and
// broadcasts receiveMessage (payload plus timestamp and id) to every connection
// joined there, the sender included. Sends while unjoined are dropped. Invalid
// text or a store failure returns messageError to the sender only and nothing
// is broadcast.
//
// The store call runs without holding the Hub lock.
func (r *Relay) SendMessage(ctx context.Context, connID string, payload map[string]any) (message.Message, error) {
	userID, channelID, ok := r.hub.sender(connID)
	if !ok {
		r.logger.Warn().Str("connection_id", connID).Msg("Message from unknown connection dropped.")
		return message.Message{}, ErrUnknownConnection
	}

	logger := r.logger.With().
		Str("connection_id", connID).
		Str("user_id", userID).
		Str("channel_id", channelID).
		Logger()

	if channelID == "" {
		logger.Warn().Msg("User not in a channel, message not sent.")
		return message.Message{}, ErrNotJoined
	}

	text, customErr := messageText(payload)
	if customErr != nil {
		logger.Warn().Int("code", customErr.Code).Msg("Rejected message content.")
		r.reportError(connID, customErr.Message, payload)
		return message.Message{}, customErr
	}

	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	saved, err := r.store.Save(ctx, channelID, userID, text, r.hub.now())
	if err != nil {
		logger.Error().Err(err).Msg("Error saving message to store.")
		r.reportError(connID, errs.NewError(errs.ErrMessageStoreFailed).Message, payload)
		return message.Message{}, fmt.Errorf("relay message: %w", err)
	}

	outbound := maps.Clone(payload)
	if outbound == nil {
		outbound = make(map[string]any, 2)
	}
	outbound["timestamp"] = FormatTimestamp(saved.Timestamp)
	outbound["id"] = saved.ID

	delivered := r.hub.Broadcast(channelID, Event{Name: EventReceiveMessage, Data: outbound})

	logger.Debug().
		Str("message_id", saved.ID).
		Int("recipients", delivered).
		Msg("Message relayed.")

	return saved, nil
}

func (r *Relay) reportError(connID, reason string, payload map[string]any) {
	r.hub.Unicast(connID, Event{
		Name: EventMessageError,
		Data: MessageErrorPayload{
			Error:           reason,
			OriginalMessage: payload,
		},
	})
}

// messageText extracts and bounds the text field of a sendMessage payload.
func messageText(payload map[string]any) (string, *errs.CustomError) {
	raw, _ := payload["text"].(string)

	text := strings.TrimSpace(raw)
	if text == "" {
		return "", errs.NewError(errs.ErrMessageContentEmpty)
	}

	if len(text) > MaxContentBytes {
		return "", errs.NewError(errs.ErrMessageContentTooLong, MaxContentBytes)
	}

	return text, nil
}
