/*
Package message defines the durable chat message record and the narrow store
interface the relay persists through.
*/
package message

import (
	"context"
	"errors"
	"time"
)

// ErrPersistence marks every failure of a Store to durably record or read messages.
var ErrPersistence = errors.New("message persistence failed")

// Message is one persisted chat message.
type Message struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channelId"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is the external message persistence collaborator.
type Store interface {
	// Save records a message and returns it with its assigned ID and stored timestamp.
	Save(ctx context.Context, channelID, userID, text string, at time.Time) (Message, error)

	// QueryRecent returns up to limit of the newest messages of a channel in chronological order.
	QueryRecent(ctx context.Context, channelID string, limit int) ([]Message, error)

	// Close releases the store's resources.
	Close()
}
