package message

import (
	"context"
	"fmt"
	"sync"
	"time"

	"guildchat/internal/pkg/randx"
)

// MemoryStore keeps messages in process memory. It backs development runs and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	channels map[string][]Message
	closed   bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{channels: make(map[string][]Message)}
}

// Save appends a message to the channel log.
func (s *MemoryStore) Save(ctx context.Context, channelID, userID, text string, at time.Time) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, fmt.Errorf("save message: %w: %v", ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Message{}, fmt.Errorf("save message: %w: store closed", ErrPersistence)
	}

	msg := Message{
		ID:        randx.MessageID(),
		ChannelID: channelID,
		SenderID:  userID,
		Content:   text,
		Timestamp: at.UTC(),
	}
	s.channels[channelID] = append(s.channels[channelID], msg)

	return msg, nil
}

// QueryRecent returns the last limit messages of a channel, oldest first.
func (s *MemoryStore) QueryRecent(ctx context.Context, channelID string, limit int) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("query messages: %w: %v", ErrPersistence, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("query messages: %w: store closed", ErrPersistence)
	}

	log := s.channels[channelID]
	if limit > 0 && len(log) > limit {
		log = log[len(log)-limit:]
	}

	out := make([]Message, len(log))
	copy(out, log)

	return out, nil
}

// Close makes every later call fail with ErrPersistence.
func (s *MemoryStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
