package db

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"guildchat/internal/app/message"
	"guildchat/internal/pkg/logx"
	"guildchat/internal/pkg/randx"
)

const (
	insertMessageSQL = `
INSERT INTO messages (id, channel_id, sender_id, content, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at`

	recentMessagesSQL = `
SELECT id, channel_id, sender_id, content, created_at
FROM messages
WHERE channel_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`
)

// Querier is the subset of *pgxpool.Pool used by MessageStore.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// MessageStore persists chat messages in PostgreSQL.
type MessageStore struct {
	q       Querier
	closeFn func()
}

// NewMessageStore wraps q. closeFn, when non-nil, is invoked by Close.
func NewMessageStore(q Querier, closeFn func()) *MessageStore {
	return &MessageStore{q: q, closeFn: closeFn}
}

// Save inserts a message. PostgreSQL keeps microsecond precision, so the returned
// timestamp is the stored one rather than at.
func (s *MessageStore) Save(ctx context.Context, channelID, userID, text string, at time.Time) (message.Message, error) {
	var id pgtype.UUID
	if err := id.Scan(randx.MessageID()); err != nil {
		return message.Message{}, fmt.Errorf("save message: %w: %v", message.ErrPersistence, err)
	}

	var storedAt time.Time
	err := s.q.QueryRow(ctx, insertMessageSQL, id, channelID, userID, text, at.UTC()).Scan(&id, &storedAt)
	if err != nil {
		switch {
		case IsUniqueViolation(err):
			logx.Error(err, "Message id collision", "channel_id", channelID)
		case IsCheckViolation(err):
			logx.Warn("Message rejected by schema constraint", "channel_id", channelID, "user_id", userID)
		}
		return message.Message{}, fmt.Errorf("save message: %w: %v", message.ErrPersistence, err)
	}

	return message.Message{
		ID:        uuidString(id),
		ChannelID: channelID,
		SenderID:  userID,
		Content:   text,
		Timestamp: storedAt.UTC(),
	}, nil
}

// QueryRecent reads the newest limit messages and returns them oldest first.
func (s *MessageStore) QueryRecent(ctx context.Context, channelID string, limit int) ([]message.Message, error) {
	rows, err := s.q.Query(ctx, recentMessagesSQL, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w: %v", message.ErrPersistence, err)
	}

	msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (message.Message, error) {
		var (
			id  pgtype.UUID
			msg message.Message
		)
		if err := row.Scan(&id, &msg.ChannelID, &msg.SenderID, &msg.Content, &msg.Timestamp); err != nil {
			return message.Message{}, err
		}
		msg.ID = uuidString(id)
		msg.Timestamp = msg.Timestamp.UTC()
		return msg, nil
	})
	if err != nil {
		return nil, fmt.Errorf("query messages: %w: %v", message.ErrPersistence, err)
	}

	slices.Reverse(msgs)

	if msgs == nil {
		msgs = []message.Message{}
	}

	return msgs, nil
}

// Ping checks database reachability.
func (s *MessageStore) Ping(ctx context.Context) error {
	if _, err := s.q.Exec(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("ping: %w: %v", message.ErrPersistence, err)
	}
	return nil
}

// Close releases the underlying pool.
func (s *MessageStore) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}
