package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"guildchat/internal/app/message"
)

// failingQuerier fails every call with err.
type failingQuerier struct {
	err error
}

type failingRow struct {
	err error
}

func (r failingRow) Scan(...any) error { return r.err }

func (q failingQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, q.err
}

func (q failingQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, q.err
}

func (q failingQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	return failingRow{err: q.err}
}

func TestMessageStore_Failures_Wrap_ErrPersistence(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	closed := false
	store := NewMessageStore(failingQuerier{err: errors.New("connection refused")}, func() { closed = true })

	_, err := store.Save(ctx, "general", "alice", "hi", time.Now())
	req.ErrorIs(err, message.ErrPersistence)

	_, err = store.QueryRecent(ctx, "general", 10)
	req.ErrorIs(err, message.ErrPersistence)

	req.ErrorIs(store.Ping(ctx), message.ErrPersistence)

	store.Close()
	req.True(closed)
}

// TestMessageStore_Postgres runs against a real database when TEST_DATABASE_URL is set.
func TestMessageStore_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	req := require.New(t)
	ctx := context.Background()

	pool, err := NewPool(ctx, dsn)
	req.NoError(err)
	store := NewMessageStore(pool, pool.Close)
	t.Cleanup(store.Close)

	channelID := "test-" + time.Now().Format("20060102150405.000000000")
	base := time.Now().UTC().Truncate(time.Millisecond)

	first, err := store.Save(ctx, channelID, "alice", "one", base)
	req.NoError(err)
	req.NotEmpty(first.ID)
	req.True(first.Timestamp.Equal(base))

	_, err = store.Save(ctx, channelID, "bob", "two", base.Add(time.Second))
	req.NoError(err)
	_, err = store.Save(ctx, channelID, "alice", "three", base.Add(2*time.Second))
	req.NoError(err)

	recent, err := store.QueryRecent(ctx, channelID, 2)
	req.NoError(err)
	req.Len(recent, 2)
	req.Equal("two", recent[0].Content)
	req.Equal("three", recent[1].Content)

	empty, err := store.QueryRecent(ctx, channelID+"-none", 10)
	req.NoError(err)
	req.NotNil(empty)
	req.Empty(empty)

	// The schema rejects blank content
	_, err = store.Save(ctx, channelID, "alice", "   ", base)
	req.ErrorIs(err, message.ErrPersistence)

	req.NoError(store.Ping(ctx))
}
