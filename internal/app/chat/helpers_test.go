package chat

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"guildchat/internal/app/user"
)

// fakeClock is a manually advanced clock for the join limiter.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// drain returns every event currently queued for conn without blocking.
func drain(conn *Connection) []Event {
	var events []Event
	for {
		select {
		case ev, ok := <-conn.Outbound():
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

// eventsNamed filters events by name.
func eventsNamed(events []Event, name EventName) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

func lastPresence(t *testing.T, events []Event) []Member {
	t.Helper()
	updates := eventsNamed(events, EventUpdatePresence)
	require.NotEmpty(t, updates, "expected an updatePresence event")
	members, ok := updates[len(updates)-1].Data.([]Member)
	require.True(t, ok)
	return members
}

func connect(t *testing.T, h *Hub, connID, userID, username, sessionID string) *Connection {
	t.Helper()
	conn, err := h.Connect(connID, user.Identity{ID: userID, Username: username}, sessionID)
	require.NoError(t, err)
	return conn
}

func joinPayload(channelID, userID, username, sessionID string) JoinChannelPayload {
	return JoinChannelPayload{
		ChannelID: channelID,
		UserID:    userID,
		Username:  username,
		SessionID: sessionID,
	}
}

func identityOf(userID string) user.Identity {
	return user.Identity{ID: userID, Username: userID}
}
