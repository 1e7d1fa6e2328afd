package chat

import "time"

// DefaultJoinInterval is the minimum spacing between two accepted joins of one user.
const DefaultJoinInterval = 500 * time.Millisecond

// JoinLimiter rejects channel joins that follow the user's previous accepted join
// too closely. Entries are never evicted; a stale timestamp always allows the next join.
//
// It is not safe for concurrent use; Hub serializes every call under its lock.
type JoinLimiter struct {
	interval time.Duration
	lastJoin map[string]time.Time
}

// NewJoinLimiter returns a limiter enforcing interval, or DefaultJoinInterval when interval <= 0.
func NewJoinLimiter(interval time.Duration) *JoinLimiter {
	if interval <= 0 {
		interval = DefaultJoinInterval
	}
	return &JoinLimiter{
		interval: interval,
		lastJoin: make(map[string]time.Time),
	}
}

// TryAcceptJoin records now as the last join of userID and returns true, unless
// the previous accepted join is less than the interval ago, in which case it
// returns false and leaves the state unchanged.
func (l *JoinLimiter) TryAcceptJoin(userID string, now time.Time) bool {
	if last, ok := l.lastJoin[userID]; ok && now.Sub(last) < l.interval {
		return false
	}

	l.lastJoin[userID] = now
	return true
}

// Interval returns the enforced minimum spacing.
func (l *JoinLimiter) Interval() time.Duration {
	return l.interval
}
