package validation

import (
	"time"

	"github.com/Levii22/planning-poker/internal/dependencies/clock"
)

const (
	// MaxMessagesPerWindow is how many messages a connection may send
	// within one rate-limit window
	MaxMessagesPerWindow = 20

	// RateLimitWindow is the trailing window the limiter slides over
	RateLimitWindow = 5 * time.Second
)

// RateLimiter is a sliding-window limiter for a single connection. A
// message is accepted iff fewer than MaxMessagesPerWindow accepted
// timestamps fall within the trailing RateLimitWindow; rejected messages
// do not consume a slot. Not safe for concurrent use; each connection's
// messages are handled sequentially by its read loop.
type RateLimiter struct {
	clock  clock.Clock
	limit  int
	window time.Duration
	stamps []time.Time
}

// NewRateLimiter creates a limiter with the standard window and cap
func NewRateLimiter(clk clock.Clock) *RateLimiter {
	return &RateLimiter{
		clock:  clk,
		limit:  MaxMessagesPerWindow,
		window: RateLimitWindow,
	}
}

// Allow records and accepts the message unless the window is full
func (l *RateLimiter) Allow() bool {
	now := l.clock.Now()
	cutoff := now.Add(-l.window)

	kept := l.stamps[:0]
	for _, t := range l.stamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.stamps = kept

	if len(l.stamps) >= l.limit {
		return false
	}
	l.stamps = append(l.stamps, now)
	return true
}
