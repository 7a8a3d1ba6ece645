package mofujobs

import "time"

// Default configuration values for the consumer runtime.
const (
	// DefaultConcurrency is the default number of in-flight handlers per consumer.
	DefaultConcurrency = 1

	// DefaultAckWait is the default duration the broker waits for an acknowledgment
	// before scheduling a redelivery.
	DefaultAckWait = 30 * time.Second

	// DefaultFetchTimeout is the default maximum duration a pull request waits for messages.
	DefaultFetchTimeout = 5 * time.Second

	// DefaultMaxWaiting is the default maximum number of outstanding pull requests.
	DefaultMaxWaiting = 512

	// DefaultInactiveThreshold is the default inactive consumer cleanup threshold.
	DefaultInactiveThreshold = 24 * time.Hour

	// DefaultDuplicateWindow is the stream duplicate-tracking window used by the
	// publisher's message-id deduplication.
	DefaultDuplicateWindow = 2 * time.Minute
)

// DefaultBackoff returns the default redelivery backoff schedule.
//
// Five retries after the initial attempt, so len(DefaultBackoff())+1 = 6 total
// delivery attempts.
//
// Returns a fresh slice each call so callers can modify it safely.
func DefaultBackoff() []time.Duration {
	return []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
	}
}
