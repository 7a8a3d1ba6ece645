package mofujobs

import (
	"fmt"
	"time"

	"github.com/levish0/mofujobs/internal/logging"
	"github.com/levish0/mofujobs/internal/metrics"
	"github.com/levish0/mofujobs/types"
)

// ConsumerConfig configures a single durable job consumer.
//
// Required fields:
//   - Subject
//   - DurableName
//
// Optional tuning fields are documented inline below. Zero values are replaced
// by project defaults via applyDefaults(). Configuration is an explicit value
// constructed once at process start and passed in; the runtime reads no
// environment variables and keeps no process-wide state.
type ConsumerConfig struct {
	// Subject is the job subject this consumer pulls from (see Subjects).
	Subject string

	// StreamName overrides the stream owning Subject. Defaults to StreamName(Subject).
	StreamName string

	// DurableName is the durable consumer name. Processes sharing it compete
	// for messages.
	DurableName string

	// Concurrency bounds in-flight handler invocations per process.
	// Must be >= 1. Defaults to DefaultConcurrency.
	Concurrency int

	// Backoff is the ordered redelivery delay schedule applied by the broker
	// to successive failed attempts. Total delivery attempts = len(Backoff)+1.
	// Defaults to DefaultBackoff().
	Backoff []time.Duration

	// AckWait is how long the broker waits for an acknowledgment before
	// redelivering. Defaults to DefaultAckWait.
	AckWait time.Duration

	// FetchTimeout is the maximum duration a pull request waits for messages.
	// Defaults to DefaultFetchTimeout.
	FetchTimeout time.Duration

	// MaxWaiting is the maximum number of outstanding pull requests.
	// Defaults to DefaultMaxWaiting.
	MaxWaiting int

	// InactiveThreshold is how long an unused durable consumer survives before
	// the broker cleans it up. Defaults to DefaultInactiveThreshold.
	InactiveThreshold time.Duration

	// Logger receives structured runtime logs. Defaults to a no-op logger.
	Logger types.Logger

	// Metrics receives operational metrics. Defaults to a no-op collector.
	Metrics types.MetricsCollector
}

// applyDefaults fills unset optional fields with project defaults.
func (cfg *ConsumerConfig) applyDefaults() {
	if cfg.StreamName == "" {
		cfg.StreamName = StreamName(cfg.Subject)
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Backoff == nil {
		cfg.Backoff = DefaultBackoff()
	}
	if cfg.AckWait == 0 {
		cfg.AckWait = DefaultAckWait
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.MaxWaiting == 0 {
		cfg.MaxWaiting = DefaultMaxWaiting
	}
	if cfg.InactiveThreshold == 0 {
		cfg.InactiveThreshold = DefaultInactiveThreshold
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNop()
	}
}

// validate checks required fields and invariants after defaults are applied.
func (cfg *ConsumerConfig) validate() error {
	if cfg.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidConfig)
	}
	if cfg.DurableName == "" {
		return fmt.Errorf("%w: durable name is required", ErrInvalidConfig)
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be >= 1, got %d", ErrInvalidConfig, cfg.Concurrency)
	}
	for i, d := range cfg.Backoff {
		if d <= 0 {
			return fmt.Errorf("%w: backoff[%d] must be positive, got %v", ErrInvalidConfig, i, d)
		}
	}

	return nil
}

// MaxDeliver returns the total number of delivery attempts for this consumer:
// the initial delivery plus one redelivery per backoff entry. Always >= 1.
func (cfg *ConsumerConfig) MaxDeliver() int {
	return len(cfg.Backoff) + 1
}
