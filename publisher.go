package mofujobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/zeebo/xxh3"

	"github.com/levish0/mofujobs/internal/logging"
	"github.com/levish0/mofujobs/internal/metrics"
	"github.com/levish0/mofujobs/types"
)

// Publisher serializes job values and persists them to the broker under a
// named subject. Fire-and-forget from the caller's point of view: once the
// broker accepts the message, delivery is at-least-once; no ordering guarantee
// is promised beyond what the broker offers.
//
// Publishers are safe for concurrent use.
type Publisher struct {
	js      jetstream.JetStream
	logger  types.Logger
	metrics types.MetricsCollector
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublisherLogger sets the publisher's logger.
func WithPublisherLogger(logger types.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = logger }
}

// WithPublisherMetrics sets the publisher's metrics collector.
func WithPublisherMetrics(collector types.MetricsCollector) PublisherOption {
	return func(p *Publisher) { p.metrics = collector }
}

// NewPublisher creates a Publisher on a pre-initialized JetStream context.
//
// Parameters:
//   - js: JetStream context (must be non-nil)
//   - opts: Optional logger and metrics configuration
//
// Returns:
//   - *Publisher: Initialized publisher
//   - error: ErrJetStreamRequired when js is nil
func NewPublisher(js jetstream.JetStream, opts ...PublisherOption) (*Publisher, error) {
	if js == nil {
		return nil, ErrJetStreamRequired
	}

	p := &Publisher{
		js:      js,
		logger:  logging.NewNop(),
		metrics: metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// EnsureStream idempotently creates or updates the stream owning a subject.
//
// Streams use work-queue retention: one successful acknowledgment removes the
// message for the whole consumer group. The duplicate-tracking window backs the
// message-id deduplication applied by Publish.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - subject: Job subject (see Subjects)
//
// Returns:
//   - error: Non-nil on JetStream API failure
func (p *Publisher) EnsureStream(ctx context.Context, subject string) error {
	name := StreamName(subject)
	_, err := p.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       name,
		Subjects:   []string{subject},
		Retention:  jetstream.WorkQueuePolicy,
		Storage:    jetstream.FileStorage,
		Duplicates: DefaultDuplicateWindow,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure stream %s: %w", name, err)
	}

	return nil
}

// Publish serializes job to JSON and persists it under subject.
//
// The message id is an xxh3 hash of subject and payload, so an identical job
// re-published inside the stream's duplicate window is suppressed by the
// broker. This is best-effort hardening against duplicate successor publishes
// after a crash between publish and ack; handlers still tolerate duplicates.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - subject: Job subject the message is persisted under
//   - job: Job value; must serialize to JSON
//
// Returns:
//   - error: Serialization or broker persistence failure. Callers in this
//     codebase treat publish failure as non-fatal and log it, except chain
//     handlers which propagate it to trigger a retry of the whole batch.
func (p *Publisher) Publish(ctx context.Context, subject string, job any) error {
	data, err := json.Marshal(job)
	if err != nil {
		p.metrics.RecordPublish(subject, false)

		return fmt.Errorf("failed to serialize job for %s: %w", subject, err)
	}

	_, err = p.js.Publish(ctx, subject, data, jetstream.WithMsgID(messageID(subject, data)))
	if err != nil {
		p.metrics.RecordPublish(subject, false)

		return fmt.Errorf("failed to publish job to %s: %w", subject, err)
	}

	p.metrics.RecordPublish(subject, true)
	p.logger.Debug("published job", "subject", subject, "bytes", len(data))

	return nil
}

// messageID derives a stable deduplication id from subject and payload.
func messageID(subject string, payload []byte) string {
	h := xxh3.HashString(subject)
	h = xxh3.HashSeed(payload, h)

	return strconv.FormatUint(h, 16)
}
