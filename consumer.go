package mofujobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/semaphore"

	"github.com/levish0/mofujobs/types"
)

// iterRetryDelay is the pause before recreating a failed message iterator.
const iterRetryDelay = 100 * time.Millisecond

// Consumer is a generic pump that pulls messages for one durable consumer,
// decodes payloads into T, bounds concurrent handler execution, and converts
// handler outcomes into ack/nak with broker-managed backoff.
//
// Per-message state machine:
//
//	PENDING → (decode OK?) → [DECODE_FAILED → ACKED]
//	                       | [DISPATCHED → (handler ok?) → ACKED
//	                                                     | NAKED → redeliver up to MaxDeliver → abandoned]
//
// Multiple processes may run the same (stream, durable) pair concurrently for
// horizontal scaling; the broker delivers each message to exactly one in-flight
// consumer at a time but never guarantees global ordering. Handlers must be
// idempotent with respect to redelivery.
type Consumer[T any] struct {
	js      jetstream.JetStream
	cfg     ConsumerConfig
	handler Handler[T]
	logger  types.Logger
	metrics types.MetricsCollector

	// sem bounds in-flight handler goroutines; the "at most Concurrency in
	// flight" invariant is enforced by this single construct.
	sem *semaphore.Weighted

	mu       sync.Mutex
	started  bool
	cancel   context.CancelFunc
	consumer jetstream.Consumer
	pumpDone chan struct{}
	wg       sync.WaitGroup
}

// NewConsumer creates a durable job consumer for cfg.Subject.
//
// Optional configuration fields are set to project defaults when zero; see
// ConsumerConfig. The handler is required and immutable for the lifetime of
// the consumer.
//
// Parameters:
//   - js: Pre-configured JetStream context (must be non-nil)
//   - cfg: Consumer configuration with required Subject and DurableName
//   - handler: Handler invoked once per delivery attempt with the decoded job
//
// Returns:
//   - *Consumer[T]: Initialized consumer (not yet pulling; call Start)
//   - error: Configuration or dependency error
//
// Example:
//
//	cons, err := mofujobs.NewConsumer[reindex.Job](js, mofujobs.ConsumerConfig{
//	    Subject:     mofujobs.SubjectReindexPosts,
//	    DurableName: mofujobs.DurableReindexPosts,
//	    Concurrency: 1,
//	}, handler)
func NewConsumer[T any](js jetstream.JetStream, cfg ConsumerConfig, handler Handler[T]) (*Consumer[T], error) {
	if js == nil {
		return nil, ErrJetStreamRequired
	}
	if handler == nil {
		return nil, ErrHandlerRequired
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Consumer[T]{
		js:      js,
		cfg:     cfg,
		handler: handler,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		sem:     semaphore.NewWeighted(int64(cfg.Concurrency)),
	}, nil
}

// Start creates or updates the durable pull consumer and launches the pump.
//
// The durable consumer is configured with explicit acks, the AckWait and
// Backoff schedule from the configuration, and MaxDeliver = len(Backoff)+1.
// Creation is idempotent across restarts and across competing processes.
//
// The pump runs on a background context decoupled from ctx; stop it with Close.
//
// Returns:
//   - error: ErrAlreadyStarted, or JetStream API failure
func (c *Consumer[T]) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return ErrAlreadyStarted
	}

	cons, err := c.js.CreateOrUpdateConsumer(ctx, c.cfg.StreamName, jetstream.ConsumerConfig{
		Name:              c.cfg.DurableName,
		Durable:           c.cfg.DurableName,
		FilterSubject:     c.cfg.Subject,
		AckPolicy:         jetstream.AckExplicitPolicy,
		AckWait:           c.cfg.AckWait,
		MaxDeliver:        c.cfg.MaxDeliver(),
		BackOff:           c.cfg.Backoff,
		MaxWaiting:        c.cfg.MaxWaiting,
		InactiveThreshold: c.cfg.InactiveThreshold,
	})
	if err != nil {
		return fmt.Errorf("failed to create/update consumer %s on stream %s: %w",
			c.cfg.DurableName, c.cfg.StreamName, err)
	}

	pumpCtx, cancel := context.WithCancel(context.Background())
	c.consumer = cons
	c.cancel = cancel
	c.pumpDone = make(chan struct{})
	c.started = true

	go c.pump(pumpCtx, cons)

	c.logger.Info("consumer started",
		"subject", c.cfg.Subject,
		"durable", c.cfg.DurableName,
		"concurrency", c.cfg.Concurrency,
		"max_deliver", c.cfg.MaxDeliver(),
	)

	return nil
}

// pump is the sequential message loop: it blocks on the broker for the next
// message, acquires a concurrency permit, and dispatches asynchronously.
func (c *Consumer[T]) pump(ctx context.Context, cons jetstream.Consumer) {
	defer close(c.pumpDone)

	for {
		iter, err := cons.Messages(
			jetstream.PullMaxMessages(1),
			jetstream.PullExpiry(c.cfg.FetchTimeout),
			jetstream.PullHeartbeat(c.cfg.FetchTimeout/2),
		)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			c.logger.Error("failed to create message iterator", "durable", c.cfg.DurableName, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(iterRetryDelay):
				continue
			}
		}

		if !c.drain(ctx, iter) {
			return
		}
		// loop to recreate iterator
	}
}

// drain pulls messages from one iterator until it fails, returning true when
// the pump should recreate the iterator and false when it should exit.
//
// iter.Next blocks without observing ctx, so a watcher goroutine stops the
// iterator on cancellation; Next then returns ErrMsgIteratorClosed and the
// loop unwinds instead of blocking shutdown forever.
func (c *Consumer[T]) drain(ctx context.Context, iter jetstream.MessagesContext) bool {
	watcherExit := make(chan struct{})
	defer close(watcherExit)
	go func() {
		select {
		case <-ctx.Done():
			iter.Stop()
		case <-watcherExit:
		}
	}()
	// Stop is idempotent; this covers the exits the watcher does not.
	defer iter.Stop()

	for {
		msg, err := iter.Next()
		if err != nil {
			switch {
			case ctx.Err() != nil:
				return false
			case errors.Is(err, jetstream.ErrMsgIteratorClosed):
				return false
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return false
			case errors.Is(err, jetstream.ErrNoHeartbeat):
				c.logger.Warn("consumer pump: no heartbeat, recreating iterator", "durable", c.cfg.DurableName)

				return true
			default:
				c.logger.Warn("consumer pump: iterator error, retrying", "durable", c.cfg.DurableName, "error", err)
				select {
				case <-ctx.Done():
					return false
				case <-time.After(iterRetryDelay):
					return true
				}
			}
		}

		// Suspension point: wait for a permit before dispatching. The
		// message stays unacked while waiting, so AckWait must cover queue
		// time plus handler time.
		if err := c.sem.Acquire(ctx, 1); err != nil {
			// Shutting down; leave the message unacked for redelivery.
			return false
		}

		c.wg.Add(1)
		go func(m jetstream.Msg) {
			defer c.wg.Done()
			defer c.sem.Release(1)
			c.dispatch(ctx, m)
		}(msg)
	}
}

// dispatch decodes and handles one message, converting the outcome into
// exactly one of ack, nak, or decode-drop-ack.
func (c *Consumer[T]) dispatch(ctx context.Context, msg jetstream.Msg) {
	subject := c.cfg.Subject

	var job T
	if err := json.Unmarshal(msg.Data(), &job); err != nil {
		// A payload that can never decode would be retried up to MaxDeliver and
		// then abandoned anyway, so it is treated as non-retryable from the
		// start: acked, counted, and dropped without invoking the handler.
		c.metrics.RecordDecodeDrop(subject)
		c.logger.Error("dropping undecodable job payload", "subject", subject, "error", err)
		if ackErr := msg.Ack(); ackErr != nil {
			c.logger.Warn("failed to ack dropped message", "subject", subject, "error", ackErr)
		}

		return
	}

	c.metrics.IncInFlight(subject)
	defer c.metrics.DecInFlight(subject)

	start := time.Now()
	err := c.handler.Handle(ctx, job)
	c.metrics.RecordHandlerDuration(subject, time.Since(start).Seconds())

	if err != nil {
		attempt := deliveryAttempt(msg)
		c.metrics.RecordNak(subject)
		c.logger.Warn("job handler failed, message will be redelivered",
			"subject", subject,
			"delivery", attempt,
			"error", err,
		)
		// A plain nak means immediate redelivery; the broker only applies the
		// backoff schedule to ack-wait expiry. Attach the delay for this
		// attempt so failed handlers back off the same way stalled ones do.
		if nakErr := msg.NakWithDelay(c.backoffDelay(attempt)); nakErr != nil {
			c.logger.Warn("failed to nak message", "subject", subject, "error", nakErr)
		}

		return
	}

	c.metrics.RecordAck(subject)
	if ackErr := msg.Ack(); ackErr != nil {
		c.logger.Warn("failed to ack message", "subject", subject, "error", ackErr)
	}
}

// Close stops the pump and waits for in-flight handlers to finish.
//
// The durable consumer is NOT deleted from the broker; its delivery cursor and
// redelivery state survive for the next process claiming the durable name.
//
// Parameters:
//   - ctx: Context bounding the graceful shutdown wait
//
// Returns:
//   - error: ErrNotStarted, or ctx.Err() when the wait is cut short
func (c *Consumer[T]) Close(ctx context.Context) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()

		return ErrNotStarted
	}
	cancel := c.cancel
	pumpDone := c.pumpDone
	c.started = false
	c.mu.Unlock()

	cancel()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-pumpDone:
	}

	handlersDone := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(handlersDone)
	}()

	select {
	case <-ctx.Done():
		c.logger.Warn("close context cancelled before in-flight handlers completed", "durable", c.cfg.DurableName)

		return ctx.Err()
	case <-handlersDone:
	}

	c.logger.Info("consumer closed", "durable", c.cfg.DurableName)

	return nil
}

// Info returns the broker's view of the durable consumer.
//
// Returns an error if Start has not been called yet.
func (c *Consumer[T]) Info(ctx context.Context) (*jetstream.ConsumerInfo, error) {
	c.mu.Lock()
	cons := c.consumer
	c.mu.Unlock()

	if cons == nil {
		return nil, ErrNotStarted
	}

	info, err := cons.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get consumer info: %w", err)
	}

	return info, nil
}

// backoffDelay returns the redelivery delay for a failed delivery attempt
// (1-based); attempts past the end of the schedule reuse the last entry.
func (c *Consumer[T]) backoffDelay(attempt uint64) time.Duration {
	if len(c.cfg.Backoff) == 0 {
		return 0
	}
	idx := int(attempt) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(c.cfg.Backoff) {
		idx = len(c.cfg.Backoff) - 1
	}

	return c.cfg.Backoff[idx]
}

// deliveryAttempt extracts the broker's delivery count for logging; 0 when
// metadata is unavailable.
func deliveryAttempt(msg jetstream.Msg) uint64 {
	md, err := msg.Metadata()
	if err != nil {
		return 0
	}

	return md.NumDelivered
}
