package mofujobs

import "context"

// Handler defines the contract for processing decoded jobs of type T.
//
// Behavior summary:
//   - The consumer runtime decodes each message payload into a T and calls
//     Handle once per delivery attempt.
//   - Return nil for the runtime to ACK the message; return an error for the
//     runtime to NAK it, which schedules a broker-managed redelivery per the
//     configured backoff schedule.
//   - The runtime does not distinguish error categories; any error takes the
//     same NAK path regardless of whether the failure is retryable in principle.
//
// Redelivery semantics:
//   - Failing to return within AckWait causes redelivery of the same message.
//   - Exactly-once is not guaranteed; handlers must be idempotent with respect
//     to redelivery.
type Handler[T any] interface {
	// Handle processes a single decoded job.
	Handle(ctx context.Context, job T) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc[T any] func(ctx context.Context, job T) error

// Handle implements the Handler interface.
func (f HandlerFunc[T]) Handle(ctx context.Context, job T) error { return f(ctx, job) }
