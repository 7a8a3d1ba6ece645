// Package mofujobs provides the asynchronous job-processing runtime of the
// Mofumofu blogging platform: a generic NATS JetStream consumer runtime and the
// publisher the platform's service layer uses to enqueue background work.
//
// # Quick Start
//
// Publishing a job from the service layer:
//
//	js, _ := jetstream.New(natsConn)
//	pub, _ := mofujobs.NewPublisher(js)
//	_ = pub.EnsureStream(ctx, mofujobs.SubjectEmail)
//
//	if err := pub.Publish(ctx, mofujobs.SubjectEmail, job); err != nil {
//	    // background work is best-effort from the API's perspective
//	    logger.Warn("failed to enqueue email job", "error", err)
//	}
//
// Consuming jobs in a worker process:
//
//	cons, _ := mofujobs.NewConsumer[mailer.Job](js, mofujobs.ConsumerConfig{
//	    Subject:     mofujobs.SubjectEmail,
//	    DurableName: mofujobs.DurableEmail,
//	    Concurrency: 2,
//	}, mofujobs.HandlerFunc[mailer.Job](handler.Handle))
//
//	if err := cons.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer cons.Close(context.Background())
//
// # Delivery Model
//
// Each subject maps 1:1 to a JetStream stream with work-queue retention and a
// fixed durable consumer name. Delivery is at-least-once: a handler returning
// nil acknowledges the message, a handler returning an error triggers a
// negative acknowledgment and broker-managed redelivery following the
// configured backoff schedule, up to len(backoff)+1 total attempts. Multiple
// worker processes may share one durable name; the broker delivers each message
// to exactly one of them at a time. Handlers must be idempotent with respect to
// redelivery.
//
// Messages whose payload cannot be decoded are acknowledged immediately without
// invoking the handler and counted on the metrics collector. A payload that can
// never decode would otherwise burn every redelivery attempt and be abandoned
// anyway, so it is treated as non-retryable from the start.
//
// # Concurrency
//
// One sequential pump per consumer blocks on the broker for the next message;
// accepted messages are dispatched to goroutines gated by a weighted semaphore
// sized to the configured concurrency, bounding in-flight handlers per process.
//
// See the reindex, indexer and mailer subpackages for the concrete job
// families built on this runtime, and examples/worker for complete wiring.
package mofujobs
