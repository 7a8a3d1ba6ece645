package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations must be non-blocking and thread-safe; all methods are called
// from internal goroutines on the hot path of message processing.
type MetricsCollector interface {
	PublisherMetrics
	ConsumerMetrics
}

// PublisherMetrics defines metrics for job publishing.
type PublisherMetrics interface {
	// RecordPublish records a publish attempt for a subject.
	//
	// Parameters:
	//   - subject: Job subject the message was published to
	//   - success: true if the broker accepted the message
	RecordPublish(subject string, success bool)
}

// ConsumerMetrics defines metrics for the consumer runtime.
type ConsumerMetrics interface {
	// RecordAck records a successfully handled and acknowledged message.
	RecordAck(subject string)

	// RecordNak records a failed handler invocation that was negatively acknowledged.
	RecordNak(subject string)

	// RecordDecodeDrop records a message dropped because its payload could not be decoded.
	//
	// Dropped messages are acknowledged without invoking the handler; this counter
	// is the only visibility into lost poison messages.
	RecordDecodeDrop(subject string)

	// RecordHandlerDuration records handler execution time in seconds.
	RecordHandlerDuration(subject string, seconds float64)

	// IncInFlight increments the in-flight handler gauge for a subject.
	IncInFlight(subject string)

	// DecInFlight decrements the in-flight handler gauge for a subject.
	DecInFlight(subject string)
}
