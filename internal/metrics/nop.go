package metrics

import "github.com/levish0/mofujobs/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external metrics
// collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordPublish discards the publish metric.
func (n *NopMetrics) RecordPublish(_ /* subject */ string, _ /* success */ bool) {
	// No-op
}

// RecordAck discards the ack metric.
func (n *NopMetrics) RecordAck(_ /* subject */ string) {
	// No-op
}

// RecordNak discards the nak metric.
func (n *NopMetrics) RecordNak(_ /* subject */ string) {
	// No-op
}

// RecordDecodeDrop discards the decode drop metric.
func (n *NopMetrics) RecordDecodeDrop(_ /* subject */ string) {
	// No-op
}

// RecordHandlerDuration discards the handler duration metric.
func (n *NopMetrics) RecordHandlerDuration(_ /* subject */ string, _ /* seconds */ float64) {
	// No-op
}

// IncInFlight discards the in-flight gauge increment.
func (n *NopMetrics) IncInFlight(_ /* subject */ string) {
	// No-op
}

// DecInFlight discards the in-flight gauge decrement.
func (n *NopMetrics) DecInFlight(_ /* subject */ string) {
	// No-op
}
