package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/levish0/mofujobs/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Metrics are registered lazily on first use so that constructing a collector
// never panics on duplicate registration in tests.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	published       *prometheus.CounterVec
	acked           *prometheus.CounterVec
	naked           *prometheus.CounterVec
	decodeDrops     *prometheus.CounterVec
	handlerDuration *prometheus.HistogramVec
	inFlight        *prometheus.GaugeVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "mofujobs" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "mofujobs"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.published = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "publisher",
			Name:      "published_total",
			Help:      "Total publish attempts by subject and result.",
		}, []string{"subject", "result"})

		p.acked = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "consumer",
			Name:      "acked_total",
			Help:      "Total messages handled successfully and acknowledged, by subject.",
		}, []string{"subject"})

		p.naked = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "consumer",
			Name:      "naked_total",
			Help:      "Total handler failures that were negatively acknowledged, by subject.",
		}, []string{"subject"})

		p.decodeDrops = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "consumer",
			Name:      "decode_drops_total",
			Help:      "Total undecodable messages acknowledged and dropped without handling, by subject.",
		}, []string{"subject"})

		p.handlerDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "consumer",
			Name:      "handler_duration_seconds",
			Help:      "Handler execution time in seconds by subject.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"subject"})

		p.inFlight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "consumer",
			Name:      "in_flight_handlers",
			Help:      "Number of handler invocations currently in flight, by subject.",
		}, []string{"subject"})

		for _, c := range []prometheus.Collector{
			p.published, p.acked, p.naked, p.decodeDrops, p.handlerDuration, p.inFlight,
		} {
			// AlreadyRegisteredError is tolerated so multiple collectors can share a registry.
			if err := p.reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	})
}

// RecordPublish records a publish attempt by subject and result.
func (p *PrometheusCollector) RecordPublish(subject string, success bool) {
	p.ensureRegistered()
	result := "ok"
	if !success {
		result = "error"
	}
	p.published.WithLabelValues(subject, result).Inc()
}

// RecordAck records an acknowledged message.
func (p *PrometheusCollector) RecordAck(subject string) {
	p.ensureRegistered()
	p.acked.WithLabelValues(subject).Inc()
}

// RecordNak records a negatively acknowledged message.
func (p *PrometheusCollector) RecordNak(subject string) {
	p.ensureRegistered()
	p.naked.WithLabelValues(subject).Inc()
}

// RecordDecodeDrop records a dropped undecodable message.
func (p *PrometheusCollector) RecordDecodeDrop(subject string) {
	p.ensureRegistered()
	p.decodeDrops.WithLabelValues(subject).Inc()
}

// RecordHandlerDuration records handler execution time in seconds.
func (p *PrometheusCollector) RecordHandlerDuration(subject string, seconds float64) {
	p.ensureRegistered()
	p.handlerDuration.WithLabelValues(subject).Observe(seconds)
}

// IncInFlight increments the in-flight handler gauge.
func (p *PrometheusCollector) IncInFlight(subject string) {
	p.ensureRegistered()
	p.inFlight.WithLabelValues(subject).Inc()
}

// DecInFlight decrements the in-flight handler gauge.
func (p *PrometheusCollector) DecInFlight(subject string) {
	p.ensureRegistered()
	p.inFlight.WithLabelValues(subject).Dec()
}
