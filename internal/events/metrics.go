package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for event delivery.
type Metrics struct {
	Published     prometheus.Counter
	Dropped       *prometheus.CounterVec
	SinkFailures  prometheus.Counter
	BreakerState  prometheus.Gauge
	BufferedCount prometheus.Gauge
}

// NewMetrics registers the delivery metrics with reg (default registry when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Published: f.NewCounter(prometheus.CounterOpts{
			Name: "trustscore_events_published_total",
			Help: "Events delivered to the sink",
		}),
		Dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trustscore_events_dropped_total",
			Help: "Events dropped before delivery, by reason",
		}, []string{"reason"}),
		SinkFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "trustscore_events_sink_failures_total",
			Help: "Failed sink writes",
		}),
		BreakerState: f.NewGauge(prometheus.GaugeOpts{
			Name: "trustscore_events_circuit_breaker_state",
			Help: "Sink circuit breaker state (0=closed, 1=open)",
		}),
		BufferedCount: f.NewGauge(prometheus.GaugeOpts{
			Name: "trustscore_events_buffered",
			Help: "Events waiting in the buffer",
		}),
	}
}

func (m *Metrics) incPublished(n int) {
	if m != nil {
		m.Published.Add(float64(n))
	}
}

func (m *Metrics) incDropped(reason string, n int) {
	if m != nil {
		m.Dropped.WithLabelValues(reason).Add(float64(n))
	}
}

func (m *Metrics) incSinkFailures() {
	if m != nil {
		m.SinkFailures.Inc()
	}
}

func (m *Metrics) setBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerState.Set(1)
	} else {
		m.BreakerState.Set(0)
	}
}

func (m *Metrics) setBuffered(n int) {
	if m != nil {
		m.BufferedCount.Set(float64(n))
	}
}
