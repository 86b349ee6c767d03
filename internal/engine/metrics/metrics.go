package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the engine service.
type Metrics struct {
	// Operation latency by operation name
	OperationLatency *prometheus.HistogramVec

	// Operation results by operation and error code ("ok" on success)
	OperationResult *prometheus.CounterVec

	// Accepted and revoked proofs by source
	ProofsSubmitted *prometheus.CounterVec
	ProofsRevoked   *prometheus.CounterVec

	// Store transactions discarded because of a concurrent writer
	TxConflicts prometheus.Counter

	// First-time identities
	NewIdentities prometheus.Counter
}

// New registers the engine metrics with reg. A nil registerer uses the
// default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		OperationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trustscore_engine_operation_duration_seconds",
			Help:    "Duration of engine operations including the store transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		OperationResult: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trustscore_engine_operations_total",
			Help: "Engine operations by result code",
		}, []string{"operation", "code"}),

		ProofsSubmitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trustscore_proofs_submitted_total",
			Help: "Accepted proof submissions by source",
		}, []string{"source"}),

		ProofsRevoked: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trustscore_proofs_revoked_total",
			Help: "Revoked proofs by source",
		}, []string{"source"}),

		TxConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "trustscore_store_tx_conflicts_total",
			Help: "Store transactions aborted by a concurrent writer",
		}),

		NewIdentities: f.NewCounter(prometheus.CounterOpts{
			Name: "trustscore_identities_verified_total",
			Help: "Identities that submitted their first accepted proof",
		}),
	}
}

// ObserveOperation records latency and result for one operation.
func (m *Metrics) ObserveOperation(operation, code string, d time.Duration) {
	if m != nil {
		m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
		m.OperationResult.WithLabelValues(operation, code).Inc()
	}
}

func (m *Metrics) IncrementSubmitted(source string) {
	if m != nil {
		m.ProofsSubmitted.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) IncrementRevoked(source string) {
	if m != nil {
		m.ProofsRevoked.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) IncrementConflicts() {
	if m != nil {
		m.TxConflicts.Inc()
	}
}

func (m *Metrics) IncrementNewIdentities() {
	if m != nil {
		m.NewIdentities.Inc()
	}
}
