// Package metrics records lifecycle operation outcomes with Prometheus.
//
// A CLI process is short-lived, so metrics live in a private registry and
// are written in text format to a file for the node-exporter textfile
// collector rather than served over HTTP.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.OperationObserver = (*Metrics)(nil)

// Metrics provides observability for lifecycle operations.
type Metrics struct {
	registry *prometheus.Registry

	// Operations counts completed operations by name and outcome.
	Operations *prometheus.CounterVec

	// OperationLatency measures operation duration by name.
	OperationLatency *prometheus.HistogramVec

	// LastRun is the Unix time of the last observation.
	LastRun prometheus.Gauge
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idledger_operations_total",
			Help: "Total lifecycle operations by operation and outcome",
		}, []string{"operation", "outcome"}),

		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "idledger_operation_duration_seconds",
			Help:    "Duration of lifecycle operations including storage writes",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		LastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "idledger_last_operation_timestamp_seconds",
			Help: "Unix time of the most recent lifecycle operation",
		}),
	}
}

// ObserveOperation records one operation.
func (m *Metrics) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
	m.LastRun.SetToCurrentTime()
}

// Registry returns the registry holding these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes every metric to path in Prometheus text format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return domain.NewIOError("create metrics dir", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return domain.NewIOError(fmt.Sprintf("write metrics %s", path), err)
	}
	return nil
}
