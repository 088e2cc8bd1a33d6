// Package metrics provides the Prometheus collectors of the reconciliation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeMalformed = "malformed"
)

// Metrics holds the engine's collectors on its own registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	resolutionsTotal    *prometheus.CounterVec
	oracleCallsTotal    *prometheus.CounterVec
	indexRefreshesTotal *prometheus.CounterVec
	indexNames          prometheus.Gauge

	collectors []prometheus.Collector
}

// New creates the collectors and registers them on a fresh registry.
func New() (*Metrics, error) {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates the collectors and registers them on registry.
func NewWithRegistry(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carryon_resolutions_total",
			Help: "Detections reconciled, by resolution tier",
		},
		[]string{"tier"}, // exact, fuzzy, synthesized, unresolved, failed
	)

	m.oracleCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carryon_oracle_calls_total",
			Help: "Calls to the knowledge oracle, by kind and outcome",
		},
		[]string{"kind", "outcome"}, // kind: item, weights
	)

	m.indexRefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carryon_index_refreshes_total",
			Help: "Name index rebuilds, by outcome",
		},
		[]string{"outcome"},
	)

	m.indexNames = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "carryon_index_names",
		Help: "Number of catalog names in the current index snapshot",
	})

	m.collectors = []prometheus.Collector{
		m.resolutionsTotal,
		m.oracleCallsTotal,
		m.indexRefreshesTotal,
		m.indexNames,
	}
}

// Describe implements the Collector interface
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordResolution counts one reconciled detection.
func (m *Metrics) RecordResolution(tier string) {
	if m == nil {
		return
	}
	m.resolutionsTotal.WithLabelValues(tier).Inc()
}

// RecordOracleCall counts one oracle call.
func (m *Metrics) RecordOracleCall(kind, outcome string) {
	if m == nil {
		return
	}
	m.oracleCallsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordIndexRefresh counts one index rebuild and, on success, the size of the new snapshot.
func (m *Metrics) RecordIndexRefresh(outcome string, names int) {
	if m == nil {
		return
	}
	m.indexRefreshesTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.indexNames.Set(float64(names))
	}
}

// WriteTextfile writes the current values in the Prometheus text format, for
// scraping by the node exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
