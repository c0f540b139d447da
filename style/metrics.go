package style

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/joli/metric"
)

const (
	outcomeOK     = "ok"
	outcomeAbsent = "absent"
	outcomeError  = "error"
)

// inlineStyle labels literal styles that carry no name
const inlineStyle = "inline"

// Metrics holds Prometheus metrics for style applications.
type Metrics struct {
	applications *prometheus.CounterVec   // by style and outcome
	filtered     *prometheus.CounterVec   // records dropped by filters, by style
	duration     *prometheus.HistogramVec // by style
}

// NewMetrics creates and registers engine metrics. A nil registry returns nil,
// which disables recording.
func NewMetrics(registry *metric.MetricsRegistry) (*Metrics, error) {
	if registry == nil {
		return nil, nil
	}

	m := &Metrics{
		applications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "style",
			Name:      "applications_total",
			Help:      "Total number of style applications",
		}, []string{"style", "outcome"}), // outcome: ok, absent, error

		filtered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "style",
			Name:      "filtered_records_total",
			Help:      "Total number of records rejected by style filters",
		}, []string{"style"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metric.Namespace,
			Subsystem: "style",
			Name:      "application_duration_seconds",
			Help:      "Style application duration in seconds",
			Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.1},
		}, []string{"style"}),
	}

	if err := registry.RegisterCounterVec("style", "applications", m.applications); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("style", "filtered_records", m.filtered); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec("style", "application_duration", m.duration); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) recordApplication(name, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if name == "" {
		name = inlineStyle
	}

	m.applications.WithLabelValues(name, outcome).Inc()
	m.duration.WithLabelValues(name).Observe(duration.Seconds())
}

func (m *Metrics) recordFiltered(name string, count int) {
	if m == nil || count <= 0 {
		return
	}
	if name == "" {
		name = inlineStyle
	}

	m.filtered.WithLabelValues(name).Add(float64(count))
}
