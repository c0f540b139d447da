package output

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/joli/errors"
	"github.com/c360/joli/metric"
)

// Metrics holds Prometheus metrics for outputters.
type Metrics struct {
	deliveries *prometheus.CounterVec   // by outputter, type and outcome
	duration   *prometheus.HistogramVec // by outputter and type
}

// NewMetrics creates and registers outputter metrics. A nil registry returns nil.
func NewMetrics(registry *metric.MetricsRegistry) (*Metrics, error) {
	if registry == nil {
		return nil, nil
	}

	m := &Metrics{
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "output",
			Name:      "deliveries_total",
			Help:      "Total number of values handed to outputters",
		}, []string{"outputter", "type", "outcome"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metric.Namespace,
			Subsystem: "output",
			Name:      "delivery_duration_seconds",
			Help:      "Outputter delivery duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outputter", "type"}),
	}

	if err := registry.RegisterCounterVec("output", "deliveries", m.deliveries); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec("output", "delivery_duration", m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) record(name, kind string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = errors.Classify(err).String()
	}
	m.deliveries.WithLabelValues(name, kind, outcome).Inc()
	m.duration.WithLabelValues(name, kind).Observe(d.Seconds())
}

// instrumented adds metrics and failure logging around an outputter
type instrumented struct {
	inner   Outputter
	name    string
	kind    string
	metrics *Metrics
	logger  *slog.Logger
}

func instrument(out Outputter, kind string, o options) Outputter {
	return &instrumented{inner: out, name: o.name, kind: kind, metrics: o.metrics, logger: o.logger}
}

func (i *instrumented) Output(ctx context.Context, data any) error {
	start := time.Now()
	err := i.inner.Output(ctx, data)
	i.metrics.record(i.name, i.kind, err, time.Since(start))

	if err != nil {
		i.logger.Debug("Output failed",
			"component", "output",
			"outputter", i.name,
			"class", errors.Classify(err).String(),
			"error", err)
	}
	return err
}

func (i *instrumented) Close() error {
	return Close(i.inner)
}

// Unwrap returns the outputter built by New without instrumentation
func (i *instrumented) Unwrap() Outputter {
	return i.inner
}
