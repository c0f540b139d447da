package stream

import (
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/joli/errors"
	"github.com/c360/joli/metric"
)

const (
	outcomeEmitted = "emitted"
	outcomeDropped = "dropped"
	outcomeError   = "error"
)

// Metrics holds Prometheus metrics for stream adapters and bridges.
type Metrics struct {
	chunks   prometheus.Counter
	outcomes *prometheus.CounterVec // by outcome
	errors   *prometheus.CounterVec // by kind
}

// NewMetrics creates and registers stream metrics. A nil registry returns nil.
func NewMetrics(registry *metric.MetricsRegistry) (*Metrics, error) {
	if registry == nil {
		return nil, nil
	}

	m := &Metrics{
		chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "stream",
			Name:      "chunks_total",
			Help:      "Total number of chunks written to stream adapters",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "stream",
			Name:      "chunk_outcomes_total",
			Help:      "Chunks by outcome",
		}, []string{"outcome"}), // emitted, dropped, error
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "stream",
			Name:      "errors_total",
			Help:      "Chunk failures by kind",
		}, []string{"kind"}),
	}

	if err := registry.RegisterCounter("stream", "chunks", m.chunks); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("stream", "chunk_outcomes", m.outcomes); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("stream", "errors", m.errors); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) recordChunk() {
	if m == nil {
		return
	}
	m.chunks.Inc()
}

func (m *Metrics) recordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) recordError(err error) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcomeError).Inc()
	m.errors.WithLabelValues(errorKind(err)).Inc()
}

func errorKind(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrParse):
		return "parse"
	case stderrors.Is(err, errors.ErrStyleNotFound):
		return "style_not_found"
	case stderrors.Is(err, errors.ErrEmptyReduce):
		return "empty_reduce"
	default:
		return errors.Classify(err).String()
	}
}
