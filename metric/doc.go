// Package metric provides the Prometheus registry and HTTP server used by joli
// components.
//
// Components build their collectors with the joli namespace and register them under a
// component-scoped key, so two components can each own an "errors" metric without
// clashing:
//
//	registry := metric.NewMetricsRegistry()
//	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
//	    Namespace: metric.Namespace,
//	    Subsystem: "stream",
//	    Name:      "errors_total",
//	    Help:      "Chunks that failed to parse or style",
//	}, []string{"kind"})
//	if err := registry.RegisterCounterVec("stream", "errors", errs); err != nil {
//	    return err
//	}
//
// Registering the same key twice returns an invalid-class error. Metric helpers
// throughout joli accept a nil registry and turn into no-ops, so metrics stay
// optional.
//
// Serving metrics:
//
//	server := metric.NewServer(9090, "/metrics", registry)
//	if err := server.Start(); err != nil {
//	    return err
//	}
//	defer server.Stop(5 * time.Second)
//
// The server also answers /health with 200 OK.
package metric
