// Package joli formats JSON log streams through composable styles.
//
// # Architecture
//
//	text chunk ──► parser ──► style engine ──► sink / outputter
//	               (tolerant)  (filter, reduce, map)
//
// A chunk of text is parsed into a JSON value. Text that is not valid JSON is
// recovered when it embeds a {...} object, with the surrounding text kept under
// "_extra", and wrapped as {"text": ...} otherwise. The value then runs through a
// style: a record filter, a fold over sequences, and a map, any of which may be
// missing. Styles are named, chained and overridden per user and per project.
//
// # Packages
//
//   - parser: tolerant JSON parsing
//   - style: the engine, values (sequence, scalar, absent) and style references
//   - styledef: styles declared in JSON or YAML with operator expressions
//   - registry: bundled, ~/.joli and ./.joli styles and outputters, later tiers win
//   - stream: per-chunk adapter over io.Reader or NATS subjects
//   - output: console, file, webhook, NATS and WebSocket outputters
//   - config: layered configuration with JOLI_* overrides
//   - errors: error classes and the parse, style and reduce error kinds
//   - metric: Prometheus registry and HTTP endpoint
//   - natsclient: NATS connection handling
//   - pkg/retry: backoff for transient failures
//
// # Usage
//
//	reg, err := registry.Default()
//	if err != nil {
//		return err
//	}
//	engine := style.NewEngine(style.WithResolver(reg))
//
//	data, err := parser.Parse(line, false)
//	if err != nil {
//		return err
//	}
//	out, err := engine.Apply(style.FromAny(data), style.ParseRef("compact,keys"))
//
// The joli command in cmd/joli wires the same pieces to files, stdin and NATS.
package joli
