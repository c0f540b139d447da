// Package config loads joli configuration.
//
// Configuration is layered: Defaults, then each file added to the Loader in
// order (JSON or YAML, chosen by extension), then JOLI_* environment variables.
// A layer only overrides the keys it sets; nested sections are merged.
//
//	loader := config.NewLoader()
//	loader.AddDefaultLayers(home, workdir) // ~/.joli/config.yaml, ./.joli/config.yaml
//	loader.AddLayer(flagPath)
//	loader.EnableValidation(true)
//
//	cfg, err := loader.Load()
//
// Durations in files are written as Go duration strings ("2s", "500ms").
//
// Files are read with basic safety checks: a 10MB size limit, regular files
// only, no relative paths escaping the working directory and a JSON nesting limit.
//
// # Environment
//
//	JOLI_OUTPUTTER            output.outputter
//	JOLI_STYLE                stream.style
//	JOLI_STYLES_HOME          styles.home
//	JOLI_STYLES_WORKDIR       styles.workdir
//	JOLI_NATS_URLS            nats.urls, comma separated
//	JOLI_NATS_USERNAME        nats.username
//	JOLI_NATS_PASSWORD        nats.password
//	JOLI_NATS_TOKEN           nats.token
//	JOLI_NATS_SUBJECT         nats.subject
//	JOLI_NATS_OUTPUT_SUBJECT  nats.output_subject
//	JOLI_METRICS_PORT         metrics.port
//	JOLI_LOG_LEVEL            log.level
//	JOLI_LOG_FORMAT           log.format
package config
