// Package metrics provides build and dev-server observability for assetbuilder.
//
// Components receive a Recorder through their constructors. NoopRecorder is the
// default; PrometheusRecorder is installed by the CLI when the dev server exposes
// /metrics:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	orch := pipeline.New(cfg, stages, pipeline.WithRecorder(rec))
package metrics
