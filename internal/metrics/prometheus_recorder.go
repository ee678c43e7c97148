package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration    *prom.HistogramVec
	stageResults     *prom.CounterVec
	runDuration      prom.Histogram
	runOutcome       *prom.CounterVec
	reloadBroadcasts prom.Counter
	reloadClients    prom.Gauge
	watchEvents      *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "assetbuilder",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "assetbuilder",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "assetbuilder",
			Name:      "run_duration_seconds",
			Help:      "Total pipeline run duration",
			Buckets:   prom.DefBuckets,
		}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "assetbuilder",
			Name:      "run_outcomes_total",
			Help:      "Pipeline run outcomes by final status",
		}, []string{"outcome"}),
		reloadBroadcasts: prom.NewCounter(prom.CounterOpts{
			Namespace: "assetbuilder",
			Name:      "livereload_broadcasts_total",
			Help:      "Reload signals pushed to connected browsers",
		}),
		reloadClients: prom.NewGauge(prom.GaugeOpts{
			Namespace: "assetbuilder",
			Name:      "livereload_clients",
			Help:      "Currently connected live reload clients",
		}),
		watchEvents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "assetbuilder",
			Name:      "watch_events_total",
			Help:      "Filesystem events that requested a rebuild",
		}, []string{"op"}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.runDuration, pr.runOutcome,
		pr.reloadBroadcasts, pr.reloadClients, pr.watchEvents)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome RunOutcomeLabel) {
	if p == nil {
		return
	}
	p.runOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncReloadBroadcast() {
	if p == nil {
		return
	}
	p.reloadBroadcasts.Inc()
}

func (p *PrometheusRecorder) SetReloadClients(n int) {
	if p == nil {
		return
	}
	p.reloadClients.Set(float64(n))
}

func (p *PrometheusRecorder) IncWatchEvent(op string) {
	if p == nil {
		return
	}
	p.watchEvents.WithLabelValues(op).Inc()
}
