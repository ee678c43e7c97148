package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultDisabled ResultLabel = "disabled"
)

// RunOutcomeLabel enumerates whole-run outcomes.
type RunOutcomeLabel string

const (
	RunSuccess RunOutcomeLabel = "success"
	RunFailed  RunOutcomeLabel = "failed"
)

// Recorder defines observability hooks for runs, stages, live reload and watching.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome RunOutcomeLabel)
	IncReloadBroadcast()
	SetReloadClients(n int)
	IncWatchEvent(op string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncRunOutcome(RunOutcomeLabel)              {}
func (NoopRecorder) IncReloadBroadcast()                        {}
func (NoopRecorder) SetReloadClients(int)                       {}
func (NoopRecorder) IncWatchEvent(string)                       {}
