package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
	"git.home.luguber.info/inful/assetbuilder/internal/stages"
)

// Orchestrator runs a fixed set of stages concurrently.
type Orchestrator struct {
	stages   []stages.Stage
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder sets the metrics recorder. Defaults to metrics.NoopRecorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an orchestrator over list, which is reported in the given order.
func New(list []stages.Stage, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		stages:   list,
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// RunDefault runs every stage once and waits for all of them. It always
// returns a result; use RunResult.Err for the aggregate failure.
func (o *Orchestrator) RunDefault(ctx context.Context) *RunResult {
	res := &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Outcomes:  make([]StageOutcome, len(o.stages)),
	}
	log := o.logger.With(logfields.RunID(res.RunID))
	log.Info("Pipeline run started", slog.Int("stages", len(o.stages)))

	// Stage goroutines never return an error to the group, so no sibling is cancelled.
	var g errgroup.Group
	for i, s := range o.stages {
		g.Go(func() error {
			res.Outcomes[i] = o.runStage(ctx, log, s)
			return nil
		})
	}
	_ = g.Wait()

	res.Duration = time.Since(res.StartedAt)
	o.recorder.ObserveRunDuration(res.Duration)

	if err := res.Err(); err != nil {
		o.recorder.IncRunOutcome(metrics.RunFailed)
		log.Error("Pipeline run failed",
			logfields.DurationMS(float64(res.Duration.Milliseconds())),
			slog.Any("failed_stages", res.FailedStages()))
		return res
	}
	o.recorder.IncRunOutcome(metrics.RunSuccess)
	log.Info("Pipeline run completed", logfields.DurationMS(float64(res.Duration.Milliseconds())))
	return res
}

func (o *Orchestrator) runStage(ctx context.Context, log *slog.Logger, s stages.Stage) (out StageOutcome) {
	name := string(s.Name())
	out.Stage = s.Name()
	if !s.IsEnabled() {
		out.Status = StatusDisabled
		o.recorder.IncStageResult(name, metrics.ResultDisabled)
		log.Debug("Stage disabled", logfields.Stage(name))
		return out
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out.Status = StatusFailed
			out.Err = errors.InternalError("stage panicked").WithContext("panic", r).Build()
			out.Duration = time.Since(start)
			o.recorder.IncStageResult(name, metrics.ResultFailed)
			log.Error("Stage panicked", logfields.Stage(name), slog.Any("panic", r))
		}
	}()

	err := s.Run(ctx)
	out.Duration = time.Since(start)
	o.recorder.ObserveStageDuration(name, out.Duration)
	if err != nil {
		out.Status = StatusFailed
		out.Err = err
		o.recorder.IncStageResult(name, metrics.ResultFailed)
		attrs := []slog.Attr{logfields.Stage(name), logfields.Error(err),
			logfields.DurationMS(float64(out.Duration.Milliseconds()))}
		if classified, ok := errors.AsClassified(err); ok {
			attrs = append(attrs, classified.LogAttrs()...)
		}
		log.LogAttrs(ctx, slog.LevelError, "Stage failed", attrs...)
		return out
	}
	out.Status = StatusSuccess
	o.recorder.IncStageResult(name, metrics.ResultSuccess)
	log.Info("Stage completed", logfields.Stage(name),
		logfields.DurationMS(float64(out.Duration.Milliseconds())))
	return out
}
