package pipeline

import (
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

// Status is the outcome of one stage within a run.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusDisabled Status = "disabled"
)

// StageOutcome records how one stage finished.
type StageOutcome struct {
	Stage    config.StageName
	Status   Status
	Err      error
	Duration time.Duration
}

// RunResult is the ephemeral record of one pipeline run.
type RunResult struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	// Outcomes holds one entry per stage, in stage order.
	Outcomes []StageOutcome
}

// Success reports whether no stage failed.
func (r *RunResult) Success() bool {
	return len(r.FailedStages()) == 0
}

// FailedStages lists the stages that failed, in stage order.
func (r *RunResult) FailedStages() []config.StageName {
	var failed []config.StageName
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			failed = append(failed, o.Stage)
		}
	}
	return failed
}

// Outcome returns the outcome of stage.
func (r *RunResult) Outcome(stage config.StageName) (StageOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Stage == stage {
			return o, true
		}
	}
	return StageOutcome{}, false
}

// Err aggregates every stage failure into one run error, or returns nil.
// The stage errors stay reachable through errors.Is/As and errors.HasCategory.
func (r *RunResult) Err() error {
	var (
		names []string
		errs  []error
	)
	for _, o := range r.Outcomes {
		if o.Status != StatusFailed {
			continue
		}
		names = append(names, string(o.Stage))
		errs = append(errs, fmt.Errorf("%s: %w", o.Stage, o.Err))
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.WrapError(stdErrors.Join(errs...), errors.CategoryRun,
		fmt.Sprintf("%d stage(s) failed: %s", len(errs), strings.Join(names, ", "))).
		WithContext("run_id", r.RunID).
		WithContext("failed_stages", names).
		Build()
}
