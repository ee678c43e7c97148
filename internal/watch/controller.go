package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
)

// RunFunc performs one pipeline run and reports its aggregate failure.
type RunFunc func(ctx context.Context) error

// Reloader is notified after each run.
type Reloader interface {
	Reload()
	ReloadFailed()
}

type noopReloader struct{}

func (noopReloader) Reload()       {}
func (noopReloader) ReloadFailed() {}

// Controller watches the input root and runs the pipeline on changes.
type Controller struct {
	root     string
	debounce time.Duration
	resync   time.Duration
	run      RunFunc
	reloader Reloader
	recorder metrics.Recorder
	logger   *slog.Logger

	requests chan struct{}
	runs     atomic.Int64

	mu    sync.Mutex
	timer *time.Timer
}

// Option configures a Controller.
type Option func(*Controller)

// WithReloader sets the component notified after each run.
func WithReloader(r Reloader) Option {
	return func(c *Controller) {
		if r != nil {
			c.reloader = r
		}
	}
}

// WithRecorder records watch event metrics.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Controller) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New creates a controller for the input root and watch settings of cfg.
func New(cfg *config.Config, run RunFunc, opts ...Option) *Controller {
	c := &Controller{
		root:     cfg.Paths.Input,
		debounce: cfg.Watch.Debounce,
		resync:   cfg.Watch.ResyncInterval,
		run:      run,
		reloader: noopReloader{},
		recorder: metrics.NoopRecorder{},
		requests: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Request asks for a run. Requests made while one is already pending are merged.
func (c *Controller) Request() {
	select {
	case c.requests <- struct{}{}:
	default:
	}
}

// Runs returns the number of completed runs.
func (c *Controller) Runs() int64 { return c.runs.Load() }

// trigger debounces Request.
func (c *Controller) trigger() {
	if c.debounce <= 0 {
		c.Request()
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.Request)
}

// Run watches until ctx is cancelled. A run in progress is completed before Run returns.
func (c *Controller) Run(ctx context.Context) error {
	absRoot, err := filepath.Abs(c.root)
	if err != nil {
		return errors.WrapError(err, errors.CategoryWatch, "resolve watch root").Build()
	}
	if fi, err := os.Stat(absRoot); err != nil || !fi.IsDir() {
		return errors.WatchError("watch root is not a directory").WithCause(err).
			WithContext("path", absRoot).Build()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryWatch, "fsnotify").Fatal().Build()
	}
	defer func() { _ = watcher.Close() }()
	c.addDirsRecursive(watcher, absRoot)

	if c.resync > 0 {
		sched, err := newResyncScheduler(c.resync, c.Request)
		if err != nil {
			return errors.WrapError(err, errors.CategoryWatch, "schedule resync").Fatal().Build()
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				c.logger.Warn("Resync scheduler shutdown", logfields.Error(err))
			}
		}()
	}

	var worker sync.WaitGroup
	defer worker.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer c.stopTimer()
	worker.Add(1)
	go func() {
		defer worker.Done()
		c.work(ctx)
	}()

	c.logger.Info("Watching for changes", logfields.Path(absRoot))
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Watch stopped")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			c.handleEvent(watcher, ev)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (c *Controller) handleEvent(w *fsnotify.Watcher, ev fsnotify.Event) {
	if shouldIgnoreEvent(ev) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			c.addDirsRecursive(w, ev.Name)
		}
	}
	c.recorder.IncWatchEvent(ev.Op.String())
	c.logger.Debug("File change detected", logfields.Path(ev.Name), logfields.Op(ev.Op.String()))
	c.trigger()
}

// work drains requests one at a time.
func (c *Controller) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.requests:
			if ctx.Err() != nil {
				return
			}
			c.runOnce(ctx)
		}
	}
}

func (c *Controller) runOnce(ctx context.Context) {
	c.logger.Info("Change detected; rebuilding")
	err := c.run(ctx)
	c.runs.Add(1)
	if err != nil {
		c.logger.Warn("Rebuild failed", logfields.Error(err))
		c.reloader.ReloadFailed()
		return
	}
	c.reloader.Reload()
}

func (c *Controller) stopTimer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
}

func (c *Controller) addDirsRecursive(w *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				c.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}
