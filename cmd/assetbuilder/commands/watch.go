package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/assetbuilder/internal/devserver"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
	"git.home.luguber.info/inful/assetbuilder/internal/watch"
)

const shutdownTimeout = 5 * time.Second

// WatchCmd implements the 'watch' command.
type WatchCmd struct{}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	orch, err := NewOrchestrator(g, root, cfg, rec)
	if err != nil {
		return err
	}

	opts := []devserver.Option{devserver.WithRecorder(rec), devserver.WithLogger(g.logger())}
	if cfg.Server.Metrics {
		opts = append(opts, devserver.WithMetricsHandler(metrics.HTTPHandler(reg)))
	}
	server := devserver.New(cfg, opts...)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The initial build may fail; the watcher keeps going so the next save can fix it.
	if err := orch.RunDefault(ctx).Err(); err != nil {
		g.logger().Warn("Initial build failed", logfields.Error(err))
	}

	if err := server.Start(ctx); err != nil {
		return err
	}

	watcher := watch.New(cfg,
		func(ctx context.Context) error { return orch.RunDefault(ctx).Err() },
		watch.WithReloader(server),
		watch.WithRecorder(rec),
		watch.WithLogger(g.logger()),
	)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return watcher.Run(gctx) })
	group.Go(func() error {
		<-gctx.Done()
		stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stopCancel()
		return server.Stop(stopCtx)
	})

	err = group.Wait()
	g.logger().Info("Shutdown complete")
	return err
}
