// Package devserver serves the build output during development and pushes
// live-reload events to connected browsers.
package devserver

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
)

// Session describes the running server.
type Session struct {
	Addr      string
	Root      string
	StartedAt time.Time
}

// URL returns the base URL of the session.
func (s Session) URL() string {
	return "http://" + s.Addr + "/"
}

// Controller owns the development server. When the server stage is disabled
// every method is a no-op.
type Controller struct {
	enabled        bool
	addr           string
	root           string
	hub            *LiveReloadHub
	metricsHandler http.Handler
	logger         *slog.Logger
	seq            atomic.Uint64

	mu      sync.Mutex
	srv     *http.Server
	session Session
	serveWG sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithRecorder records live-reload metrics.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Controller) { c.hub = NewLiveReloadHub(r) }
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(c *Controller) { c.metricsHandler = h }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New creates a controller for the server settings of cfg.
func New(cfg *config.Config, opts ...Option) *Controller {
	c := &Controller{
		enabled: cfg.Flag(config.StageServer),
		addr:    net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		root:    cfg.Paths.Server,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hub == nil {
		c.hub = NewLiveReloadHub(nil)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Handler returns the router: static files with script injection, the SSE
// endpoint, the client script and, when configured, metrics.
func (c *Controller) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/livereload", c.hub.ServeHTTP)
	r.Get("/livereload.js", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		if _, err := w.Write([]byte(LiveReloadScript)); err != nil {
			c.logger.Debug("write livereload script", logfields.Error(err))
		}
	})
	if c.metricsHandler != nil {
		r.Handle("/metrics", c.metricsHandler)
	}

	files := http.FileServer(http.Dir(c.root))
	r.With(injectLiveReload).Handle("/*", files)
	return r
}

// Start binds the configured address (port 0 picks a free port) and serves in
// the background until Stop.
func (c *Controller) Start(_ context.Context) error {
	if !c.enabled {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.srv != nil {
		return errors.ServerError("dev server already started").Build()
	}

	ln, err := net.Listen("tcp", c.addr)
	if err != nil {
		return errors.WrapError(err, errors.CategoryServer, "bind dev server").
			Fatal().WithContext("addr", c.addr).Build()
	}
	// SSE connections are long-lived, so only the header read is bounded.
	c.srv = &http.Server{Handler: c.Handler(), ReadHeaderTimeout: 10 * time.Second, IdleTimeout: 300 * time.Second}
	c.session = Session{Addr: ln.Addr().String(), Root: c.root, StartedAt: time.Now()}

	srv := c.srv
	c.serveWG.Add(1)
	go func() {
		defer c.serveWG.Done()
		if err := srv.Serve(ln); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			c.logger.Error("Dev server stopped", logfields.Error(err))
		}
	}()
	c.logger.Info("Dev server listening", logfields.Addr(c.session.Addr), logfields.Path(c.root),
		slog.String("url", c.session.URL()))
	return nil
}

// Reload tells every connected browser to reload.
func (c *Controller) Reload() {
	if !c.enabled {
		return
	}
	c.hub.Broadcast(c.nextToken(""))
}

// ReloadFailed notifies browsers of a failed run without reloading them.
func (c *Controller) ReloadFailed() {
	if !c.enabled {
		return
	}
	c.hub.Broadcast(c.nextToken(errorTokenPrefix))
}

func (c *Controller) nextToken(prefix string) string {
	return fmt.Sprintf("%s%d-%d", prefix, time.Now().UnixNano(), c.seq.Add(1))
}

// Stop closes live-reload streams and shuts the server down gracefully.
func (c *Controller) Stop(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	c.mu.Lock()
	srv := c.srv
	c.mu.Unlock()
	if srv == nil {
		return nil
	}

	c.hub.Shutdown()
	err := srv.Shutdown(ctx)
	c.serveWG.Wait()
	if err != nil {
		return errors.WrapError(err, errors.CategoryServer, "shut down dev server").Build()
	}
	c.logger.Info("Dev server stopped", logfields.Addr(c.session.Addr))
	return nil
}

// Session returns the bound session; the zero value before Start.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Clients returns the number of connected live-reload clients.
func (c *Controller) Clients() int {
	return c.hub.Clients()
}
