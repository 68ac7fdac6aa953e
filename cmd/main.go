package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/okian/supportxp/internal/adapters/http/api"
	service "github.com/okian/supportxp/internal/app"
	"github.com/okian/supportxp/internal/config"
	"github.com/okian/supportxp/pkg/logger"
	"github.com/okian/supportxp/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	intakeMetricsInterval = 5 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		// logger may not be available yet
		os.Stderr.WriteString("supportxp: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.InitWithOptions(logger.WithFormat(cfg.LogFormat)); err != nil {
		return errors.Wrap(err, "initialize logging")
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	engine, err := newEngine(ctx, cfg, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(engine, cfg),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		updateIntakeMetrics(gctx, engine, intakeMetricsInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return shutdown(shutdownCtx, srv, engine)
	})

	if err := g.Wait(); err != nil {
		log.Error(ctx, "server stopped with error", logger.Error(err))
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}

// shutdown stops intake first so no submission lands after the queue closes,
// then drains the engine even when the HTTP server fails to stop cleanly.
func shutdown(ctx context.Context, srv interface{ Shutdown(context.Context) error }, engine interface{ Stop(context.Context) error }) error {
	var err error
	if serr := srv.Shutdown(ctx); serr != nil {
		err = errors.Wrap(serr, "shutdown http server")
	}
	if eerr := engine.Stop(ctx); eerr != nil {
		err = errors.CombineErrors(err, errors.Wrap(eerr, "stop engine"))
	}
	return err
}

// newEngine builds and starts the engine described by cfg.
func newEngine(ctx context.Context, cfg *config.Config, log logger.Logger) (*service.Engine, error) {
	opts, err := service.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	engine, err := service.New(append(opts, service.WithLogger(log.Named("engine")))...)
	if err != nil {
		return nil, err
	}
	if err := engine.Start(ctx); err != nil {
		return nil, err
	}
	return engine, nil
}

// newMux registers the API, health and metrics routes for engine.
func newMux(engine *service.Engine, cfg *config.Config) *http.ServeMux {
	opts := []api.Option{api.WithLeaderboardMaxLimit(cfg.LeaderboardMaxLimit)}
	if cfg.IntakeRateLimit > 0 {
		opts = append(opts, api.WithIntakeLimiter(rate.NewLimiter(rate.Limit(cfg.IntakeRateLimit), cfg.IntakeBurst)))
	}

	mux := http.NewServeMux()
	api.NewServer(engine, opts...).Register(mux)
	return mux
}

// updateIntakeMetrics refreshes gauges that no hook reports, such as dedupe
// entries dropped by TTL expiry, until ctx is done.
func updateIntakeMetrics(ctx context.Context, engine *service.Engine, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := engine.GetIntakeStats(ctx)
			metrics.UpdateQueueDepth(stats.QueueLength)
			metrics.UpdateDedupeEntries(int(stats.DedupeEntries))
			metrics.UpdateWorkerCount(stats.Workers)
		}
	}
}
