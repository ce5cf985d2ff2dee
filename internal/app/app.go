package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/clock"
	"golang.org/x/sync/errgroup"

	apphttp "github.com/yungbote/safetywatch-backend/internal/http"
	"github.com/yungbote/safetywatch-backend/internal/jobs/scheduler"
	"github.com/yungbote/safetywatch-backend/internal/observability"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
	"github.com/yungbote/safetywatch-backend/internal/platform/resend"
	"github.com/yungbote/safetywatch-backend/internal/platform/smtp"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Store    *Store
	Metrics  *observability.Metrics
	Services Services
	Router   *gin.Engine

	server       *apphttp.Server
	scheduler    *scheduler.Scheduler
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := NewWithConfig(log, cfg, clock.WallClock)
	if err != nil {
		log.Error("App bootstrap failed", "error", err)
		log.Sync()
		return nil, err
	}
	return a, nil
}

// NewWithConfig builds the app from an already parsed config. A backend that cannot be
// opened is fatal.
func NewWithConfig(log *logger.Logger, cfg Config, clk clock.Clock) (*App, error) {
	if isProduction(cfg.LogMode) {
		gin.SetMode(gin.ReleaseMode)
	}

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	store, err := resolveObservationStore(log, cfg, metrics)
	if err != nil {
		_ = otelShutdown(context.Background())
		return nil, err
	}

	mail, err := resolveMailer(log, resend.ConfigFromEnv(), smtp.ConfigFromEnv())
	if err != nil {
		_ = store.Close()
		_ = otelShutdown(context.Background())
		return nil, err
	}

	serviceset := wireServices(log, cfg, store, mail, metrics, clk)
	handlerset := wireHandlers(log, serviceset, store.Backend)
	router := wireRouter(log, cfg, handlerset, metrics)

	var sched *scheduler.Scheduler
	if cfg.OverdueEnabled {
		sched, err = scheduler.New(log, cfg.OverdueCron, serviceset.Overdue)
		if err != nil {
			_ = store.Close()
			_ = otelShutdown(context.Background())
			return nil, err
		}
	}

	return &App{
		Log:          log,
		Cfg:          cfg,
		Store:        store,
		Metrics:      metrics,
		Services:     serviceset,
		Router:       router,
		server:       wireServer(cfg, router),
		scheduler:    sched,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP and runs the overdue schedule until ctx is cancelled or either fails,
// then releases everything the app owns.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("Server listening", "addr", a.server.Addr(), "backend", a.Store.Backend)
		if err := a.server.Run(gctx, a.Cfg.ShutdownTimeout); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if a.scheduler != nil {
		g.Go(func() error {
			return a.scheduler.Run(gctx)
		})
	}

	err := g.Wait()
	if closeErr := a.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	return err
}

// ScanOverdue runs one overdue scan and blocks until the digest send has finished. The wait is
// bounded by the notifier's per-send timeout, not by SHUTDOWN_TIMEOUT.
func (a *App) ScanOverdue(ctx context.Context) (int, error) {
	if a == nil || a.Services.Overdue == nil {
		return 0, fmt.Errorf("app not initialized")
	}
	n, err := a.Services.Overdue.Scan(ctx)
	if err != nil {
		return n, err
	}
	if a.Services.Notifier != nil {
		a.Services.Notifier.Wait()
	}
	return n, nil
}

// Close waits for in-flight notifications and releases the store handle.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.Services.Notifier != nil {
		waitWithTimeout(a.Services.Notifier.Wait, a.Cfg.ShutdownTimeout, a.Log)
	}
	var errs []error
	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("otel shutdown: %w", err))
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return errors.Join(errs...)
}

func waitWithTimeout(wait func(), timeout time.Duration, log *logger.Logger) {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		log.Warn("Gave up waiting for in-flight notifications", "timeout", timeout)
	}
}

func isProduction(mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		return true
	}
	return false
}
