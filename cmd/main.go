package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/tierlist/internal/adapters/http/api"
	"github.com/okian/tierlist/internal/adapters/http/swagger"
	"github.com/okian/tierlist/internal/adapters/repository"
	app "github.com/okian/tierlist/internal/app"
	"github.com/okian/tierlist/internal/config"
	"github.com/okian/tierlist/internal/domain/dataset"
	"github.com/okian/tierlist/pkg/logger"
	"github.com/okian/tierlist/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "tierlist exited with error", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or the listener fails, then shuts down
// in reverse order of startup.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	store, err := repository.Open(cfg.StoreDriver, cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn(ctx, "closing store", logger.Error(err))
		}
	}()

	catalog, err := loadCatalog(ctx, cfg.DatasetPath, log)
	if err != nil {
		return err
	}

	svc := newService(cfg, store, catalog, log)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Warn(ctx, "service stop", logger.Error(err))
		}
	}()

	if cfg.WatchDataset {
		watcher := dataset.NewWatcher(cfg.DatasetPath, svc.SetCatalog,
			dataset.WithWatcherLogger(log.Named("dataset")))
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("watch dataset: %w", err)
		}
		defer watcher.Stop()
	}

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

func loadCatalog(ctx context.Context, path string, log logger.Logger) (*dataset.Catalog, error) {
	catalog, err := dataset.Load(path)
	if err != nil {
		metrics.RecordDatasetReload(false, 0)
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	metrics.RecordDatasetReload(true, catalog.Size())
	if missing := catalog.Missing(); len(missing) > 0 {
		log.Warn(ctx, "dataset references unknown contestants", logger.Any("missing", missing))
	}
	source := path
	if source == "" {
		source = "built-in"
	}
	log.Info(ctx, "dataset loaded",
		logger.String("source", source),
		logger.Int("groups", len(catalog.Summaries())),
		logger.Int("contestants", catalog.Size()),
	)
	return catalog, nil
}

func newService(cfg *config.Config, store repository.Store, catalog *dataset.Catalog, log logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithStore(store),
		app.WithCatalog(catalog),
		app.WithHistoryLimit(cfg.HistoryLimit),
		app.WithAutosave(cfg.Autosave),
		app.WithQueueSize(cfg.AutosaveQueueSize),
		app.WithWorkerCount(cfg.AutosaveWorkers),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithMaxSessions(cfg.MaxSessions),
		app.WithDefaultTheme(cfg.DefaultTheme),
	)
}

func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater refreshes the heap and goroutine gauges until ctx ends.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateSystemMetrics()
		}
	}
}
