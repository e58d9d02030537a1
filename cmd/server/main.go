package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hexlight/portal-notifier/internal/api"
	"github.com/hexlight/portal-notifier/internal/config"
	"github.com/hexlight/portal-notifier/internal/db"
	"github.com/hexlight/portal-notifier/internal/dedup"
	"github.com/hexlight/portal-notifier/internal/dispatcher"
	"github.com/hexlight/portal-notifier/internal/metrics"
	"github.com/hexlight/portal-notifier/internal/ratelimiter"
	"github.com/hexlight/portal-notifier/internal/relay"
	"github.com/hexlight/portal-notifier/internal/resolver"
	"github.com/hexlight/portal-notifier/internal/store"
	"github.com/hexlight/portal-notifier/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	profiles := store.NewPgProfileRepository(pool)
	projects := store.NewPgProjectRepository(pool)
	deliveries := store.NewPgDeliveryRepository(pool)

	relayClient := relay.NewClient(cfg.RelayBaseURL, cfg.RelayTimeout)
	limiter := ratelimiter.New(cfg.RateLimit)

	// One dedup cache per process: its suppression state is intentionally
	// in-memory and dies with the process.
	cache := dedup.NewCache(cfg.DedupCooldown, cfg.DedupMaxEntries)

	res := resolver.New(profiles, projects, relayClient, logger, m.ResolverHooks())
	disp := dispatcher.New(
		res, cache, relayClient, deliveries, limiter,
		cfg.PortalBaseURL, logger, m.DispatcherHooks(),
	)

	// ---- background workers ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	pruneW := worker.NewPruneWorker(deliveries, cfg.PruneInterval, cfg.DeliveryRetention, logger)
	go pruneW.Run(workerCtx)

	// ---- HTTP server ----
	router := api.NewRouter(disp, deliveries, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// Stop accepting new HTTP requests; in-flight dispatches finish within
	// the write timeout.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	cancelWorkers()

	logger.Info("server stopped cleanly")
}
