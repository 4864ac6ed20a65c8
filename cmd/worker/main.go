package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/workflow"

	"github.com/ghuser/itemtree/pkg/app"
	"github.com/ghuser/itemtree/pkg/cache"
	"github.com/ghuser/itemtree/pkg/config"
	"github.com/ghuser/itemtree/pkg/database"
	"github.com/ghuser/itemtree/pkg/events"
	"github.com/ghuser/itemtree/pkg/httpx"
	"github.com/ghuser/itemtree/pkg/logger"
	"github.com/ghuser/itemtree/pkg/telemetry"
	"github.com/ghuser/itemtree/pkg/workflows"
	itemServices "github.com/ghuser/itemtree/services/item/application/services"
	"github.com/ghuser/itemtree/services/item/application/subscribers"
	itemWorkflows "github.com/ghuser/itemtree/services/item/application/workflows"
	itemEvents "github.com/ghuser/itemtree/services/item/domain/events"
	"github.com/ghuser/itemtree/services/item/infrastructure/persistence/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx := context.Background()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DefinitionDatabaseURL, log, database.PoolOptions{
		MaxOpenConns: cfg.DatabaseMaxOpenConns,
		MaxIdleConns: cfg.DatabaseMaxIdleConns,
	})
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(events.BusOptions{
		DSN:           cfg.DefinitionDatabaseURL,
		ConsumerGroup: cfg.ServiceName + "-consumer",
	}, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL, cache.RedisOptions{
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	appConfig := &app.Application{
		Config:   cfg,
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
	}

	if cfg.TemporalEnabled {
		temporalClient, err := workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer temporalClient.Close()
		appConfig.TemporalClient = temporalClient
	}

	if err := registerSubscribers(ctx, appConfig); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	sweepCtx, cancelSweep := context.WithCancel(ctx)
	stopSweep, err := startIntegritySweep(sweepCtx, appConfig)
	if err != nil {
		log.Error("failed to start integrity sweep", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	healthSrv := startHealthServer(appConfig)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancelSweep()
	stopSweep()

	if healthSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := healthSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn("health server shutdown", "error", err)
		}
		cancel()
	}

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// startHealthServer exposes the worker's dependencies on /health so the
// orchestrator can restart a worker that lost its database.
func startHealthServer(a *app.Application) *http.Server {
	if a.Config.WorkerHealthAddr == "" {
		return nil
	}

	checks := httpx.HealthChecks{
		Database: a.Db,
		Redis:    a.Redis,
		EventBus: a.EventBus,
	}
	if a.TemporalClient != nil {
		checks.Temporal = a.TemporalClient
	}

	mux := http.NewServeMux()
	mux.Handle("GET /health", httpx.HealthHandler(checks))
	srv := httpx.NewServer(a.Config.WorkerHealthAddr, mux)

	go func() {
		a.Logger.Info("worker health listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("worker health server", "error", err)
		}
	}()
	return srv
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application) error {
	readModel := itemServices.NewCacheReadModel(cache.NewItemCache(a.Redis))
	cacheSync := subscribers.NewCacheSync(readModel, a.Logger)

	errCh, err := a.EventBus.Subscribe(ctx, itemEvents.TopicItemChanged, cacheSync.Handle)
	if err != nil {
		return err
	}

	// Drain subscriber errors in background so the channel never blocks.
	go func() {
		for err := range errCh {
			a.Logger.ErrorContext(ctx, "subscriber error",
				"topic", itemEvents.TopicItemChanged,
				"error", err,
			)
		}
	}()

	a.Logger.Info("event subscribers registered", "topics", []string{itemEvents.TopicItemChanged})
	return nil
}

// startIntegritySweep verifies every tenant's hierarchy once per
// cfg.IntegritySweepInterval: through Temporal when a client is configured,
// otherwise on an in-process ticker. The returned func blocks until the sweep
// has stopped; cancel ctx first.
func startIntegritySweep(ctx context.Context, a *app.Application) (func(), error) {
	interval := a.Config.IntegritySweepInterval
	if interval <= 0 {
		a.Logger.Info("integrity sweep disabled")
		return func() {}, nil
	}

	acts := &itemWorkflows.IntegrityActivities{
		Tenants:  postgres.NewReferenceRepository(a.Db),
		Verifier: itemServices.New(a).Hierarchy,
		Logger:   a.Logger,
	}
	done := make(chan struct{})

	if a.TemporalClient != nil {
		w := a.TemporalClient.NewWorker(itemWorkflows.TaskQueue)
		w.RegisterWorkflowWithOptions(itemWorkflows.VerifyHierarchyWorkflow,
			workflow.RegisterOptions{Name: itemWorkflows.VerifyHierarchyWorkflowName})
		w.RegisterActivityWithOptions(acts, activity.RegisterOptions{})
		if err := w.Start(); err != nil {
			return nil, err
		}
		go func() {
			defer close(done)
			a.TemporalClient.RunEvery(ctx, interval, "verify-hierarchy", itemWorkflows.TaskQueue,
				itemWorkflows.VerifyHierarchyWorkflowName)
		}()
		a.Logger.Info("integrity sweep scheduled on temporal", "interval", interval, "task_queue", itemWorkflows.TaskQueue)
		return func() { <-done; w.Stop() }, nil
	}

	go func() {
		defer close(done)
		runLocalSweep(ctx, acts, interval, a.Logger)
	}()
	a.Logger.Info("integrity sweep running in-process", "interval", interval)
	return func() { <-done }, nil
}

func runLocalSweep(ctx context.Context, acts *itemWorkflows.IntegrityActivities, interval time.Duration, log logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("integrity sweep shutting down")
			return
		case <-ticker.C:
			result, err := itemWorkflows.RunSweep(ctx, acts)
			if err != nil {
				log.ErrorContext(ctx, "integrity sweep failed", "error", err)
				telemetry.CaptureError(ctx, err, map[string]string{"component": "integrity_sweep"})
				continue
			}
			if len(result.Unhealthy) > 0 {
				telemetry.CaptureError(ctx, fmt.Errorf("hierarchy integrity: %d violation(s) in %d tenant(s)",
					result.Violations, len(result.Unhealthy)), map[string]string{"component": "integrity_sweep"})
			}
			log.InfoContext(ctx, "integrity sweep finished",
				"tenants", result.Tenants,
				"checked", result.Checked,
				"violations", result.Violations,
				"failed", len(result.Failed),
			)
		}
	}
}
