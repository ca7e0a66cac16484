package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/calebmorris/cartly-backend/internal/cron"
	searchsvc "github.com/calebmorris/cartly-backend/internal/search"
	usersvc "github.com/calebmorris/cartly-backend/internal/users"
	"github.com/calebmorris/cartly-backend/pkg/config"
	"github.com/calebmorris/cartly-backend/pkg/db"
	"github.com/calebmorris/cartly-backend/pkg/instance"
	"github.com/calebmorris/cartly-backend/pkg/logger"
	"github.com/calebmorris/cartly-backend/pkg/metrics"
	"github.com/calebmorris/cartly-backend/pkg/migrate"
	"github.com/calebmorris/cartly-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cleanup-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cleanup-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cleanup-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	defer func() {
		closeErr := multierr.Combine(redisClient.Close(), dbClient.Close())
		if closeErr != nil {
			logg.Error(context.Background(), "error closing resources", closeErr)
		}
	}()

	jobMetrics := metrics.NewJobMetrics(prometheus.DefaultRegisterer)

	anonymousJob, err := cron.NewAnonymousCleanupJob(cron.AnonymousCleanupJobParams{
		Logger:     logg,
		Repository: usersvc.NewRepository(dbClient.DB()),
		Metrics:    jobMetrics,
		Retention:  cfg.Cleanup.AnonymousRetention(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create anonymous cleanup job", err)
		os.Exit(1)
	}

	searchPurgeJob, err := cron.NewSearchCachePurgeJob(cron.SearchCachePurgeJobParams{
		Logger:     logg,
		Repository: searchsvc.NewRepository(dbClient.DB()),
		Metrics:    jobMetrics,
		TTL:        cfg.Search.CacheTTL(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create search cache purge job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cleanup-worker"), cfg.Cleanup.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cleanup lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(anonymousJob, searchPurgeJob),
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Cleanup.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cleanup service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})
	logg.Info(ctx, "starting cleanup worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cleanup worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cleanup worker shutting down gracefully")
}
