package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/trailteams-backend/pkg/config"
	"github.com/angelmondragon/trailteams-backend/pkg/db"
	"github.com/angelmondragon/trailteams-backend/pkg/instance"
	"github.com/angelmondragon/trailteams-backend/pkg/logger"
	"github.com/angelmondragon/trailteams-backend/pkg/metrics"
	"github.com/angelmondragon/trailteams-backend/pkg/migrate"
	"github.com/angelmondragon/trailteams-backend/pkg/outbox"
	"github.com/angelmondragon/trailteams-backend/pkg/outbox/idempotency"
	"github.com/angelmondragon/trailteams-backend/pkg/outbox/registry"
	"github.com/angelmondragon/trailteams-backend/pkg/pubsub"
	"github.com/angelmondragon/trailteams-backend/pkg/redis"
)

const publishGuardTTL = 7 * 24 * time.Hour

func main() {
	requeue := flag.String("requeue", "", "comma separated outbox event ids to move out of the dead letter table, then exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "outbox-publisher"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "outbox-publisher"

	logg = logger.New(logger.Options{
		ServiceName: "outbox-publisher",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()
	guard, err := idempotency.NewLedger(redisClient, "outbox-publisher", publishGuardTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to build publish guard", err)
		os.Exit(1)
	}

	dlqRepo := outbox.NewDLQRepository(dbClient.DB())
	if *requeue != "" {
		ids, err := parseEventIDs(*requeue)
		if err != nil {
			logg.Error(context.Background(), "invalid -requeue value", err)
			os.Exit(2)
		}
		if err := requeueDeadLetters(context.Background(), dbClient, dlqRepo, logg, ids); err != nil {
			logg.Error(context.Background(), "dead letter requeue incomplete", err)
			os.Exit(1)
		}
		return
	}

	metricsRegistry := prometheus.NewRegistry()
	outboxMetrics := metrics.NewOutboxMetrics(metricsRegistry)

	repo := outbox.NewRepository(dbClient.DB())
	eventRegistry, err := registry.NewEventRegistry(cfg.PubSub)
	if err != nil {
		logg.Error(context.Background(), "failed to build event registry", err)
		os.Exit(1)
	}
	service, err := NewService(ServiceParams{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		PubSub:        pubsubClient,
		Repository:    repo,
		Registry:      eventRegistry,
		DLQRepository: dlqRepo,
		Guard:         guard,
		Metrics:       outboxMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox publisher", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "outbox-publisher",
		"instance":    instance.ID("outbox-publisher"),
	})
	logg.Info(ctx, "starting outbox publisher")
	logBacklog(ctx, dlqRepo, logg)

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "outbox publisher stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "outbox publisher shutting down gracefully")
}
