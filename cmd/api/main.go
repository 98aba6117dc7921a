package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/trailteams-backend/api/routes"
	"github.com/angelmondragon/trailteams-backend/internal/auth"
	"github.com/angelmondragon/trailteams-backend/internal/memberships"
	"github.com/angelmondragon/trailteams-backend/internal/teams"
	"github.com/angelmondragon/trailteams-backend/internal/users"
	"github.com/angelmondragon/trailteams-backend/pkg/auth/session"
	"github.com/angelmondragon/trailteams-backend/pkg/config"
	"github.com/angelmondragon/trailteams-backend/pkg/db"
	"github.com/angelmondragon/trailteams-backend/pkg/instance"
	"github.com/angelmondragon/trailteams-backend/pkg/logger"
	"github.com/angelmondragon/trailteams-backend/pkg/metrics"
	"github.com/angelmondragon/trailteams-backend/pkg/migrate"
	"github.com/angelmondragon/trailteams-backend/pkg/outbox"
	"github.com/angelmondragon/trailteams-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
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

	sessionManager, err := session.NewManager(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	userRepo := users.NewRepository(dbClient.DB())
	resolver, err := users.NewResolver(userRepo, redisClient, cfg.Identity, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity resolver", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Identity:       resolver,
		Profiles:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	teamService, err := teams.NewService(teams.ServiceParams{
		Teams:       teams.NewRepository(dbClient.DB()),
		Memberships: memberships.NewRepository(dbClient.DB()),
		Users:       userRepo,
		Identity:    resolver,
		Tx:          dbClient,
		Outbox:      outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Metrics:     metrics.NewTeamMetrics(reg),
		Logger:      logg,
		Config:      cfg.Teams,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create team service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID("api"),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			Auth:        authService,
			Teams:       teamService,
			Gatherer:    reg,
			HTTPMetrics: metrics.NewHTTPMetrics(reg),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = multierr.Combine(
		server.Shutdown(shutdownCtx),
		redisClient.Close(),
		dbClient.Close(),
	)
	if err != nil {
		logg.Error(ctx, "api shutdown incomplete", err)
		exitCode = 1
	} else {
		logg.Info(ctx, "api server stopped")
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
