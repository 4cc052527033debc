package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/accessdesk/project-access/internal/api"
	"github.com/accessdesk/project-access/internal/api/handler"
	"github.com/accessdesk/project-access/internal/core/service"
	"github.com/accessdesk/project-access/internal/infrastructure/db/mongo"
	"github.com/accessdesk/project-access/internal/infrastructure/db/redis"
	"github.com/accessdesk/project-access/internal/infrastructure/queue"
	"github.com/accessdesk/project-access/internal/infrastructure/scheduler"
	"github.com/accessdesk/project-access/internal/pkg/config"
	"github.com/accessdesk/project-access/pkg/logger"
)

// @title        Project Access API
// @version      1.0
// @description  Role-based access to projects: sessions, project registry, access requests and reports.
// @BasePath     /api

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "project-access",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}

	// --- Repositories ---
	users := mongo.NewUserRepository(db)
	projects := mongo.NewProjectRepository(db)
	requests := mongo.NewRequestRepository(db)
	activity := mongo.NewActivityRepository(db)
	sessions := redis.NewSessionStore(rdb)
	tx := mongo.NewTxRunner(mongoClient, cfg.Mongo.Transactions)

	// --- Services ---
	authService := service.NewAuthService(users, sessions, service.NewSessionTokens(cfg.Session.Secret),
		cfg.Session.TTL, logger.Component("auth"))
	userService := service.NewUserService(users, projects, requests, sessions, logger.Component("users"))
	projectService := service.NewProjectService(projects, logger.Component("projects"))
	requestService := service.NewRequestService(requests, projects, tx, logger.Component("requests"))
	reportService := service.NewReportService(requests, logger.Component("reports"))

	dispatcher := queue.NewDispatcher(cfg.Activity.Workers, activity, logger.Component("activity"))
	dispatcher.Start(ctx)

	cron := scheduler.New(logger.Component("scheduler"))
	if cfg.Reconcile.Enabled {
		reconciler := service.NewReconciler(requests, projects, logger.Component("reconciler"))
		err := cron.Add("grant-reconciler", cfg.Reconcile.Schedule, func(ctx context.Context) error {
			_, err := reconciler.Run(ctx)
			return err
		})
		if err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.Reconcile.Schedule).Msg("invalid reconcile schedule")
		}
	}
	cron.Start()

	e := api.NewRouter(api.Deps{
		Config:   cfg,
		Log:      logger.Component("http"),
		Auth:     authService,
		Users:    userService,
		Projects: projectService,
		Requests: requestService,
		Reports:  reportService,
		Activity: dispatcher,
		HealthChecks: map[string]handler.HealthCheck{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort("", cfg.Port),
		Handler:      e,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cron.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	shutdownStores(shutdownCtx, mongoClient, rdb)
	log.Info().Msg("server stopped gracefully")
}

type disconnecter interface {
	Disconnect(ctx context.Context) error
}

func shutdownStores(ctx context.Context, mongoClient disconnecter, rdb *goredis.Client) {
	log := logger.Get()
	if err := mongoClient.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect failed")
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close failed")
	}
}
