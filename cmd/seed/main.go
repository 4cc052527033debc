// Command seed creates the initial admin account.
package main

import (
	"context"
	"time"

	"github.com/accessdesk/project-access/internal/core/service"
	"github.com/accessdesk/project-access/internal/infrastructure/db/mongo"
	"github.com/accessdesk/project-access/internal/pkg/config"
	"github.com/accessdesk/project-access/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: !cfg.IsProduction(), Service: "seed"})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	created, err := service.EnsureAdmin(ctx, mongo.NewUserRepository(db), cfg.Seed.AdminUsername, cfg.Seed.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("admin seed failed")
	}
	if !created {
		log.Info().Str("username", cfg.Seed.AdminUsername).Msg("admin already exists")
		return
	}
	log.Info().Str("username", cfg.Seed.AdminUsername).Msg("admin created")
}
