package main

import (
	"context"
	"dispatch-route-service/internal/adapters/repositories"
	"dispatch-route-service/internal/config"
	"dispatch-route-service/internal/platform/db"
	"dispatch-route-service/internal/platform/logging"
	"flag"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// dbtool creates the Postgres schema and preloads the geocode cache.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	seedPath := flag.String("seed", config.Get("SEED_PATH", "data/seeds/geocodes.json"), "geocode seed file; empty skips seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.Log.Level, "console")
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if strings.TrimSpace(cfg.Database.URL) == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	logger.Info("initializing database schema")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		logger.Fatal("schema initialization failed", zap.Error(err))
	}
	logger.Info("schema ready")

	if *seedPath == "" {
		return
	}

	n, err := repositories.SeedGeocodesFromJSON(ctx, conn, *seedPath)
	if err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
	logger.Info("seeding complete", zap.Int("places", n), zap.String("path", *seedPath))
}
