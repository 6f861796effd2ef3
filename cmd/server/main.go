package main

import (
	"context"
	"dispatch-route-service/internal/adapters/cache"
	"dispatch-route-service/internal/adapters/events"
	"dispatch-route-service/internal/adapters/report"
	"dispatch-route-service/internal/adapters/repositories"
	"dispatch-route-service/internal/adapters/routing"
	"dispatch-route-service/internal/api"
	"dispatch-route-service/internal/config"
	"dispatch-route-service/internal/platform/db"
	"dispatch-route-service/internal/platform/logging"
	"dispatch-route-service/internal/platform/obs"
	"dispatch-route-service/internal/ports"
	"dispatch-route-service/internal/services"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, NATS, ORS) behind ports and
// starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	obs.SetLogger(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if strings.TrimSpace(cfg.ORS.APIKey) == "" {
		return errors.New("ORS_API_KEY is required")
	}

	var (
		geocodeCache ports.GeocodeCache
		routeCache   ports.RouteCache
		opts         []services.DispatcherOption
	)

	if cfg.Database.URL != "" {
		conn, err := db.Open(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := repositories.InitSchema(ctx, conn); err != nil {
			return err
		}

		geocodeCache = cache.NewSQLGeocodeCache(conn)
		routeCache = cache.NewSQLRouteCache(conn, cfg.Cache.RouteTTL)
		opts = append(opts, services.WithDecisionRepository(repositories.NewSQLDecisionRepository(conn)))
		logger.Info("postgres storage enabled")
	} else {
		logger.Warn("DATABASE_URL not set; geocode cache and decision history disabled")
	}

	if cfg.Redis.Addr != "" {
		rdb, err := openRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()

		// Redis takes over route caching from Postgres when both are set.
		routeCache = cache.NewRedisRouteCache(rdb, cfg.Cache.RouteTTL)
		logger.Info("redis route cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	reporters := []ports.Reporter{report.NewLogReporter(logger)}
	if cfg.NATS.URL != "" {
		nc, err := events.Connect(cfg.NATS.URL)
		if err != nil {
			return err
		}
		defer events.Close(nc, logger)

		reporters = append(reporters, events.NewNATSReporter(nc, logger))
		logger.Info("nats events enabled", zap.String("url", cfg.NATS.URL))
	}

	ors, err := routing.NewORSClient(routing.ORSConfig{
		APIKey:       cfg.ORS.APIKey,
		BaseURL:      cfg.ORS.BaseURL,
		Profile:      cfg.ORS.Profile,
		Timeout:      cfg.ORS.Timeout,
		Alternatives: cfg.ORS.Alternatives,
		Country:      cfg.ORS.Country,
	}, geocodeCache, routeCache, logger)
	if err != nil {
		return err
	}

	opts = append(opts, services.WithFallbackRoutes(cfg.Fallback))
	dispatcher, err := services.NewDispatcher(
		ors, ors,
		cfg.Economics,
		cfg.Simulation.Simulator(),
		report.NewMulti(reporters...),
		logger,
		opts...,
	)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.Deps{
		Dispatcher: dispatcher,
		Simulator:  cfg.Simulation.Simulator(),
		Logger:     logger,
	})

	// Write timeout allows for cold-cache geocoding plus directions latency.
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}
