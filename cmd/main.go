package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sensor_analytics/internal/analytics"
	"sensor_analytics/internal/config"
	"sensor_analytics/internal/handlers"
	"sensor_analytics/internal/ingest"
	"sensor_analytics/internal/logger"
	"sensor_analytics/internal/metrics"
	"sensor_analytics/internal/ratelimit"
	"sensor_analytics/internal/repository"
	"sensor_analytics/internal/repository/db"
	"sensor_analytics/internal/server"
	"sensor_analytics/internal/service"

	"github.com/go-redis/redis/v8"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// load configs/config.yml + ANALYTICS_* env
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Init(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	// open DB (alert history), optional
	sqlDB, err := openDB(cfg.DB, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	if sqlDB != nil {
		defer func() {
			if cerr := sqlDB.Close(); cerr != nil {
				log.Errorw("failed to close sqlite", "err", cerr)
			}
		}()
	}

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	engine := analytics.NewEngine(
		analytics.WithCapacity(cfg.Analytics.Capacity),
		analytics.WithThresholds(cfg.Analytics.Thresholds),
	)
	m := metrics.New()
	services := service.NewService(service.Deps{
		Engine:    engine,
		Repos:     repos,
		Metrics:   m,
		Log:       log.Named("analytics"),
		SensorID:  cfg.Simulator.SensorID,
		Simulated: cfg.Simulator.Enabled,
	})

	opts := []handlers.Option{
		handlers.WithMetrics(m),
		handlers.WithAllowedOrigins(cfg.CORS.AllowedOrigins),
		handlers.WithTrustedProxies(cfg.TrustedProxies),
	}
	if rdb := openRedis(cfg.Redis, log); rdb != nil {
		defer func() { _ = rdb.Close() }()
		opts = append(opts, handlers.WithRateLimiter(ratelimit.New(rdb, cfg.Redis.RateLimit, cfg.Redis.Window)))
	}
	apiHandler := handlers.NewHandler(services, log.Named("http"), opts...)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startBackground(ctx, cfg, services, log)

	// start HTTP server
	srv := server.New(cfg.Port, apiHandler.InitRoutes())
	runHTTPServer(srv, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

// openDB initializes the SQLite alert history when enabled.
func openDB(cfg config.DBConfig, log *logger.Logger) (*sql.DB, error) {
	if !cfg.Enabled {
		log.Infow("alert history disabled")
		return nil, nil
	}
	path := cfg.Path
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "analytics.db")
		path = "analytics.db"
	}
	return db.InitDB(path)
}

// openRedis returns a client for rate limiting, or nil when redis.addr is empty.
// An unreachable Redis at startup is logged; requests are let through until it recovers.
func openRedis(cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warnw("redis unreachable; rate limiting fails open", "addr", cfg.Addr, "err", err)
	} else {
		log.Infow("rate limiting enabled", "addr", cfg.Addr, "limit", cfg.RateLimit, "window", cfg.Window)
	}
	return rdb
}

// startBackground launches the optional simulator and Kafka consumer.
func startBackground(ctx context.Context, cfg *config.Config, services *service.Service, log *logger.Logger) {
	if services.Simulator != nil {
		log.Infow("sensor simulator enabled", "sensor_id", cfg.Simulator.SensorID, "tick", cfg.Simulator.Tick)
		go services.Simulator.Run(ctx, cfg.Simulator.Tick)
	}
	if cfg.Kafka.Enabled {
		log.Infow("kafka ingest enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic, "group_id", cfg.Kafka.GroupID)
		consumer := ingest.NewKafkaConsumer(cfg.Kafka, services.Analytics, log)
		go consumer.Run(ctx)
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "addr", srv.Addr())
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
