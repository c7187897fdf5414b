package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hamrosewa/internal/api"
	"hamrosewa/internal/backend"
	"hamrosewa/internal/config"
	"hamrosewa/internal/database"
	"hamrosewa/internal/domain"
	"hamrosewa/internal/events"
	"hamrosewa/internal/logging"
	"hamrosewa/internal/metrics"
	"hamrosewa/internal/repository"
	"hamrosewa/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer (func() { _ = repository.Close(redisClient) })()
	}

	var db *database.DB
	if cfg.Storage.Driver == config.StorageSQLite {
		db, err = database.NewDB(cfg.Storage.Path, &logger)
		if err != nil {
			logger.Error().Err(err).Str("db_path", cfg.Storage.Path).Msg("init database")
			return err
		}
		defer db.Close()
		go purgeExpired(ctx, db, &logger)

		backups := database.NewBackupService(db.Path(), cfg.Backup, &logger)
		go backups.Start(ctx)
	}

	store, err := initStore(cfg, redisClient, db, &logger)
	if err != nil {
		return err
	}

	client := backend.NewClient(cfg.Backend.BaseURL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second, &logger)
	if redisClient != nil && cfg.Backend.CacheTTLSeconds > 0 {
		client.UseRedisCache(redisClient, time.Duration(cfg.Backend.CacheTTLSeconds)*time.Second)
	}

	bus := events.NewEventBus()
	events.SubscribeBooking(bus, &logger)

	var metricsHandler http.Handler
	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		metricsHandler = promhttp.Handler()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	httpServer := api.NewHTTPServer(cfg.Server, api.Deps{
		Catalog:     service.NewCatalogService(client, &logger),
		Auth:        service.NewAuthService(client, store, cfg.Auth.MaxAttempts, time.Duration(cfg.Auth.WindowSeconds)*time.Second, &logger),
		Preferences: service.NewPreferenceService(store, &logger),
		Source:      client,
		Booking:     client,
		Events:      bus,
		Metrics:     metricsHandler,
		ReadyChecks: readyChecks(redisClient, db),
		Debounce:    time.Duration(cfg.Catalog.DebounceMillis) * time.Millisecond,
		WindowDays:  cfg.Booking.WindowDays,
		ViewTTL:     time.Duration(cfg.Server.ViewTTLSeconds) * time.Second,
	}, &logger)

	go httpServer.SweepViews(ctx, time.Minute)
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	logger.Info().
		Int("http_port", cfg.Server.Port).
		Str("backend", cfg.Backend.BaseURL).
		Str("storage", cfg.Storage.Driver).
		Msg("web server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("web server stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "web-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initStore picks the visitor store. Redis is wrapped with an in-memory
// fallback so a redis outage degrades to per-process storage.
func initStore(cfg *config.Config, redisClient *redis.Client, db *database.DB, logger *zerolog.Logger) (domain.VisitorStore, error) {
	ttl := time.Duration(cfg.Storage.TTLSeconds) * time.Second
	memory := repository.NewMemoryVisitorRepository(ttl)

	switch cfg.Storage.Driver {
	case config.StorageRedis:
		if redisClient == nil {
			logger.Warn().Msg("redis storage requested but redis is unavailable, using memory")
			return memory, nil
		}
		primary := repository.NewRedisVisitorRepository(redisClient, ttl)
		return repository.NewFailoverVisitorRepository(primary, memory, logger), nil
	case config.StorageSQLite:
		if db == nil {
			return nil, errors.New("sqlite storage requires a database")
		}
		return repository.NewSQLiteVisitorRepository(db, ttl), nil
	default:
		return memory, nil
	}
}

func readyChecks(redisClient *redis.Client, db *database.DB) map[string]api.ReadyCheck {
	checks := map[string]api.ReadyCheck{}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return repository.Ping(ctx, redisClient) }
	}
	if db != nil {
		checks["sqlite"] = db.PingContext
	}
	return checks
}

func purgeExpired(ctx context.Context, db *database.DB, logger *zerolog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := db.PurgeExpired(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("purge expired visitor storage")
				continue
			}
			if n > 0 {
				logger.Debug().Int64("rows", n).Msg("purged expired visitor storage")
			}
		}
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
