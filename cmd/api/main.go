package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"profile-service/internal/auth"
	"profile-service/internal/config"
	"profile-service/internal/core"
	"profile-service/internal/database"
	"profile-service/internal/repository"
	"profile-service/internal/router"
	"profile-service/internal/service"
	"profile-service/internal/storage"
	"profile-service/internal/telemetry"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Version information (set during build)
	version   = "1.0.0"
	buildTime = "unknown"
	gitCommit = "unknown"
)

const dbConnectAttempts = 5

// @title           Profile Service API
// @version         1.0.0
// @description     User registration, login, profile and profile photo management.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @BasePath  /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	logger := initLogger()

	logger.Info().
		Str("version", version).
		Str("build_time", buildTime).
		Str("git_commit", gitCommit).
		Str("go_version", runtime.Version()).
		Str("os", runtime.GOOS).
		Str("arch", runtime.GOARCH).
		Msg("Starting profile service")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Configuration validation failed")
	}

	if cfg.IsDevelopment() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = logger

	// Tracing first so the pool's query tracer picks up the provider
	tp, err := telemetry.InitTracerProvider(context.Background(), cfg.OtelEndpoint, version)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize TracerProvider")
	}

	db, err := connectWithRetry(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Database connection failed after all retries")
	}

	app := &config.Application{
		Config:         cfg,
		Logger:         logger,
		DB:             db,
		TracerProvider: tp,
	}

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	err = database.RunMigrations(migrateCtx, db)
	cancelMigrate()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database schema")
	}

	// Core wiring
	repo := repository.NewUserRepository(db, cfg.GetQueryTimeout())
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	tokens := auth.NewJWTService(cfg.App_Secret, cfg.GetJWTExpiration())

	photoStore, err := newPhotoStorage(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("Failed to initialize photo storage")
	}
	photos := service.NewPhotoService(repo, photoStore, logger.With().Str("component", "photos").Logger(), cfg.UploadMaxBytes)
	users := service.NewUserService(repo, hasher, tokens, photos, logger.With().Str("component", "users").Logger())

	database.SeedDefaultUser(app, repo, hasher)

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	database.StartConnectionMonitoring(monitorCtx, db, 5*time.Minute)

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: router.Setup(app, router.Dependencies{
			Users:  users,
			Photos: photos,
			Tokens: tokens,
			Probe:  repo,
		}),
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.GetRequestTimeout() + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().
			Int("port", cfg.Port).
			Str("env", cfg.App_Env).
			Str("storage", cfg.StorageBackend).
			Msg("Starting HTTP server")

		serverErrors <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	case sig := <-quit:
		logger.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal, starting graceful shutdown...")

		stopMonitor()
		gracefulShutdown(srv, app, logger)
	}

	logger.Info().Msg("Server stopped gracefully")
}

// initLogger initializes the global logger
func initLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return log.With().
		Timestamp().
		Caller().
		Logger()
}

func connectWithRetry(cfg config.Config, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg := database.DefaultPoolConfig()
	if cfg.DbMaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.DbMaxConns)
	}
	if cfg.DbMinConns > 0 {
		poolCfg.MinConns = int32(cfg.DbMinConns)
	}

	var lastErr error
	for attempt := 1; attempt <= dbConnectAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err := database.Connect(ctx, cfg.DatabaseURL, poolCfg)
		cancel()
		if err == nil {
			return db, nil
		}
		lastErr = err

		logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Msg("Database connection failed, retrying...")
		if attempt < dbConnectAttempts {
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}
	return nil, lastErr
}

func newPhotoStorage(cfg config.Config) (core.PhotoStorage, error) {
	switch cfg.StorageBackend {
	case "s3":
		opts := storage.S3Options{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
			KeyPrefix:     "profile",
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := storage.NewS3Client(ctx, opts)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Storage(client, opts), nil
	default:
		local, err := storage.NewLocalStorage(cfg.UploadDir, cfg.UploadURLPrefix)
		if err != nil {
			return nil, err
		}
		return local, nil
	}
}

// gracefulShutdown drains HTTP first, then flushes traces and closes the pool.
func gracefulShutdown(srv *http.Server, app *config.Application, logger zerolog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	srv.SetKeepAlivesEnabled(false)

	logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete")
	}

	logger.Info().Msg("Shutting down OpenTelemetry TracerProvider...")
	if err := app.TracerProvider.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("TracerProvider shutdown error")
	}

	logger.Info().Msg("Closing database connections...")
	app.DB.Close()

	logger.Info().Msg("Graceful shutdown completed")
}
