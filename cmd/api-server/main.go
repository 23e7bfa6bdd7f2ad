package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/carebridge/practice-scheduling/internal/api"
	"github.com/carebridge/practice-scheduling/internal/appointment"
	"github.com/carebridge/practice-scheduling/internal/availability"
	"github.com/carebridge/practice-scheduling/internal/config"
	"github.com/carebridge/practice-scheduling/internal/db"
	redisclient "github.com/carebridge/practice-scheduling/internal/redis"
	"github.com/carebridge/practice-scheduling/internal/tzpref"
)

const version = "1.2.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		stderrLogger := zerolog.New(os.Stderr)
		stderrLogger.Fatal().Err(err).Msg("config load error")
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Env == "dev" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	logger.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	logger.Info().Msg("connected to Postgres")

	rdb, err := redisclient.New(rootCtx, redisclient.Config{
		Addr:      cfg.RedisAddr,
		Username:  cfg.RedisUsername,
		Password:  cfg.RedisPassword,
		PoolSize:  cfg.RedisPoolSize,
		OpTimeout: cfg.RedisOpTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing redis")
		}
	}()
	logger.Info().Msg("connected to Redis")

	availRepo := availability.NewPgRepository(pgPool)
	availSvc := availability.NewService(availRepo, logger)
	materializer := availability.NewMaterializer(availRepo)

	apptRepo := appointment.NewPgRepository(pgPool)
	apptSvc := appointment.NewService(apptRepo, logger)

	zones := tzpref.NewService(pgPool, rdb, cfg.TZPrefCacheTTL, logger)

	router := api.NewRouter(api.RouterConfig{
		Availability: availSvc,
		Materializer: materializer,
		Appointments: apptSvc,
		Zones:        zones,
		PgPool:       pgPool,
		Redis:        rdb,
		Logger:       logger,
		Env:          cfg.Env,
		Version:      version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	logger.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
