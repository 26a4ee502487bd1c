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
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"carwash/internal/httpapi"
	"carwash/internal/telemetry"
	"carwash/pkg/config"
	"carwash/pkg/db"
	"carwash/pkg/logger"
)

const serviceName = "carwash-api"

func main() {
	cfg := config.Load()
	zerolog.TimeFieldFormat = time.RFC3339
	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Service: serviceName,
		Pretty:  !cfg.IsProd(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.IsProd() && cfg.Auth.JWTSecret == "" {
		log.Fatal().Msg("AUTH_JWT_SECRET is required in prod")
	}

	shutdownTracing := telemetry.Setup(ctx, cfg, serviceName, log)

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("db open")
	}
	defer conn.Close()

	if cfg.MigrationsPath != "" {
		if err := db.Migrate(cfg); err != nil {
			log.Fatal().Err(err).Msg("migrate")
		}
	}

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:    cfg,
		DB:     conn,
		Logger: log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(router, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.AppEnv).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http serve")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
}
