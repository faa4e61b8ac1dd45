package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daraja/internal/config"
	httpx "daraja/internal/http"
	"daraja/internal/http/handlers"
	"daraja/internal/provider"
	"daraja/internal/provider/mpesa"
	"daraja/internal/store/postgres"
	"daraja/internal/store/redis"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	level, err := zerolog.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := log.With().Str("env", cfg.App.Env).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := provider.NewRegistry(logger)
	mpesa.RegisterCallbackParsers(reg, logger)

	var sinks []handlers.Sink

	// Postgres keeps every callback when DB_DSN is set
	if cfg.DB.DSN != "" {
		pool := postgres.MustOpen(ctx, cfg.DB.DSN, logger)
		defer pool.Close()
		store := postgres.NewCallbackStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("db schema")
		}
		sinks = append(sinks, store)
	}

	// Redis fans callbacks out to subscribers when REDIS_ADDR is set
	if cfg.Redis.Addr != "" {
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connect fail")
		}
		defer client.Close()
		sinks = append(sinks, redis.NewPublisher(client, cfg.Redis.ChannelPrefix))
	}

	if len(sinks) == 0 {
		logger.Warn().Msg("no DB_DSN or REDIS_ADDR set, callbacks are parsed and logged only")
	}

	r := httpx.NewRouter(httpx.RouterDependencies{
		Config:   cfg,
		Registry: reg,
		Sinks:    sinks,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Info().Msgf("Daraja callback receiver listening on :%s", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	cancel()
	ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	logger.Info().Msg("server stopped")
}
