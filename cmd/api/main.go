package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"folio-backend/internal/app"
	"folio-backend/internal/config"

	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	a, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}
	defer a.Close()

	if err := a.Migrate(); err != nil {
		a.Logger.Fatal().Err(err).Msg("database migration failed")
	}
	if a.Redis != nil {
		if err := a.Redis.Ping(context.Background()).Err(); err != nil {
			a.Logger.Warn().Err(err).Msg("redis unreachable; quotes are cached in process only")
		}
	}
	if err := a.StartScheduler(); err != nil {
		a.Logger.Fatal().Err(err).Str("schedule", cfg.DailyCron).Msg("scheduler")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("port", cfg.Port).Str("timezone", cfg.Timezone).Msg("server listening")
		errCh <- a.Fiber.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.Logger.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		a.Logger.Info().Msg("shutting down")
		if err := a.Fiber.ShutdownWithTimeout(shutdownTimeout); err != nil {
			a.Logger.Error().Err(err).Msg("shutdown")
		}
	}
}
