package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldsync/internal/config"
	"fieldsync/internal/infra"
	"fieldsync/internal/router"
	"fieldsync/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local store")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r, syncSvc := router.New(cfg, db)

	// Background auto-sync — pushes pending records whenever coverage allows.
	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	worker.StartSyncCron(ctx, worker.SyncCronConfig{
		Sync:     syncSvc,
		CB:       cb,
		Interval: time.Duration(cfg.AutoSyncIntervalMins) * time.Minute,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("fieldsync daemon listening on 127.0.0.1:%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("daemon exited")
}
