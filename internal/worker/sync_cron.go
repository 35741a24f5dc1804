package worker

// sync_cron.go
// Background goroutine that periodically runs a full sync pass when local
// records are waiting. Uses the Circuit Breaker to avoid hammering an
// unreachable sync API while the officer is out of coverage.

import (
	"context"
	"errors"
	"time"

	"fieldsync/internal/dto"
	"fieldsync/internal/infra"
	"fieldsync/internal/service"

	"github.com/rs/zerolog/log"
)

// SyncCronConfig holds all dependencies for the auto-sync goroutine.
type SyncCronConfig struct {
	Sync     service.SyncService
	CB       *infra.CircuitBreaker
	Interval time.Duration
}

// StartSyncCron launches a background goroutine that ticks on the configured
// interval and attempts a sync pass through the CB.
// It respects the context for graceful shutdown.
func StartSyncCron(ctx context.Context, cfg SyncCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("sync_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("sync_cron: shutting down")
				return
			case <-ticker.C:
				runAutoSync(ctx, cfg)
			}
		}
	}()
}

func runAutoSync(ctx context.Context, cfg SyncCronConfig) {
	// If CB is open, skip entirely — don't hammer an unreachable API
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("sync_cron: circuit breaker is open, skipping tick")
		return
	}

	counts, err := cfg.Sync.PendingCounts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sync_cron: failed to count pending records")
		return
	}
	if counts.Total == 0 {
		return
	}

	log.Info().Int64("pending", counts.Total).Msg("sync_cron: pending records found, syncing")

	var result *dto.SyncResult
	cbErr := cfg.CB.Execute(func() error {
		r, err := cfg.Sync.SyncAll(ctx)
		if errors.Is(err, service.ErrSyncInProgress) {
			// A manual sync holds the lock. Not a connectivity failure,
			// so it must not count toward tripping the breaker.
			return nil
		}
		result = r
		return err
	})

	switch {
	case cbErr == nil && result == nil:
		log.Debug().Msg("sync_cron: sync already in progress, skipping tick")
	case cbErr == nil:
		log.Info().
			Int("synced", result.TotalSynced()).
			Int("failed", result.TotalFailed()).
			Bool("success", result.Success).
			Msg("sync_cron: pass finished")
	case errors.Is(cbErr, service.ErrOffline), errors.Is(cbErr, service.ErrAuthFailed):
		log.Warn().Err(cbErr).Msg("sync_cron: sync precondition failed")
	case errors.Is(cbErr, infra.ErrCircuitOpen):
		log.Debug().Msg("sync_cron: circuit breaker opened mid-tick")
	default:
		log.Error().Err(cbErr).Msg("sync_cron: sync pass failed")
	}
}
