package main

// syncnow runs a single sync pass against the remote API and exits.
// Meant for cron jobs and for forcing a push from the command line while
// the daemon is stopped.

import (
	"context"
	"os"
	"time"

	"fieldsync/internal/config"
	"fieldsync/internal/infra"
	"fieldsync/internal/repository"
	"fieldsync/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local store")
	}

	session := infra.NewSession(time.Duration(cfg.TokenTTLHours) * time.Hour)
	api := infra.NewAPIClient(
		cfg.APIBaseURL,
		time.Duration(cfg.HTTPTimeoutSeconds)*time.Second,
		time.Duration(cfg.PingTimeoutSeconds)*time.Second,
		session,
	)

	credsRepo := repository.NewCredentialsRepository(db)
	cashRepo := repository.NewCashCollectionRepository(db)
	loanAppRepo := repository.NewLoanApplicationRepository(db)
	disbursementRepo := repository.NewLoanDisbursementRepository(db)
	advanceRepo := repository.NewAdvanceLoanRepository(db)
	groupRepo := repository.NewGroupCollectionRepository(db)
	newMemberRepo := repository.NewNewMemberRepository(db)
	balanceRepo := repository.NewMemberBalanceRepository(db)
	approvedRepo := repository.NewApprovedLoanRepository(db)

	authSvc := service.NewAuthService(credsRepo, api, session)
	api.SetReauth(authSvc.Authenticate)
	qualSvc := service.NewQualificationService(balanceRepo, cashRepo, loanAppRepo, advanceRepo)
	memberDataSvc := service.NewMemberDataService(api, balanceRepo, approvedRepo, qualSvc)
	syncSvc := service.NewSyncService(
		api, authSvc, memberDataSvc,
		cashRepo, loanAppRepo, disbursementRepo, advanceRepo, groupRepo, newMemberRepo, approvedRepo,
		cfg.OfficerName, cfg.SyncBatchSize,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := syncSvc.SyncAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sync pass aborted")
		os.Exit(1)
	}

	log.Info().
		Int("synced", result.TotalSynced()).
		Int("failed", result.TotalFailed()).
		Bool("success", result.Success).
		Strs("errors", result.Errors).
		Msg("sync pass finished")

	if !result.Success {
		os.Exit(1)
	}
}
