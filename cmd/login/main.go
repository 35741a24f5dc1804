package main

// login stores the officer's credentials on the device and, when the remote
// API is reachable, verifies them against the login endpoint right away.

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"fieldsync/internal/config"
	"fieldsync/internal/infra"
	"fieldsync/internal/repository"
	"fieldsync/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	username := flag.String("u", "", "username (prompted when omitted)")
	offline := flag.Bool("offline", false, "store credentials without contacting the server")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local store")
	}

	user := *username
	reader := bufio.NewReader(os.Stdin)
	if user == "" {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read username")
		}
		user = strings.TrimSpace(line)
	}
	if user == "" {
		log.Fatal().Msg("username is required")
	}

	fmt.Print("Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read password")
	}
	password := string(pw)
	if password == "" {
		log.Fatal().Msg("password is required")
	}

	session := infra.NewSession(time.Duration(cfg.TokenTTLHours) * time.Hour)
	api := infra.NewAPIClient(
		cfg.APIBaseURL,
		time.Duration(cfg.HTTPTimeoutSeconds)*time.Second,
		time.Duration(cfg.PingTimeoutSeconds)*time.Second,
		session,
	)
	credsRepo := repository.NewCredentialsRepository(db)
	authSvc := service.NewAuthService(credsRepo, api, session)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := authSvc.SaveCredentials(ctx, user, password); err != nil {
		log.Fatal().Err(err).Msg("failed to store credentials")
	}
	log.Info().Str("username", user).Msg("credentials stored")

	if *offline {
		return
	}

	if err := authSvc.Authenticate(ctx); err != nil {
		log.Warn().Err(err).Msg("could not verify against the server; credentials kept for offline use")
		return
	}
	log.Info().Msg("verified against the server")
}
