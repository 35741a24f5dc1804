package service

import (
	"context"
	"errors"
	"time"

	"fieldsync/internal/dto"
	"fieldsync/internal/infra"
	"fieldsync/internal/model"
	"fieldsync/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrNoCredentials means no officer login has been stored on the device yet.
var ErrNoCredentials = errors.New("no stored credentials")

type AuthService interface {
	// Authenticate returns immediately when a non-expired token is cached;
	// otherwise it replays the stored credentials against the login
	// endpoint and refreshes the shared session.
	Authenticate(ctx context.Context) error
	SaveCredentials(ctx context.Context, username, password string) error
	// VerifyOffline checks a login against the cached bcrypt hash without
	// touching the network, so the officer can unlock the app in the field.
	VerifyOffline(ctx context.Context, username, password string) error
	Status(ctx context.Context) (*dto.AuthStatusResponse, error)
}

type authService struct {
	creds   repository.CredentialsRepository
	api     *infra.APIClient
	session *infra.Session
}

func NewAuthService(creds repository.CredentialsRepository, api *infra.APIClient, session *infra.Session) AuthService {
	return &authService{creds: creds, api: api, session: session}
}

func (s *authService) Authenticate(ctx context.Context) error {
	if _, ok := s.session.Token(); ok {
		return nil
	}

	c, err := s.creds.Get(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoCredentials
	}
	if err != nil {
		return err
	}

	resp, err := s.api.Login(ctx, c.Username, c.Password)
	if err != nil {
		return err
	}

	s.session.SetToken(resp.Token)
	c.Token = &resp.Token
	c.LastLogin = time.Now()
	if err := s.creds.Update(ctx, c); err != nil {
		// The session is already usable; a stale persisted token only
		// costs one extra login after a restart.
		log.Warn().Err(err).Msg("auth: failed to persist refreshed token")
	}
	log.Info().Str("username", c.Username).Msg("auth: session established")
	return nil
}

func (s *authService) SaveCredentials(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	c := &model.Credentials{
		Username:     username,
		Password:     password,
		PasswordHash: string(hash),
		LastLogin:    time.Now(),
	}
	if err := s.creds.Save(ctx, c); err != nil {
		return err
	}
	s.session.Clear()
	return nil
}

func (s *authService) VerifyOffline(ctx context.Context, username, password string) error {
	c, err := s.creds.Get(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoCredentials
	}
	if err != nil {
		return err
	}
	if c.Username != username {
		return errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)); err != nil {
		return errors.New("invalid credentials")
	}
	return nil
}

func (s *authService) Status(ctx context.Context) (*dto.AuthStatusResponse, error) {
	resp := &dto.AuthStatusResponse{}
	c, err := s.creds.Get(ctx)
	if err == nil {
		resp.HasCredentials = true
		resp.Username = c.Username
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	_, resp.SessionActive = s.session.Token()
	return resp, nil
}
