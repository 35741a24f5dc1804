package infra

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session holds the bearer token shared by the sync service and the member
// data service. It is the single source of truth: whichever component
// refreshes the token, both observe the new value.
type Session struct {
	mu     sync.Mutex
	token  string
	expiry time.Time

	fallbackTTL time.Duration
}

// NewSession creates an empty session. fallbackTTL bounds token lifetime
// when the token carries no usable exp claim (~23h in practice).
func NewSession(fallbackTTL time.Duration) *Session {
	return &Session{fallbackTTL: fallbackTTL}
}

// SetToken stores a freshly-issued token. Expiry comes from the token's own
// exp claim when it parses as a JWT; otherwise issuance time + fallbackTTL.
// The token is NOT signature-verified — the server issued it, we only need
// its lifetime.
func (s *Session) SetToken(token string) {
	expiry := time.Now().Add(s.fallbackTTL)
	if claims, err := parseExpiry(token); err == nil && !claims.IsZero() {
		expiry = claims
	}

	s.mu.Lock()
	s.token = token
	s.expiry = expiry
	s.mu.Unlock()
}

// Token returns the cached token and whether it is still valid.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" || time.Now().After(s.expiry) {
		return "", false
	}
	return s.token, true
}

// Clear drops the cached token, forcing re-authentication.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.expiry = time.Time{}
	s.mu.Unlock()
}

func parseExpiry(token string) (time.Time, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, jwt.ErrTokenInvalidClaims
	}
	return exp.Time, nil
}
