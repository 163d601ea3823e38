// Package app holds the presentation state machines and the session that
// drive the map and settings screens over the data layer.
package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/guildradar/core/internal/events"
	"github.com/guildradar/core/internal/ports"
)

const bearerPrefix = "Bearer "

var _ ports.TokenProvider = (*Session)(nil)

// Session owns the authenticated credential. It formats the Bearer token for
// the data layer and runs the logout flow.
type Session struct {
	mu     sync.RWMutex
	raw    string
	repo   ports.UserRepository
	bus    *events.Bus
	logger *slog.Logger
}

// NewSession creates a session, optionally pre-seeded with a raw token.
func NewSession(rawToken string, repo ports.UserRepository, bus *events.Bus, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		raw:    rawToken,
		repo:   repo,
		bus:    bus,
		logger: logger.With(slog.String("component", "app.Session")),
	}
}

// Token returns the credential formatted as a Bearer token, "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.raw == "" {
		return ""
	}

	return bearerPrefix + s.raw
}

// RawToken returns the credential without the Bearer prefix.
func (s *Session) RawToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.raw
}

// SetToken installs a new credential, e.g. after a login flow completes.
func (s *Session) SetToken(raw string) {
	s.mu.Lock()
	s.raw = raw
	s.mu.Unlock()
}

// LoggedIn reports whether a credential is present.
func (s *Session) LoggedIn() bool {
	return s.RawToken() != ""
}

// Logout drops the credential, wipes the local cache and announces the logout.
// The cache wipe is best-effort; the token is gone either way.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	s.raw = ""
	s.mu.Unlock()

	if cleared := s.repo.ClearLocalData(ctx); cleared.IsErr() {
		s.logger.Warn("clearing local data on logout failed", slog.Any("error", cleared.Err()))
	}

	s.bus.Publish(events.UserLoggedOut{})
	s.bus.Publish(events.DataCleared{})
}
