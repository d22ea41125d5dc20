// Package session holds the authentication state passed to the HTTP
// client. Tokens live in a persistent Store and change only through the
// explicit Login, Refresh and Logout transitions.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/storefront-client/pkg/models"
)

// ErrNoTokens is returned by a Store that holds no tokens.
var ErrNoTokens = errors.New("no stored tokens")

// Store persists the token pair between runs.
type Store interface {
	Load(ctx context.Context) (models.TokenPair, error)
	Save(ctx context.Context, tokens models.TokenPair) error
	Clear(ctx context.Context) error
}

// Session is the explicit authentication context. It is safe for
// concurrent use.
type Session struct {
	mu     sync.RWMutex
	store  Store
	tokens models.TokenPair
	logger zerolog.Logger
}

// New creates a session backed by store and restores any persisted
// tokens. A store without tokens yields an anonymous session.
func New(ctx context.Context, store Store, logger zerolog.Logger) (*Session, error) {
	if store == nil {
		store = NewMemoryStore()
	}
	s := &Session{
		store:  store,
		logger: logger.With().Str("component", "session").Logger(),
	}

	tokens, err := store.Load(ctx)
	switch {
	case errors.Is(err, ErrNoTokens):
	case err != nil:
		return nil, fmt.Errorf("load tokens: %w", err)
	default:
		s.tokens = tokens
		s.logger.Debug().Msg("Restored session tokens")
	}
	return s, nil
}

// Anonymous returns a session with an in-memory store and no tokens.
func Anonymous() *Session {
	return &Session{store: NewMemoryStore(), logger: zerolog.Nop()}
}

// AccessToken returns the bearer token, or "" when anonymous.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.Access
}

// RefreshToken returns the refresh token, or "".
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.Refresh
}

// Authenticated reports whether an access token is present.
func (s *Session) Authenticated() bool {
	return s.AccessToken() != ""
}

// Login stores a freshly issued token pair.
func (s *Session) Login(ctx context.Context, tokens models.TokenPair) error {
	if tokens.Access == "" {
		return errors.New("login: access token is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(ctx, tokens); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	s.tokens = tokens
	s.logger.Info().Msg("Session logged in")
	return nil
}

// Refresh replaces the access token, keeping the refresh token unless a
// new one is supplied.
func (s *Session) Refresh(ctx context.Context, tokens models.TokenPair) error {
	if tokens.Access == "" {
		return errors.New("refresh: access token is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.tokens
	next.Access = tokens.Access
	if tokens.Refresh != "" {
		next.Refresh = tokens.Refresh
	}
	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	s.tokens = next
	s.logger.Info().Msg("Access token refreshed")
	return nil
}

// Logout drops the tokens from memory and from the store. The in-memory
// tokens are cleared even if the store fails, so no further request is
// authorized.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = models.TokenPair{}
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to clear token store")
		return fmt.Errorf("clear tokens: %w", err)
	}
	s.logger.Info().Msg("Session logged out")
	return nil
}
