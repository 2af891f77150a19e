// Package session holds the bearer token that authenticates API calls.
// There is no server-side session: the token is the credential, and it is
// assumed valid until the server rejects it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrEmptyToken = errors.New("api key must not be empty")

// Store persists the token between runs.
type Store interface {
	APIKey(ctx context.Context) (string, error)
	SetAPIKey(ctx context.Context, key string) error
	ClearAPIKey(ctx context.Context) error
}

type Session struct {
	store Store

	mu    sync.RWMutex
	token string
}

// New restores any token persisted by a previous run.
func New(ctx context.Context, store Store) (*Session, error) {
	token, err := store.APIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading api key: %w", err)
	}
	return &Session{store: store, token: token}, nil
}

// SetToken persists token and makes it the active credential.
func (s *Session) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	if err := s.store.SetAPIKey(ctx, token); err != nil {
		return fmt.Errorf("saving api key: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Clear logs out. The in-memory token is dropped even if removing the
// persisted copy fails.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	if err := s.store.ClearAPIKey(ctx); err != nil {
		return fmt.Errorf("removing api key: %w", err)
	}
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}
