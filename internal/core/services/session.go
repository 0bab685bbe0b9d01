package services

import (
	"context"
	"fmt"

	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driven"
	"github.com/alexpineda/llmdump/internal/core/ports/driving"
	"github.com/alexpineda/llmdump/internal/logger"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// SessionService manages the current and archived sessions.
type SessionService struct {
	store driven.SessionStore
}

// NewSessionService creates a new session service.
func NewSessionService(store driven.SessionStore) *SessionService {
	return &SessionService{store: store}
}

// List returns archived sessions, newest first.
func (s *SessionService) List(ctx context.Context) ([]domain.SessionInfo, error) {
	return s.store.List(ctx)
}

// Archive copies the current session to a new archive key.
func (s *SessionService) Archive(ctx context.Context) (string, error) {
	exists, err := s.store.Exists(ctx, domain.CurrentSessionKey)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", domain.ErrNoSession
	}

	key, err := s.store.Archive(ctx, domain.CurrentSessionKey)
	if err != nil {
		return "", fmt.Errorf("archive current session: %w", err)
	}
	logger.Info("Archived current session as %s", key)
	return key, nil
}

// Restore makes an archived session the current one. The current
// session, if any, is archived first so it is not lost.
func (s *SessionService) Restore(ctx context.Context, key string) error {
	if key == "" || key == domain.CurrentSessionKey {
		return fmt.Errorf("archive key %q: %w", key, domain.ErrInvalidInput)
	}

	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("session %s: %w", key, domain.ErrNotFound)
	}

	current, err := s.store.Exists(ctx, domain.CurrentSessionKey)
	if err != nil {
		return err
	}
	if current {
		if _, err := s.Archive(ctx); err != nil {
			return err
		}
	}

	if err := s.store.Restore(ctx, key); err != nil {
		return fmt.Errorf("restore %s: %w", key, err)
	}
	logger.Info("Restored session %s", key)
	return nil
}

// Delete removes a stored session.
func (s *SessionService) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("session key is required: %w", domain.ErrInvalidInput)
	}
	return s.store.Delete(ctx, key)
}
