package driving

import (
	"context"

	"github.com/alexpineda/llmdump/internal/core/domain"
)

// SessionService manages stored sessions.
type SessionService interface {
	// List returns archived sessions, newest first.
	List(ctx context.Context) ([]domain.SessionInfo, error)

	// Archive copies the current session to a new archive key.
	Archive(ctx context.Context) (string, error)

	// Restore makes an archived session the current one.
	// The current session is archived first if it exists.
	Restore(ctx context.Context, key string) error

	// Delete removes a stored session.
	Delete(ctx context.Context, key string) error
}
