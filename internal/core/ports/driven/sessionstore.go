package driven

import (
	"context"

	"github.com/alexpineda/llmdump/internal/core/domain"
)

// SessionStore persists the artifacts of a session under a key.
// The working session uses domain.CurrentSessionKey.
// Load methods return domain.ErrNotFound when the artifact is absent.
type SessionStore interface {
	// SaveCrawl stores the crawl result.
	SaveCrawl(ctx context.Context, key string, crawl domain.CrawlResult) error

	// LoadCrawl retrieves the crawl result.
	LoadCrawl(ctx context.Context, key string) (*domain.CrawlResult, error)

	// SaveCategories stores the category set.
	SaveCategories(ctx context.Context, key string, set domain.CategorySet) error

	// LoadCategories retrieves the category set.
	LoadCategories(ctx context.Context, key string) (domain.CategorySet, error)

	// SaveIdentifier stores the session identifier.
	SaveIdentifier(ctx context.Context, key string, identifier string) error

	// LoadIdentifier retrieves the session identifier.
	LoadIdentifier(ctx context.Context, key string) (string, error)

	// Exists reports whether any artifact is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	// Archive copies the session under key to a new archive key and returns it.
	Archive(ctx context.Context, key string) (string, error)

	// Restore replaces the current session with a copy of an archived one.
	Restore(ctx context.Context, archiveKey string) error

	// List returns archived sessions, newest first.
	List(ctx context.Context) ([]domain.SessionInfo, error)

	// Delete removes every artifact stored under key.
	Delete(ctx context.Context, key string) error

	// Close releases resources.
	Close() error
}
