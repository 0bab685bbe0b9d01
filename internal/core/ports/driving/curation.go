package driving

import (
	"context"

	"github.com/alexpineda/llmdump/internal/core/domain"
)

// CurationService drives the category lifecycle of a session.
// Every mutating operation persists the result before returning it.
type CurationService interface {
	// NewSession crawls url, categorises and names the result, and stores it
	// as the current session. Nothing is stored if any step fails.
	NewSession(ctx context.Context, url string, limit int) (*domain.Session, error)

	// Open loads the session stored under key.
	// Returns domain.ErrNoSession if the current session does not exist.
	Open(ctx context.Context, key string) (*domain.Session, error)

	// Categorize groups documents via the classification oracle.
	Categorize(ctx context.Context, docs []domain.CrawledDocument) (domain.CategorySet, error)

	// GenerateIdentifier names documents via the identifier oracle.
	GenerateIdentifier(ctx context.Context, docs []domain.CrawledDocument) (string, error)

	// Prune removes urls from the named category, drops emptied categories
	// and persists the result.
	Prune(ctx context.Context, session *domain.Session, category string, urls []string) (*domain.Session, error)

	// Split re-classifies the documents of one category and merges the
	// resulting categories back into the session.
	Split(ctx context.Context, session *domain.Session, category string) (*domain.Session, error)

	// Recategorize re-runs classification over every document in the crawl.
	Recategorize(ctx context.Context, session *domain.Session) (*domain.Session, error)

	// RenameCategory renames a category, merging on a name collision.
	RenameCategory(ctx context.Context, session *domain.Session, from, to string) (*domain.Session, error)

	// Summary returns token estimates and a suggested assembly mode.
	Summary(session *domain.Session) SessionSummary
}

// SessionSummary describes a session for display.
type SessionSummary struct {
	// Identifier names the session.
	Identifier string

	// SourceURL is the URL that was crawled.
	SourceURL string

	// DocumentCount is the number of crawled documents.
	DocumentCount int

	// Tokens holds per-category and total token estimates.
	Tokens domain.TokenSummary

	// SuggestedMode is the assembly mode that fits the token budget.
	SuggestedMode domain.AssemblyMode
}
