package driven

import (
	"context"

	"github.com/alexpineda/llmdump/internal/core/domain"
)

// Crawler fetches the documents reachable from a starting URL.
// Retries and polling are the implementation's business.
type Crawler interface {
	// Crawl fetches at most limit pages starting at url.
	Crawl(ctx context.Context, url string, limit int) (*domain.CrawlResult, error)

	// Name identifies the provider (e.g. "firecrawl").
	Name() string
}
