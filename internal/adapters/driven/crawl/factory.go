// Package crawl selects the crawler implementation for the configured
// provider.
package crawl

import (
	"fmt"
	"time"

	"github.com/alexpineda/llmdump/internal/adapters/driven/crawl/firecrawl"
	"github.com/alexpineda/llmdump/internal/adapters/driven/crawl/local"
	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driven"
)

// New creates the crawler described by settings.
func New(settings domain.CrawlSettings) (driven.Crawler, error) {
	switch settings.Provider {
	case domain.CrawlProviderFirecrawl:
		if settings.APIKey == "" {
			return nil, fmt.Errorf("%w: firecrawl needs crawl.api_key (or LLMDUMP_CRAWL_API_KEY); use crawl.provider=local to crawl without a service", domain.ErrCrawlerUnavailable)
		}
		return firecrawl.New(firecrawl.Config{
			APIKey:       settings.APIKey,
			BaseURL:      settings.BaseURL,
			PollInterval: time.Duration(settings.PollIntervalSeconds) * time.Second,
		})
	case domain.CrawlProviderLocal:
		return local.New(local.Config{}), nil
	default:
		return nil, fmt.Errorf("%w: unsupported crawl provider %q", domain.ErrInvalidInput, settings.Provider)
	}
}
