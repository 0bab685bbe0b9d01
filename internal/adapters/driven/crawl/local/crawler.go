// Package local implements driven.Crawler in-process with colly. Pages are
// reduced to their main article with go-readability and rendered to
// markdown with goquery, so no crawl service or API key is needed.
package local

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driven"
	"github.com/alexpineda/llmdump/internal/logger"
)

var _ driven.Crawler = (*Crawler)(nil)

// Default configuration values.
const (
	DefaultUserAgent = "llmdump/1.0 (+https://github.com/alexpineda/llmdump)"
	DefaultMaxDepth  = 5
	DefaultTimeout   = 30 * time.Second
	DefaultLimit     = 50
)

// Config holds configuration for the local crawler.
type Config struct {
	// UserAgent is sent with every request.
	UserAgent string

	// MaxDepth bounds how many links away from the start page to go.
	MaxDepth int

	// Delay is the pause between requests to the host.
	Delay time.Duration

	// Timeout bounds each request (default: 30s).
	Timeout time.Duration

	// IgnoreRobots skips robots.txt checks.
	IgnoreRobots bool
}

// Crawler visits pages on the start URL's host below the start path.
type Crawler struct {
	cfg Config
}

// New creates a local crawler.
func New(cfg Config) *Crawler {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Crawler{cfg: cfg}
}

// Name identifies the provider.
func (c *Crawler) Name() string {
	return "local"
}

// Crawl fetches at most limit HTML pages starting at rawURL. Links are
// followed only on the same host and below the start path. Pages that
// fail to load or parse are skipped; the crawl fails only if the start
// page itself cannot be fetched.
func (c *Crawler) Crawl(ctx context.Context, rawURL string, limit int) (*domain.CrawlResult, error) {
	start, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || start.Host == "" || (start.Scheme != "http" && start.Scheme != "https") {
		return nil, fmt.Errorf("local crawl: %w: %q is not an http(s) url", domain.ErrInvalidInput, rawURL)
	}
	start.Fragment = ""
	if limit <= 0 {
		limit = DefaultLimit
	}

	log := logger.L().With(zap.String("provider", c.Name()), zap.String("url", start.String()))
	scope := newScope(start)

	collector := colly.NewCollector(
		colly.AllowedDomains(start.Hostname()),
		colly.MaxDepth(c.cfg.MaxDepth),
		colly.UserAgent(c.cfg.UserAgent),
	)
	collector.SetRequestTimeout(c.cfg.Timeout)
	collector.IgnoreRobotsTxt = c.cfg.IgnoreRobots
	if c.cfg.Delay > 0 {
		if err := collector.Limit(&colly.LimitRule{DomainGlob: "*", Delay: c.cfg.Delay}); err != nil {
			return nil, fmt.Errorf("local crawl: %w", err)
		}
	}

	var (
		mu        sync.Mutex
		requested int
		docs      []domain.CrawledDocument
		seen      = map[string]bool{}
		startErr  error
	)

	collector.OnRequest(func(r *colly.Request) {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil || requested >= limit {
			r.Abort()
			return
		}
		requested++
	})

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		next, ok := scope.follow(e.Request.AbsoluteURL(e.Attr("href")))
		if !ok {
			return
		}
		// Visit errors are expected: already visited, out of depth, or
		// aborted once the limit is reached.
		_ = e.Request.Visit(next)
	})

	collector.OnResponse(func(r *colly.Response) {
		if !isHTML(r.Headers.Get("Content-Type")) {
			return
		}
		pageURL := canonical(r.Request.URL)

		mu.Lock()
		dup := seen[pageURL]
		seen[pageURL] = true
		mu.Unlock()
		if dup {
			return
		}

		doc, err := extract(pageURL, r.Body)
		if err != nil {
			log.Debug("skipping page", zap.String("page", pageURL), zap.Error(err))
			return
		}

		mu.Lock()
		docs = append(docs, doc)
		mu.Unlock()
	})

	collector.OnError(func(r *colly.Response, err error) {
		page := canonical(r.Request.URL)
		log.Warn("fetch failed", zap.String("page", page), zap.Int("status", r.StatusCode), zap.Error(err))
		if page == start.String() {
			mu.Lock()
			startErr = err
			mu.Unlock()
		}
	})

	if err := collector.Visit(start.String()); err != nil {
		return nil, fmt.Errorf("local crawl: %w: %w", domain.ErrCrawlerUnavailable, err)
	}
	collector.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("local crawl: %w", err)
	}
	if startErr != nil {
		return nil, fmt.Errorf("local crawl: fetch %s: %w: %w", start, domain.ErrCrawlerUnavailable, startErr)
	}

	log.Debug("crawl finished", zap.Int("requests", requested), zap.Int("documents", len(docs)))
	return &domain.CrawlResult{
		ID:        fmt.Sprintf("local-%d", time.Now().Unix()),
		Status:    "completed",
		SourceURL: rawURL,
		CrawledAt: time.Now().UTC(),
		Documents: docs,
	}, nil
}

// scope decides which links are worth following.
type scope struct {
	host   string
	prefix string
}

func newScope(start *url.URL) scope {
	return scope{host: start.Host, prefix: strings.TrimSuffix(start.Path, "/")}
}

// follow returns the canonical form of raw if it stays on the start host
// and at or below the start path.
func (s scope) follow(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host != s.host || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	p := strings.TrimSuffix(u.Path, "/")
	if s.prefix != "" && p != s.prefix && !strings.HasPrefix(p, s.prefix+"/") {
		return "", false
	}
	return canonical(u), true
}

// canonical drops the fragment, which never changes the fetched page.
func canonical(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	return c.String()
}

func isHTML(contentType string) bool {
	return contentType == "" || strings.Contains(strings.ToLower(contentType), "html")
}
