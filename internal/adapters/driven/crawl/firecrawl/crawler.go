// Package firecrawl implements driven.Crawler against a Firecrawl-compatible
// HTTP API: start a crawl job, poll it until it finishes, then follow the
// result pages.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driven"
	"github.com/alexpineda/llmdump/internal/logger"
)

var _ driven.Crawler = (*Crawler)(nil)

// Default configuration values.
const (
	DefaultBaseURL      = "https://api.firecrawl.dev"
	DefaultPollInterval = 2 * time.Second
	DefaultMaxWait      = 15 * time.Minute
	DefaultTimeout      = 60 * time.Second

	// maxPollErrors is how many consecutive failed status checks are
	// tolerated before the crawl is abandoned.
	maxPollErrors = 3
)

// Job statuses reported by the API.
const (
	statusScraping  = "scraping"
	statusCompleted = "completed"
	statusFailed    = "failed"
	statusCancelled = "cancelled"
)

// Config holds configuration for the Firecrawl crawler.
type Config struct {
	// APIKey is the Firecrawl API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.firecrawl.dev).
	BaseURL string

	// PollInterval is the delay between status checks (default: 2s).
	PollInterval time.Duration

	// MaxWait bounds the whole crawl including polling (default: 15m).
	MaxWait time.Duration

	// Timeout bounds each HTTP request (default: 60s).
	Timeout time.Duration
}

// Crawler runs crawl jobs on a Firecrawl server.
type Crawler struct {
	client       *http.Client
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	maxWait      time.Duration
}

type crawlRequest struct {
	URL           string        `json:"url"`
	Limit         int           `json:"limit,omitempty"`
	ScrapeOptions scrapeOptions `json:"scrapeOptions"`
}

type scrapeOptions struct {
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

type crawlStartResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Error   string `json:"error,omitempty"`
}

type crawlStatusResponse struct {
	Status    string     `json:"status"`
	Total     int        `json:"total"`
	Completed int        `json:"completed"`
	Next      string     `json:"next,omitempty"`
	Data      []pageData `json:"data"`
	Error     string     `json:"error,omitempty"`
}

type pageData struct {
	Markdown string       `json:"markdown"`
	Metadata pageMetadata `json:"metadata"`
}

type pageMetadata struct {
	URL         string `json:"url"`
	SourceURL   string `json:"sourceURL"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StatusCode  int    `json:"statusCode"`
}

// statusError is a non-2xx reply. Server errors are worth retrying
// while polling; client errors are not.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("firecrawl: API returned status %d: %s", e.code, e.body)
}

func (e *statusError) retryable() bool {
	return e.code >= 500 || e.code == http.StatusTooManyRequests
}

// New creates a Firecrawl crawler.
func New(cfg Config) (*Crawler, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("firecrawl: API key is required: %w", domain.ErrCrawlerUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Crawler{
		client:       &http.Client{Timeout: cfg.Timeout},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		pollInterval: cfg.PollInterval,
		maxWait:      cfg.MaxWait,
	}, nil
}

// Name identifies the provider.
func (c *Crawler) Name() string {
	return "firecrawl"
}

// Crawl starts a job for url and blocks until it completes, fails, or
// MaxWait elapses. Pages without a URL are dropped and duplicate URLs
// keep their first occurrence.
func (c *Crawler) Crawl(ctx context.Context, url string, limit int) (*domain.CrawlResult, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("firecrawl: %w: empty url", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, c.maxWait)
	defer cancel()

	log := logger.L().With(zap.String("provider", c.Name()), zap.String("url", url))

	id, err := c.start(ctx, url, limit)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("job", id))
	log.Debug("crawl started", zap.Int("limit", limit))

	status, err := c.wait(ctx, id, log)
	if err != nil {
		return nil, err
	}

	pages, err := c.collect(ctx, status)
	if err != nil {
		return nil, err
	}

	result := &domain.CrawlResult{
		ID:        id,
		Status:    status.Status,
		SourceURL: url,
		CrawledAt: time.Now().UTC(),
		Documents: toDocuments(pages),
	}
	log.Debug("crawl finished", zap.Int("pages", len(pages)), zap.Int("documents", len(result.Documents)))
	return result, nil
}

func (c *Crawler) start(ctx context.Context, url string, limit int) (string, error) {
	reqBody := crawlRequest{
		URL:   url,
		Limit: limit,
		ScrapeOptions: scrapeOptions{
			Formats:         []string{"markdown"},
			OnlyMainContent: true,
		},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("firecrawl: marshal request: %w", err)
	}

	var resp crawlStartResponse
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/v1/crawl", bytes.NewReader(jsonBody), &resp); err != nil {
		return "", fmt.Errorf("firecrawl: start crawl: %w", err)
	}
	if !resp.Success || resp.ID == "" {
		return "", fmt.Errorf("firecrawl: start crawl rejected: %s: %w", resp.Error, domain.ErrCrawlerUnavailable)
	}
	return resp.ID, nil
}

// wait polls the job until it leaves the scraping state. Status checks are
// paced by a limiter so a slow server is never hammered.
func (c *Crawler) wait(ctx context.Context, id string, log *zap.Logger) (*crawlStatusResponse, error) {
	limiter := rate.NewLimiter(rate.Every(c.pollInterval), 1)
	statusURL := c.baseURL + "/v1/crawl/" + id

	failures := 0
	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("firecrawl: waiting for job %s: %w", id, err)
		}

		var status crawlStatusResponse
		err := c.do(ctx, http.MethodGet, statusURL, http.NoBody, &status)
		if err != nil {
			var se *statusError
			if ctx.Err() == nil && failures < maxPollErrors && (!errors.As(err, &se) || se.retryable()) {
				failures++
				log.Warn("status check failed", zap.Int("attempt", failures), zap.Error(err))
				continue
			}
			return nil, fmt.Errorf("firecrawl: check job %s: %w", id, err)
		}
		failures = 0

		switch status.Status {
		case statusCompleted:
			return &status, nil
		case statusFailed, statusCancelled:
			return nil, fmt.Errorf("firecrawl: job %s %s: %s: %w", id, status.Status, status.Error, domain.ErrCrawlerUnavailable)
		default:
			log.Debug("crawl in progress",
				zap.String("status", status.Status),
				zap.Int("completed", status.Completed),
				zap.Int("total", status.Total))
		}
	}
}

// collect gathers the data of the completed status and every page linked
// through next.
func (c *Crawler) collect(ctx context.Context, first *crawlStatusResponse) ([]pageData, error) {
	pages := append([]pageData(nil), first.Data...)
	next := first.Next
	seen := map[string]bool{}
	for next != "" && !seen[next] {
		seen[next] = true

		var page crawlStatusResponse
		if err := c.do(ctx, http.MethodGet, next, http.NoBody, &page); err != nil {
			return nil, fmt.Errorf("firecrawl: fetch results page: %w", err)
		}
		pages = append(pages, page.Data...)
		next = page.Next
	}
	return pages, nil
}

func (c *Crawler) do(ctx context.Context, method, url string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w: %w", domain.ErrCrawlerUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(data))}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusPaymentRequired {
			return fmt.Errorf("%w: %w", se, domain.ErrCrawlerUnavailable)
		}
		return se
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func toDocuments(pages []pageData) []domain.CrawledDocument {
	docs := make([]domain.CrawledDocument, 0, len(pages))
	seen := make(map[string]struct{}, len(pages))
	for _, p := range pages {
		url := p.Metadata.URL
		if url == "" {
			url = p.Metadata.SourceURL
		}
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		docs = append(docs, domain.CrawledDocument{
			URL:         url,
			Title:       p.Metadata.Title,
			Description: p.Metadata.Description,
			Content:     p.Markdown,
		})
	}
	return docs
}
