package services

import (
	"context"
	"strings"

	"github.com/alexpineda/llmdump/internal/core/domain"
)

type fakeCrawler struct {
	result *domain.CrawlResult
	err    error
	calls  int
}

func (f *fakeCrawler) Crawl(_ context.Context, url string, _ int) (*domain.CrawlResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := *f.result
	out.Documents = append([]domain.CrawledDocument(nil), f.result.Documents...)
	return &out, nil
}

func (f *fakeCrawler) Name() string { return "fake" }

type fakeClassifier struct {
	classify func(docs []domain.DocumentSummary) (domain.CategorySet, error)
	seen     [][]domain.DocumentSummary
}

func (f *fakeClassifier) Classify(_ context.Context, docs []domain.DocumentSummary) (domain.CategorySet, error) {
	f.seen = append(f.seen, docs)
	return f.classify(docs)
}

type fakeIdentifier struct {
	id  string
	err error
}

func (f *fakeIdentifier) GenerateIdentifier(_ context.Context, _ []domain.DocumentSummary) (string, error) {
	return f.id, f.err
}

type fakeCleaner struct {
	err   error
	calls []string
}

func (f *fakeCleaner) Clean(_ context.Context, markdown string) (string, error) {
	f.calls = append(f.calls, markdown)
	if f.err != nil {
		return "", f.err
	}
	return strings.ToUpper(markdown), nil
}

func testCrawl() *domain.CrawlResult {
	return &domain.CrawlResult{
		ID:     "job-1",
		Status: "completed",
		Documents: []domain.CrawledDocument{
			{URL: "https://ex.com/intro", Title: "Intro", Description: "start here", Content: "intro body"},
			{URL: "https://ex.com/install", Title: "Install", Description: "setup", Content: "install body"},
			{URL: "https://ex.com/api/a", Title: "API A", Description: "a", Content: "api a body"},
			{URL: "https://ex.com/api/b", Title: "API B", Description: "b", Content: "api b body"},
		},
	}
}

// groupByPrefix classifies /api/ pages as "API" and everything else as "Guides",
// and always adds a dangling URL so callers must sanitise.
func groupByPrefix(docs []domain.DocumentSummary) (domain.CategorySet, error) {
	guides := domain.Category{Name: "Guides"}
	api := domain.Category{Name: "API"}
	for _, d := range docs {
		if strings.Contains(d.URL, "/api/") {
			api.RefURLs = append(api.RefURLs, d.URL)
		} else {
			guides.RefURLs = append(guides.RefURLs, d.URL)
		}
	}
	guides.RefURLs = append(guides.RefURLs, "https://ex.com/hallucinated")
	return domain.CategorySet{guides, api}, nil
}
