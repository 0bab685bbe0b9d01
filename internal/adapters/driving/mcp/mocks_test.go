package mcp

import (
	"context"
	"time"

	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driving"
)

func testSession() *domain.Session {
	return &domain.Session{
		Key:        domain.CurrentSessionKey,
		Identifier: "router-docs",
		Crawl: domain.CrawlResult{
			ID:        "job-1",
			Status:    "completed",
			SourceURL: "https://ex.com/docs",
			CrawledAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			Documents: []domain.CrawledDocument{
				{URL: "https://ex.com/docs/a", Title: "A", Description: "first", Content: "alpha body"},
				{URL: "https://ex.com/docs/b", Title: "B", Content: "beta body"},
			},
		},
		Categories: domain.CategorySet{
			{Name: "Guides", RefURLs: []string{"https://ex.com/docs/a", "https://ex.com/docs/b"}},
			{Name: "Empty"},
		},
	}
}

// mockCurationService is a mock implementation of driving.CurationService.
type mockCurationService struct {
	session *domain.Session
	err     error

	openedKey   string
	prunedURLs  []string
	splitTarget string
}

func (m *mockCurationService) NewSession(_ context.Context, _ string, _ int) (*domain.Session, error) {
	return m.session, m.err
}

func (m *mockCurationService) Open(_ context.Context, key string) (*domain.Session, error) {
	m.openedKey = key
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockCurationService) Categorize(_ context.Context, _ []domain.CrawledDocument) (domain.CategorySet, error) {
	return m.session.Categories, m.err
}

func (m *mockCurationService) GenerateIdentifier(_ context.Context, _ []domain.CrawledDocument) (string, error) {
	return m.session.Identifier, m.err
}

func (m *mockCurationService) Prune(
	_ context.Context,
	session *domain.Session,
	category string,
	urls []string,
) (*domain.Session, error) {
	m.prunedURLs = urls
	next := *session
	next.Categories = domain.DropEmptyCategories(domain.PruneURLsFromCategory(session.Categories, category, urls))
	return &next, nil
}

func (m *mockCurationService) Split(_ context.Context, session *domain.Session, category string) (*domain.Session, error) {
	m.splitTarget = category
	next := *session
	next.Categories = domain.ReconcileSplit(session.Categories, domain.FindCategory(session.Categories, category), domain.CategorySet{
		{Name: "Part One", RefURLs: []string{"https://ex.com/docs/a"}},
		{Name: "Part Two", RefURLs: []string{"https://ex.com/docs/b"}},
	})
	return &next, nil
}

func (m *mockCurationService) Recategorize(_ context.Context, session *domain.Session) (*domain.Session, error) {
	return session, m.err
}

func (m *mockCurationService) RenameCategory(
	_ context.Context,
	session *domain.Session,
	from, to string,
) (*domain.Session, error) {
	next := *session
	next.Categories = domain.RenameCategory(session.Categories, from, to)
	return &next, nil
}

func (m *mockCurationService) Summary(session *domain.Session) driving.SessionSummary {
	tokens := domain.Summarize(session.Categories, session.Crawl)
	return driving.SessionSummary{
		Identifier:    session.Identifier,
		SourceURL:     session.Crawl.SourceURL,
		DocumentCount: len(session.Crawl.Documents),
		Tokens:        tokens,
		SuggestedMode: domain.SuggestAssemblyMode(tokens.Total, 0),
	}
}

// mockExportService is a mock implementation of driving.ExportService.
type mockExportService struct {
	outputDir string
	opts      driving.ExportOptions
	err       error
}

func (m *mockExportService) WriteDocumentsToFile(
	_ context.Context,
	session *domain.Session,
	outputDir string,
	opts driving.ExportOptions,
) ([]string, error) {
	m.outputDir = outputDir
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	return []string{outputDir + "/" + session.Identifier + ".md"}, nil
}

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	sessions []domain.SessionInfo
	err      error
}

func (m *mockSessionService) List(_ context.Context) ([]domain.SessionInfo, error) {
	return m.sessions, m.err
}

func (m *mockSessionService) Archive(_ context.Context) (string, error) {
	return "archive-1", m.err
}

func (m *mockSessionService) Restore(_ context.Context, _ string) error {
	return m.err
}

func (m *mockSessionService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings domain.AppSettings
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(_, _ string) error { return nil }

func (m *mockSettingsService) SetLLMProvider(_ domain.AIProvider, _, _ string) error { return nil }

func (m *mockSettingsService) Validate() error { return nil }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }
