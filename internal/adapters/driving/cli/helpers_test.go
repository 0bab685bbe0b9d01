package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/alexpineda/llmdump/internal/adapters/driven/storage/memory"
	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/services"
)

type stubCrawler struct{}

func (stubCrawler) Crawl(_ context.Context, url string, _ int) (*domain.CrawlResult, error) {
	return &domain.CrawlResult{
		ID:        "job-1",
		Status:    "completed",
		SourceURL: url,
		Documents: []domain.CrawledDocument{
			{URL: "https://ex.com/docs/intro", Title: "Intro", Content: "Welcome to the docs."},
			{URL: "https://ex.com/docs/install", Title: "Install", Content: "Run the installer."},
			{URL: "https://ex.com/docs/api/users", Title: "Users API", Content: "GET /users lists users."},
			{URL: "https://ex.com/docs/changelog", Title: "Changelog", Content: "v1.0 released."},
		},
	}, nil
}

func (stubCrawler) Name() string { return "stub" }

// stubClassifier puts /api/ pages under "API", the changelog under
// "Changelog" and everything else under "Guides". When asked to split a
// set without API pages it returns one category per document.
type stubClassifier struct{}

func (stubClassifier) Classify(_ context.Context, docs []domain.DocumentSummary) (domain.CategorySet, error) {
	if len(docs) <= 2 {
		out := make(domain.CategorySet, 0, len(docs))
		for _, d := range docs {
			out = append(out, domain.Category{Name: d.Title, RefURLs: []string{d.URL}})
		}
		return out, nil
	}
	guides := domain.Category{Name: "Guides"}
	api := domain.Category{Name: "API"}
	changelog := domain.Category{Name: "Changelog"}
	for _, d := range docs {
		switch {
		case strings.Contains(d.URL, "/api/"):
			api.RefURLs = append(api.RefURLs, d.URL)
		case strings.HasSuffix(d.URL, "/changelog"):
			changelog.RefURLs = append(changelog.RefURLs, d.URL)
		default:
			guides.RefURLs = append(guides.RefURLs, d.URL)
		}
	}
	return domain.CategorySet{guides, api, changelog}, nil
}

type stubIdentifier struct{}

func (stubIdentifier) GenerateIdentifier(_ context.Context, _ []domain.DocumentSummary) (string, error) {
	return "Example Docs", nil
}

// testEnv wires real services over in-memory adapters.
type testEnv struct {
	fs    afero.Fs
	store *memory.SessionStore
}

func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewSessionStore()
	fs := afero.NewMemMapFs()
	SetServices(Services{
		Curation: services.NewCurationService(stubCrawler{}, stubClassifier{}, stubIdentifier{}, store, 100000),
		Export:   services.NewExportService(fs, nil),
		Session:  services.NewSessionService(store),
		Settings: services.NewSettingsService(memory.NewConfigStore(), nil),
	})

	t.Cleanup(func() {
		SetServices(Services{})
		resetFlags()
	})
	return &testEnv{fs: fs, store: store}
}

// resetFlags restores flag variables, which cobra keeps between executions.
func resetFlags() {
	sessionKey = ""
	verbose = false
	crawlLimit = 0
	crawlArchive = true
	summaryJSON = false
	categoriesURLs = false
	categoriesJSON = false
	exportMode = ""
	exportOut = ""
	exportClean = false
	exportManifest = false
	versionShort = false
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// crawled runs 'llmdump crawl' so the current session exists.
func crawled(t *testing.T) {
	t.Helper()
	_, err := execute(t, "crawl", "https://ex.com/docs")
	require.NoError(t, err)
}
