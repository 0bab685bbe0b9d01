package cli

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexpineda/llmdump/internal/core/domain"
)

func TestCrawlCmd_RequiresURL(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "crawl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestCrawlCmd_CreatesSession(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "crawl", "https://ex.com/docs", "--limit", "10")
	require.NoError(t, err)

	assert.Contains(t, out, "Crawling https://ex.com/docs (up to 10 pages)")
	assert.Contains(t, out, "Crawled 4 pages into 3 categories.")
	assert.Contains(t, out, "example-docs")
	assert.Contains(t, out, "Guides")
	assert.NotContains(t, out, "Archived previous session")

	exists, err := env.store.Exists(context.Background(), domain.CurrentSessionKey)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCrawlCmd_ArchivesPreviousSession(t *testing.T) {
	env := setupTestServices(t)
	crawled(t)

	out, err := execute(t, "crawl", "https://ex.com/docs")
	require.NoError(t, err)
	assert.Contains(t, out, "Archived previous session as")

	archived, err := env.store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, archived, 1)
}

func TestSummaryCmd_NoSession(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "summary")
	assert.ErrorIs(t, err, domain.ErrNoSession)
	assert.Contains(t, errorHint(err), "llmdump crawl")
}

func TestSummaryCmd_Table(t *testing.T) {
	setupTestServices(t)
	crawled(t)

	out, err := execute(t, "summary")
	require.NoError(t, err)

	assert.Contains(t, out, "Source:    https://ex.com/docs")
	assert.Contains(t, out, "Documents: 4")
	assert.Contains(t, out, "Category")
	assert.Contains(t, out, "Changelog")
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "Suggested mode: Single file (all categories)")
}

func TestSummaryCmd_JSON(t *testing.T) {
	setupTestServices(t)
	crawled(t)

	out, err := execute(t, "summary", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"Identifier": "example-docs"`)
	assert.Contains(t, out, `"SuggestedMode": "single"`)
}

func TestCategoriesCmd_ListsURLs(t *testing.T) {
	setupTestServices(t)
	crawled(t)

	out, err := execute(t, "categories", "--urls")
	require.NoError(t, err)
	assert.Contains(t, out, "Guides (2)")
	assert.Contains(t, out, "https://ex.com/docs/api/users")
	assert.Contains(t, out, "Users API")
}

func TestCategoriesCmd_JSON(t *testing.T) {
	setupTestServices(t)
	crawled(t)

	out, err := execute(t, "categories", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"category": "API"`)
	assert.Contains(t, out, `"refUrls"`)
}

func TestPruneCmd(t *testing.T) {
	setupTestServices(t)
	crawled(t)

	out, err := execute(t, "prune", "Changelog", "https://ex.com/docs/changelog")
	require.NoError(t, err)
	assert.Contains(t, out, `Removed 1 document(s) from "Changelog".`)
	assert.Contains(t, out, "is now empty and was dropped")

	out, err = execute(t, "categories")
	require.NoError(t, err)
	assert.NotContains(t, out, "Changelog")
}

func TestPruneCmd_UnknownCategory(t *testing.T) {
	setupTestServices(t)
	crawled(t)

	_, err := execute(t, "prune", "Nope", "https://ex.com/docs/intro")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPruneCmd_RequiresURLs(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "prune", "Guides")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg(s)")
}

func TestSplitCmd(t *testing.T) {
	setupTestServices(t)
	crawled(t)

	out, err := execute(t, "split", "Guides")
	require.NoError(t, err)
	assert.Contains(t, out, "Session now has 4 categories (was 3).")

	out, err = execute(t, "categories")
	require.NoError(t, err)
	assert.NotContains(t, out, "Guides")
	assert.Contains(t, out, "Intro (1)")
	assert.Contains(t, out, "Install (1)")
}

func TestRecategorizeCmd(t *testing.T) {
	setupTestServices(t)
	crawled(t)

	_, err := execute(t, "rename", "Guides", "Basics")
	require.NoError(t, err)

	out, err := execute(t, "recategorize")
	require.NoError(t, err)
	assert.Contains(t, out, "Re-classifying 4 documents")
	assert.Contains(t, out, "Guides")
	assert.NotContains(t, out, "Basics")
}

func TestRenameCmd_Merges(t *testing.T) {
	setupTestServices(t)
	crawled(t)

	out, err := execute(t, "rename", "Changelog", "guides")
	require.NoError(t, err)
	assert.Contains(t, out, `Renamed "Changelog" to "guides".`)

	out, err = execute(t, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Guides (3)")
	assert.NotContains(t, out, "Changelog")
}

func TestExportCmd_Single(t *testing.T) {
	env := setupTestServices(t)
	crawled(t)

	out, err := execute(t, "export", "--out", "dist")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 1 file(s):")
	assert.Contains(t, out, "dist/example-docs.md")

	data, err := afero.ReadFile(env.fs, "dist/example-docs.md")
	require.NoError(t, err)
	assert.Contains(t, string(data), "# example-docs")
	assert.Contains(t, string(data), "## API")
	assert.Contains(t, string(data), "### Users API")
}

func TestExportCmd_MultipleWithManifest(t *testing.T) {
	env := setupTestServices(t)
	crawled(t)

	out, err := execute(t, "export", "--mode", "multiple", "--out", "dist", "--manifest")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 4 file(s):")
	assert.Contains(t, out, "dist/example-docs_Guides.md")
	assert.Contains(t, out, "Note: Single file (all categories) suggested")

	exists, err := afero.Exists(env.fs, "dist/example-docs_API.md")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExportCmd_InvalidMode(t *testing.T) {
	setupTestServices(t)
	crawled(t)

	_, err := execute(t, "export", "--mode", "zip")
	assert.ErrorIs(t, err, domain.ErrUnsupportedMode)
}

func TestExportCmd_CleanWithoutModel(t *testing.T) {
	setupTestServices(t)
	crawled(t)

	_, err := execute(t, "export", "--clean")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestFormatTokens(t *testing.T) {
	assert.Equal(t, "0", formatTokens(0))
	assert.Equal(t, "9999", formatTokens(9999))
	assert.Equal(t, "12.5k", formatTokens(12500))
	assert.Equal(t, "2.0M", formatTokens(2_000_000))
}
