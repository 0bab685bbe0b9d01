package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, driven.SessionStore) {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })

	return store, store.SessionStore()
}

func testCrawl() domain.CrawlResult {
	return domain.CrawlResult{
		ID:        "job-9",
		Status:    "completed",
		SourceURL: "https://docs.example.com",
		Documents: []domain.CrawledDocument{
			{URL: "https://docs.example.com/x", Title: "X", Description: "x", Content: "xx"},
			{URL: "https://docs.example.com/y", Title: "Y", Description: "y", Content: "yy"},
		},
	}
}

func seedCurrent(t *testing.T, sessions driven.SessionStore, identifier string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, sessions.SaveCrawl(ctx, domain.CurrentSessionKey, testCrawl()))
	require.NoError(t, sessions.SaveCategories(ctx, domain.CurrentSessionKey, domain.CategorySet{
		{Name: "X", RefURLs: []string{"https://docs.example.com/x"}},
		{Name: "Y", RefURLs: []string{"https://docs.example.com/y"}},
	}))
	require.NoError(t, sessions.SaveIdentifier(ctx, domain.CurrentSessionKey, identifier))
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "sessions.db"), store.Path())
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	var version int
	require.NoError(t, second.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestSessionStore_RoundTrip(t *testing.T) {
	_, sessions := setupTestStore(t)
	ctx := context.Background()
	seedCurrent(t, sessions, "docs")

	crawl, err := sessions.LoadCrawl(ctx, domain.CurrentSessionKey)
	require.NoError(t, err)
	assert.Equal(t, testCrawl(), *crawl)

	set, err := sessions.LoadCategories(ctx, domain.CurrentSessionKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, set.Names())

	id, err := sessions.LoadIdentifier(ctx, domain.CurrentSessionKey)
	require.NoError(t, err)
	assert.Equal(t, "docs", id)
}

func TestSessionStore_Overwrite(t *testing.T) {
	_, sessions := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, sessions.SaveIdentifier(ctx, domain.CurrentSessionKey, "one"))
	require.NoError(t, sessions.SaveIdentifier(ctx, domain.CurrentSessionKey, "two"))

	id, err := sessions.LoadIdentifier(ctx, domain.CurrentSessionKey)
	require.NoError(t, err)
	assert.Equal(t, "two", id)
}

func TestSessionStore_NotFound(t *testing.T) {
	_, sessions := setupTestStore(t)
	ctx := context.Background()

	_, err := sessions.LoadCrawl(ctx, domain.CurrentSessionKey)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	exists, err := sessions.Exists(ctx, domain.CurrentSessionKey)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = sessions.Archive(ctx, domain.CurrentSessionKey)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = sessions.Delete(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSessionStore_ArchiveListRestore(t *testing.T) {
	store, sessions := setupTestStore(t)
	ctx := context.Background()
	seedCurrent(t, sessions, "docs")

	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	older, err := sessions.Archive(ctx, domain.CurrentSessionKey)
	require.NoError(t, err)

	require.NoError(t, sessions.SaveIdentifier(ctx, domain.CurrentSessionKey, "renamed"))
	clock = clock.Add(time.Hour)
	newer, err := sessions.Archive(ctx, domain.CurrentSessionKey)
	require.NoError(t, err)

	infos, err := sessions.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, newer, infos[0].Key)
	assert.Equal(t, "renamed", infos[0].Identifier)
	assert.Equal(t, older, infos[1].Key)
	assert.Equal(t, 2, infos[1].DocumentCount)
	assert.Equal(t, 2, infos[1].CategoryCount)
	assert.Equal(t, clock.Add(-time.Hour), infos[1].CreatedAt)

	require.NoError(t, sessions.Restore(ctx, older))
	id, err := sessions.LoadIdentifier(ctx, domain.CurrentSessionKey)
	require.NoError(t, err)
	assert.Equal(t, "docs", id)

	require.NoError(t, sessions.Delete(ctx, older))
	_, err = sessions.LoadCrawl(ctx, older)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
