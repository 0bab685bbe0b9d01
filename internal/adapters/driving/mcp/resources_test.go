package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexpineda/llmdump/internal/core/domain"
)

func TestExtractSessionKey(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "current session", uri: "llmdump://sessions/current/documents", expected: "current"},
		{name: "archived session", uri: "llmdump://sessions/20250301-120000-ab12/documents", expected: "20250301-120000-ab12"},
		{name: "invalid prefix", uri: "file://sessions/current/documents", expected: ""},
		{name: "missing documents suffix", uri: "llmdump://sessions/current", expected: ""},
		{name: "nested key", uri: "llmdump://sessions/a/b/documents", expected: ""},
		{name: "empty key", uri: "llmdump://sessions//documents", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractSessionKey(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleSessionsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil session service returns empty list", func(t *testing.T) {
		server := newTestServer(t, &Ports{Curation: &mockCurationService{}})

		result, err := server.handleSessionsResource(ctx, makeReadResourceRequest("llmdump://sessions"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("lists sessions", func(t *testing.T) {
		sessions := &mockSessionService{sessions: []domain.SessionInfo{{
			Key:           "20250301-120000-ab12",
			Identifier:    "router-docs",
			SourceURL:     "https://ex.com/docs",
			DocumentCount: 12,
			CategoryCount: 3,
			CreatedAt:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		}}}
		server := newTestServer(t, &Ports{Curation: &mockCurationService{}, Session: sessions})

		result, err := server.handleSessionsResource(ctx, makeReadResourceRequest("llmdump://sessions"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		text := result.Contents[0].Text
		assert.Contains(t, text, `"key": "20250301-120000-ab12"`)
		assert.Contains(t, text, `"documents": 12`)
		assert.Contains(t, text, "2025-03-01T12:00:00Z")
	})

	t.Run("list failure", func(t *testing.T) {
		sessions := &mockSessionService{err: errors.New("database error")}
		server := newTestServer(t, &Ports{Curation: &mockCurationService{}, Session: sessions})

		_, err := server.handleSessionsResource(ctx, makeReadResourceRequest("llmdump://sessions"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing sessions")
	})
}

func TestServer_handleSessionDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("groups documents by category", func(t *testing.T) {
		session := testSession()
		session.Categories[0].RefURLs = append(session.Categories[0].RefURLs, "https://ex.com/docs/missing")
		curation := &mockCurationService{session: session}
		server := newTestServer(t, &Ports{Curation: curation})

		result, err := server.handleSessionDocumentsResource(ctx, makeReadResourceRequest("llmdump://sessions/current/documents"))
		require.NoError(t, err)

		assert.Equal(t, "current", curation.openedKey)
		text := result.Contents[0].Text
		assert.Contains(t, text, `"name": "Guides"`)
		assert.Contains(t, text, `"title": "A"`)
		assert.NotContains(t, text, "missing")
		assert.Contains(t, text, `"documents": []`)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{Curation: &mockCurationService{session: testSession()}})

		_, err := server.handleSessionDocumentsResource(ctx, makeReadResourceRequest("llmdump://invalid/uri"))
		require.Error(t, err)
	})

	t.Run("unknown session", func(t *testing.T) {
		server := newTestServer(t, &Ports{Curation: &mockCurationService{err: domain.ErrNotFound}})

		_, err := server.handleSessionDocumentsResource(ctx, makeReadResourceRequest("llmdump://sessions/nope/documents"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
