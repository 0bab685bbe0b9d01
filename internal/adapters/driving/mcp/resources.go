package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for llmdump resources.
	uriScheme = "llmdump://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sessions",
		Name:        "sessions",
		Description: "Archived sessions, newest first",
		MIMEType:    "application/json",
	}, s.handleSessionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{key}/documents",
		Name:        "session-documents",
		Description: "Documents of a session grouped by category (use 'current' for the working session)",
		MIMEType:    "application/json",
	}, s.handleSessionDocumentsResource)
}

// handleSessionsResource returns the archived sessions.
func (s *Server) handleSessionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Session == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	sessions, err := s.ports.Session.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	type sessionInfo struct {
		Key        string `json:"key"`
		Identifier string `json:"identifier"`
		SourceURL  string `json:"source_url"`
		Documents  int    `json:"documents"`
		Categories int    `json:"categories"`
		CreatedAt  string `json:"created_at"`
	}

	infos := make([]sessionInfo, len(sessions))
	for i, info := range sessions {
		infos[i] = sessionInfo{
			Key:        info.Key,
			Identifier: info.Identifier,
			SourceURL:  info.SourceURL,
			Documents:  info.DocumentCount,
			Categories: info.CategoryCount,
			CreatedAt:  info.CreatedAt.Format(time.RFC3339),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sessions: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleSessionDocumentsResource returns the documents of a session by category.
func (s *Server) handleSessionDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	key := extractSessionKey(req.Params.URI)
	if key == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	session, err := s.ports.Curation.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("opening session %s: %w", key, err)
	}

	type docInfo struct {
		URL         string `json:"url"`
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
	}
	type categoryInfo struct {
		Name      string    `json:"name"`
		Documents []docInfo `json:"documents"`
	}

	index := session.Crawl.Index()
	infos := make([]categoryInfo, 0, len(session.Categories))
	for _, category := range session.Categories {
		info := categoryInfo{Name: category.Name, Documents: []docInfo{}}
		for _, url := range category.RefURLs {
			if doc, ok := index[url]; ok {
				info.Documents = append(info.Documents, docInfo{URL: doc.URL, Title: doc.Title, Description: doc.Description})
			}
		}
		infos = append(infos, info)
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractSessionKey extracts the key from a URI like llmdump://sessions/{key}/documents.
func extractSessionKey(uri string) string {
	const prefix = uriScheme + "sessions/"
	const suffix = "/documents"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}
	key := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	if key == "" || strings.Contains(key, "/") {
		return ""
	}
	return key
}
