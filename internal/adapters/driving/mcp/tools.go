package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driving"
)

// SessionInput selects the session a tool operates on.
type SessionInput struct {
	Session string `json:"session,omitempty" jsonschema:"stored session key (default: the current session)"`
}

// SummaryOutput is the output schema for the summary tool.
type SummaryOutput struct {
	Identifier    string                  `json:"identifier"`
	SourceURL     string                  `json:"source_url"`
	DocumentCount int                     `json:"document_count"`
	TotalTokens   float64                 `json:"total_tokens"`
	SuggestedMode string                  `json:"suggested_mode"`
	Categories    []CategorySummaryOutput `json:"categories"`
}

// CategorySummaryOutput is one category line of a summary.
type CategorySummaryOutput struct {
	Name      string  `json:"name"`
	Documents int     `json:"documents"`
	Resolved  int     `json:"resolved"`
	Tokens    float64 `json:"tokens"`
}

// CategoriesOutput is the output schema for the categories and split tools.
type CategoriesOutput struct {
	Categories []CategoryOutput `json:"categories"`
}

// CategoryOutput is a category with its document references.
type CategoryOutput struct {
	Name    string   `json:"name"`
	RefURLs []string `json:"ref_urls"`
}

// PruneInput is the input schema for the prune tool.
type PruneInput struct {
	Session  string   `json:"session,omitempty" jsonschema:"stored session key (default: the current session)"`
	Category string   `json:"category" jsonschema:"name of the category to prune"`
	URLs     []string `json:"urls" jsonschema:"document URLs to remove from the category"`
}

// SplitInput is the input schema for the split tool.
type SplitInput struct {
	Session  string `json:"session,omitempty" jsonschema:"stored session key (default: the current session)"`
	Category string `json:"category" jsonschema:"name of the category to re-classify into smaller categories"`
}

// ExportInput is the input schema for the export tool.
type ExportInput struct {
	Session   string `json:"session,omitempty" jsonschema:"stored session key (default: the current session)"`
	Mode      string `json:"mode,omitempty" jsonschema:"single or multiple (default: the configured export mode)"`
	OutputDir string `json:"output_dir,omitempty" jsonschema:"directory to write into (default: the configured output directory)"`
	Clean     bool   `json:"clean,omitempty" jsonschema:"run each document through the cleanup model first"`
	Manifest  bool   `json:"manifest,omitempty" jsonschema:"also write a YAML manifest"`
}

// ExportOutput is the output schema for the export tool.
type ExportOutput struct {
	Files []string `json:"files"`
	Count int      `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summary",
		Description: "Summarise a session: categories, document counts and estimated tokens",
	}, s.handleSummary)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "categories",
		Description: "List the categories of a session with the document URLs they reference",
	}, s.handleCategories)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "prune",
		Description: "Remove documents from a category; emptied categories are dropped",
	}, s.handlePrune)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "split",
		Description: "Re-classify one category into smaller categories",
	}, s.handleSplit)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "export",
		Description: "Write the session's categorised documents as markdown files",
	}, s.handleExport)
}

func (s *Server) handleSummary(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, SummaryOutput, error) {
	session, err := s.ports.Curation.Open(ctx, input.Session)
	if err != nil {
		return nil, SummaryOutput{}, err
	}
	return nil, s.summaryOutput(session), nil
}

func (s *Server) handleCategories(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, CategoriesOutput, error) {
	session, err := s.ports.Curation.Open(ctx, input.Session)
	if err != nil {
		return nil, CategoriesOutput{}, err
	}
	return nil, categoriesOutput(session.Categories), nil
}

func (s *Server) handlePrune(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PruneInput,
) (*mcp.CallToolResult, SummaryOutput, error) {
	if input.Category == "" {
		return nil, SummaryOutput{}, fmt.Errorf("category is required: %w", domain.ErrInvalidInput)
	}

	session, err := s.ports.Curation.Open(ctx, input.Session)
	if err != nil {
		return nil, SummaryOutput{}, err
	}

	session, err = s.ports.Curation.Prune(ctx, session, input.Category, input.URLs)
	if err != nil {
		return nil, SummaryOutput{}, err
	}
	return nil, s.summaryOutput(session), nil
}

func (s *Server) handleSplit(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SplitInput,
) (*mcp.CallToolResult, CategoriesOutput, error) {
	if input.Category == "" {
		return nil, CategoriesOutput{}, fmt.Errorf("category is required: %w", domain.ErrInvalidInput)
	}

	session, err := s.ports.Curation.Open(ctx, input.Session)
	if err != nil {
		return nil, CategoriesOutput{}, err
	}

	session, err = s.ports.Curation.Split(ctx, session, input.Category)
	if err != nil {
		return nil, CategoriesOutput{}, err
	}
	return nil, categoriesOutput(session.Categories), nil
}

func (s *Server) handleExport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExportInput,
) (*mcp.CallToolResult, ExportOutput, error) {
	if s.ports.Export == nil {
		return nil, ExportOutput{}, errors.New("export service not configured")
	}

	defaults := s.ports.exportDefaults()
	mode := domain.AssemblyMode(input.Mode)
	if input.Mode == "" {
		mode = defaults.Mode
	}
	outputDir := input.OutputDir
	if outputDir == "" {
		outputDir = defaults.OutputDir
	}

	session, err := s.ports.Curation.Open(ctx, input.Session)
	if err != nil {
		return nil, ExportOutput{}, err
	}

	files, err := s.ports.Export.WriteDocumentsToFile(ctx, session, outputDir, driving.ExportOptions{
		Mode:     mode,
		Clean:    input.Clean || defaults.Clean,
		Manifest: input.Manifest,
	})
	if err != nil {
		return nil, ExportOutput{}, err
	}

	return nil, ExportOutput{Files: files, Count: len(files)}, nil
}

func (s *Server) summaryOutput(session *domain.Session) SummaryOutput {
	summary := s.ports.Curation.Summary(session)
	out := SummaryOutput{
		Identifier:    summary.Identifier,
		SourceURL:     summary.SourceURL,
		DocumentCount: summary.DocumentCount,
		TotalTokens:   summary.Tokens.Total,
		SuggestedMode: summary.SuggestedMode.String(),
		Categories:    make([]CategorySummaryOutput, len(summary.Tokens.Categories)),
	}
	for i, c := range summary.Tokens.Categories {
		out.Categories[i] = CategorySummaryOutput{
			Name:      c.Name,
			Documents: c.DocumentCount,
			Resolved:  c.ResolvedCount,
			Tokens:    c.Tokens,
		}
	}
	return out
}

func categoriesOutput(set domain.CategorySet) CategoriesOutput {
	out := CategoriesOutput{Categories: make([]CategoryOutput, len(set))}
	for i, c := range set {
		urls := c.RefURLs
		if urls == nil {
			urls = []string{}
		}
		out.Categories[i] = CategoryOutput{Name: c.Name, RefURLs: urls}
	}
	return out
}
