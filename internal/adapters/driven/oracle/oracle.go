package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driven"
	"github.com/alexpineda/llmdump/internal/logger"
)

var (
	_ driven.Classifier          = (*Classifier)(nil)
	_ driven.IdentifierGenerator = (*IdentifierGenerator)(nil)
	_ driven.Cleaner             = (*Cleaner)(nil)
	_ driven.PromptStoreAware    = (*Classifier)(nil)
	_ driven.PromptStoreAware    = (*IdentifierGenerator)(nil)
	_ driven.PromptStoreAware    = (*Cleaner)(nil)
)

// Generation limits per oracle.
const (
	classifyMaxTokens   = 8192
	identifierMaxTokens = 64
	cleanupMaxTokens    = 8192
	temperature         = 0.2
)

// promptDocument is the JSON shape documents are shown to the model in.
type promptDocument struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// base holds what every oracle needs: the model and optional prompt
// overrides.
type base struct {
	llm         driven.LLMService
	promptStore driven.PromptStore
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the built-in prompts are used.
func (b *base) SetPromptStore(store driven.PromptStore) {
	b.promptStore = store
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (b *base) loadPrompt(name, fallback string) string {
	if b.promptStore == nil {
		return fallback
	}
	prompt, err := b.promptStore.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return prompt
}

func (b *base) available() error {
	if b.llm == nil {
		return domain.ErrLLMUnavailable
	}
	return nil
}

// renderDocuments fills a %s template with the JSON document list.
func renderDocuments(template string, docs []domain.DocumentSummary) (string, error) {
	list := make([]promptDocument, len(docs))
	for i, d := range docs {
		list[i] = promptDocument{URL: d.URL, Title: d.Title, Description: d.Description}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode documents: %w", err)
	}
	if !strings.Contains(template, "%s") {
		return template + "\n\n" + string(data), nil
	}
	return fmt.Sprintf(template, string(data)), nil
}

// Classifier asks the model to group documents into categories.
type Classifier struct {
	base
}

// NewClassifier creates a classifier backed by llm.
func NewClassifier(llm driven.LLMService) *Classifier {
	return &Classifier{base: base{llm: llm}}
}

type classifyReply struct {
	Categories []classifyCategory `json:"categories"`
}

type classifyCategory struct {
	Category string   `json:"category"`
	Name     string   `json:"name"`
	RefURLs  []string `json:"refUrls"`
	URLs     []string `json:"urls"`
}

// Classify returns the model's grouping. Names are trimmed and nameless
// entries dropped; URLs are passed through unchecked.
func (c *Classifier) Classify(ctx context.Context, docs []domain.DocumentSummary) (domain.CategorySet, error) {
	if err := c.available(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return domain.CategorySet{}, nil
	}

	prompt, err := renderDocuments(c.loadPrompt(driven.PromptClassify, defaultClassifyPrompt), docs)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	logger.Debug("Classifying %d documents with %s", len(docs), c.llm.ModelName())
	reply, err := c.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   classifyMaxTokens,
		Temperature: temperature,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	raw, err := parseClassifyReply(reply)
	if err != nil {
		logger.Debug("Unparseable classification reply: %q", truncate(reply, 200))
		return nil, fmt.Errorf("classify: %w", err)
	}

	set := make(domain.CategorySet, 0, len(raw))
	for _, rc := range raw {
		name := strings.TrimSpace(rc.Category)
		if name == "" {
			name = strings.TrimSpace(rc.Name)
		}
		if name == "" {
			continue
		}
		urls := rc.RefURLs
		if urls == nil {
			urls = rc.URLs
		}
		set = append(set, domain.Category{Name: name, RefURLs: trimAll(urls)})
	}
	return set, nil
}

// parseClassifyReply accepts either {"categories": [...]} or a bare array.
func parseClassifyReply(reply string) ([]classifyCategory, error) {
	body := extractJSON(reply)
	if strings.HasPrefix(body, "[") {
		var list []classifyCategory
		if err := json.Unmarshal([]byte(body), &list); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrOracleResponse, err)
		}
		return list, nil
	}

	var obj classifyReply
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrOracleResponse, err)
	}
	if obj.Categories == nil {
		return nil, fmt.Errorf("%w: reply has no categories field", domain.ErrOracleResponse)
	}
	return obj.Categories, nil
}

// IdentifierGenerator asks the model for a short slug naming the crawl.
type IdentifierGenerator struct {
	base
}

// NewIdentifierGenerator creates an identifier generator backed by llm.
func NewIdentifierGenerator(llm driven.LLMService) *IdentifierGenerator {
	return &IdentifierGenerator{base: base{llm: llm}}
}

// GenerateIdentifier returns the model's suggestion, unsanitised. A reply
// that is not JSON is accepted when it is a single short line.
func (g *IdentifierGenerator) GenerateIdentifier(ctx context.Context, docs []domain.DocumentSummary) (string, error) {
	if err := g.available(); err != nil {
		return "", err
	}

	prompt, err := renderDocuments(g.loadPrompt(driven.PromptIdentifier, defaultIdentifierPrompt), docs)
	if err != nil {
		return "", fmt.Errorf("generate identifier: %w", err)
	}

	reply, err := g.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   identifierMaxTokens,
		Temperature: temperature,
		JSON:        true,
	})
	if err != nil {
		return "", fmt.Errorf("generate identifier: %w", err)
	}

	id, err := parseIdentifierReply(reply)
	if err != nil {
		return "", fmt.Errorf("generate identifier: %w", err)
	}
	return id, nil
}

func parseIdentifierReply(reply string) (string, error) {
	body := extractJSON(reply)

	var obj struct {
		Identifier string `json:"identifier"`
	}
	if err := json.Unmarshal([]byte(body), &obj); err == nil {
		if id := strings.TrimSpace(obj.Identifier); id != "" {
			return id, nil
		}
		return "", fmt.Errorf("%w: empty identifier", domain.ErrOracleResponse)
	}

	plain := strings.Trim(strings.TrimSpace(stripFences(reply)), "\"'`")
	if plain == "" || strings.ContainsAny(plain, "\n{}") || len(plain) > 100 {
		return "", fmt.Errorf("%w: %q", domain.ErrOracleResponse, truncate(reply, 80))
	}
	return plain, nil
}

// Cleaner asks the model to strip page chrome from crawled markdown.
type Cleaner struct {
	base
}

// NewCleaner creates a cleaner backed by llm.
func NewCleaner(llm driven.LLMService) *Cleaner {
	return &Cleaner{base: base{llm: llm}}
}

// Clean returns the cleaned markdown. Blank input returns "" without
// calling the model.
func (c *Cleaner) Clean(ctx context.Context, markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}
	if err := c.available(); err != nil {
		return "", err
	}

	reply, err := c.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: c.loadPrompt(driven.PromptCleanup, defaultCleanupPrompt)},
		{Role: "user", Content: markdown},
	}, driven.ChatOptions{
		MaxTokens:   cleanupMaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("clean: %w", err)
	}
	return strings.TrimSpace(stripMarkdownFence(reply)), nil
}

// stripFences unwraps a reply that is exactly one ``` fenced block, with
// or without a language tag. Anything else is returned unchanged, so a
// reply that merely starts with a code block keeps all of its content.
func stripFences(s string) string {
	if _, body, ok := fencedBlock(s); ok {
		return body
	}
	return s
}

// stripMarkdownFence is stripFences for cleaned markdown: only a fence
// tagged markdown (or untagged) is a wrapper. A reply that is a single
// code block in some other language is the document itself.
func stripMarkdownFence(s string) string {
	lang, body, ok := fencedBlock(s)
	if !ok {
		return s
	}
	switch strings.ToLower(lang) {
	case "", "markdown", "md":
		return body
	}
	return s
}

// fencedBlock reports whether the trimmed s opens with a ``` line, closes
// with a ``` line and has no other fence line in between.
func fencedBlock(s string) (lang, body string, ok bool) {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) < 2 {
		return "", "", false
	}
	first := strings.TrimSpace(lines[0])
	last := strings.TrimSpace(lines[len(lines)-1])
	if !strings.HasPrefix(first, "```") || last != "```" {
		return "", "", false
	}
	inner := lines[1 : len(lines)-1]
	for _, l := range inner {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			return "", "", false
		}
	}
	return strings.TrimSpace(strings.TrimPrefix(first, "```")), strings.Join(inner, "\n"), true
}

// extractJSON returns the outermost JSON object or array in s, tolerating
// fences and prose around it. If none is found s is returned trimmed.
func extractJSON(s string) string {
	t := strings.TrimSpace(stripFences(s))
	start := strings.IndexAny(t, "{[")
	if start < 0 {
		return t
	}
	closer := byte('}')
	if t[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(t, closer)
	if end < start {
		return t[start:]
	}
	return t[start : end+1]
}

func trimAll(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
