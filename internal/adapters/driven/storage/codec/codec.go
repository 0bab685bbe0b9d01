// Package codec defines the persisted JSON shape of session artifacts and
// the format of archive keys. Every SessionStore backend stores the same
// blobs, so a session can move between backends unchanged.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexpineda/llmdump/internal/core/domain"
)

// Artifact names. The file backend uses them as filenames.
const (
	CrawlArtifact      = "crawl.json"
	CategoriesArtifact = "categories.json"
	IdentifierArtifact = "identifier.json"
)

// Artifacts lists every artifact name in save order.
var Artifacts = []string{CrawlArtifact, CategoriesArtifact, IdentifierArtifact}

// archiveTimeLayout prefixes archive keys so they sort chronologically.
const archiveTimeLayout = "20060102-150405"

type crawlFile struct {
	Data      []crawlDocument `json:"data"`
	Status    string          `json:"status"`
	ID        string          `json:"id"`
	SourceURL string          `json:"sourceURL,omitempty"`
	CrawledAt *time.Time      `json:"crawledAt,omitempty"`
}

type crawlDocument struct {
	Metadata crawlMetadata `json:"metadata"`
	Markdown string        `json:"markdown"`
}

type crawlMetadata struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type categoriesFile struct {
	Categories []categoryEntry `json:"categories"`
}

type categoryEntry struct {
	Category string   `json:"category"`
	RefURLs  []string `json:"refUrls"`
}

type identifierFile struct {
	Identifier string `json:"identifier"`
}

// EncodeCrawl serialises a crawl result.
func EncodeCrawl(crawl domain.CrawlResult) ([]byte, error) {
	file := crawlFile{
		Data:      make([]crawlDocument, len(crawl.Documents)),
		Status:    crawl.Status,
		ID:        crawl.ID,
		SourceURL: crawl.SourceURL,
	}
	if !crawl.CrawledAt.IsZero() {
		at := crawl.CrawledAt.UTC()
		file.CrawledAt = &at
	}
	for i, doc := range crawl.Documents {
		file.Data[i] = crawlDocument{
			Metadata: crawlMetadata{URL: doc.URL, Title: doc.Title, Description: doc.Description},
			Markdown: doc.Content,
		}
	}
	return json.MarshalIndent(file, "", "  ")
}

// DecodeCrawl parses a crawl result.
func DecodeCrawl(data []byte) (*domain.CrawlResult, error) {
	var file crawlFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode crawl: %w", err)
	}
	crawl := &domain.CrawlResult{
		ID:        file.ID,
		Status:    file.Status,
		SourceURL: file.SourceURL,
		Documents: make([]domain.CrawledDocument, len(file.Data)),
	}
	if file.CrawledAt != nil {
		crawl.CrawledAt = *file.CrawledAt
	}
	for i, doc := range file.Data {
		crawl.Documents[i] = domain.CrawledDocument{
			URL:         doc.Metadata.URL,
			Title:       doc.Metadata.Title,
			Description: doc.Metadata.Description,
			Content:     doc.Markdown,
		}
	}
	return crawl, nil
}

// EncodeCategories serialises a category set.
func EncodeCategories(set domain.CategorySet) ([]byte, error) {
	file := categoriesFile{Categories: make([]categoryEntry, len(set))}
	for i, c := range set {
		urls := c.RefURLs
		if urls == nil {
			urls = []string{}
		}
		file.Categories[i] = categoryEntry{Category: c.Name, RefURLs: urls}
	}
	return json.MarshalIndent(file, "", "  ")
}

// DecodeCategories parses a category set.
func DecodeCategories(data []byte) (domain.CategorySet, error) {
	var file categoriesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	set := make(domain.CategorySet, len(file.Categories))
	for i, entry := range file.Categories {
		set[i] = domain.Category{Name: entry.Category, RefURLs: entry.RefURLs}
	}
	return set, nil
}

// EncodeIdentifier serialises a session identifier.
func EncodeIdentifier(identifier string) ([]byte, error) {
	return json.MarshalIndent(identifierFile{Identifier: identifier}, "", "  ")
}

// DecodeIdentifier parses a session identifier.
func DecodeIdentifier(data []byte) (string, error) {
	var file identifierFile
	if err := json.Unmarshal(data, &file); err != nil {
		return "", fmt.Errorf("decode identifier: %w", err)
	}
	return file.Identifier, nil
}

// NewArchiveKey returns a unique key for archiving a session named
// identifier at the given time.
func NewArchiveKey(now time.Time, identifier string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s-%s", now.UTC().Format(archiveTimeLayout), domain.SanitizeIdentifier(identifier), suffix)
}

// ArchiveTime extracts the archive time from a key made by NewArchiveKey.
func ArchiveTime(key string) (time.Time, bool) {
	if len(key) < len(archiveTimeLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(archiveTimeLayout, key[:len(archiveTimeLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Info builds a listing entry from whichever artifacts are present.
// Missing or unreadable artifacts leave the corresponding fields zero.
func Info(key string, blobs map[string][]byte, createdAt time.Time) domain.SessionInfo {
	info := domain.SessionInfo{Key: key, CreatedAt: createdAt}
	if t, ok := ArchiveTime(key); ok && createdAt.IsZero() {
		info.CreatedAt = t
	}
	if data, ok := blobs[CrawlArtifact]; ok {
		if crawl, err := DecodeCrawl(data); err == nil {
			info.SourceURL = crawl.SourceURL
			info.DocumentCount = len(crawl.Documents)
		}
	}
	if data, ok := blobs[CategoriesArtifact]; ok {
		if set, err := DecodeCategories(data); err == nil {
			info.CategoryCount = len(set)
		}
	}
	if data, ok := blobs[IdentifierArtifact]; ok {
		if id, err := DecodeIdentifier(data); err == nil {
			info.Identifier = id
		}
	}
	return info
}
