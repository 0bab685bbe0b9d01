package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driven"
	"github.com/alexpineda/llmdump/internal/core/ports/driving"
	"github.com/alexpineda/llmdump/internal/logger"
)

// Ensure CurationService implements the interface.
var _ driving.CurationService = (*CurationService)(nil)

// CurationService orchestrates the crawl, classification and refinement of
// a session. It holds no session state; every operation takes a session
// and returns the updated one after persisting it.
type CurationService struct {
	crawler    driven.Crawler
	classifier driven.Classifier
	identifier driven.IdentifierGenerator
	store      driven.SessionStore

	// maxTokensPerFile feeds the suggested assembly mode.
	maxTokensPerFile int

	now func() time.Time
}

// NewCurationService creates a new curation service.
// The crawler may be nil when only stored sessions are curated.
func NewCurationService(
	crawler driven.Crawler,
	classifier driven.Classifier,
	identifier driven.IdentifierGenerator,
	store driven.SessionStore,
	maxTokensPerFile int,
) *CurationService {
	return &CurationService{
		crawler:          crawler,
		classifier:       classifier,
		identifier:       identifier,
		store:            store,
		maxTokensPerFile: maxTokensPerFile,
		now:              time.Now,
	}
}

// NewSession crawls url and stores the categorised, named result as the
// current session. Artifacts are saved only after every collaborator has
// succeeded, so a failure leaves the previous current session untouched.
func (s *CurationService) NewSession(ctx context.Context, url string, limit int) (*domain.Session, error) {
	if url == "" {
		return nil, fmt.Errorf("url is required: %w", domain.ErrInvalidInput)
	}
	if s.crawler == nil {
		return nil, domain.ErrCrawlerUnavailable
	}

	logger.Section("Crawl")
	logger.Info("Crawling %s with %s (limit %d)", url, s.crawler.Name(), limit)

	crawl, err := s.crawler.Crawl(ctx, url, limit)
	if err != nil {
		return nil, fmt.Errorf("crawl %s: %w", url, err)
	}
	if crawl.SourceURL == "" {
		crawl.SourceURL = url
	}
	if crawl.CrawledAt.IsZero() {
		crawl.CrawledAt = s.now().UTC()
	}
	logger.Info("Crawled %d documents", len(crawl.Documents))

	logger.Section("Categorize")
	categories, err := s.Categorize(ctx, crawl.Documents)
	if err != nil {
		return nil, err
	}
	categories = domain.SanitizeCategories(categories, *crawl)
	logger.Info("Classified into %d categories", len(categories))

	identifier, err := s.GenerateIdentifier(ctx, crawl.Documents)
	if err != nil {
		return nil, err
	}
	logger.Info("Session identifier: %s", identifier)

	session := &domain.Session{
		Key:        domain.CurrentSessionKey,
		Crawl:      *crawl,
		Categories: categories,
		Identifier: identifier,
	}

	if err := s.store.SaveCrawl(ctx, session.Key, session.Crawl); err != nil {
		return nil, fmt.Errorf("save crawl: %w", err)
	}
	if err := s.persistCategories(ctx, session); err != nil {
		return nil, err
	}
	if err := s.store.SaveIdentifier(ctx, session.Key, session.Identifier); err != nil {
		return nil, fmt.Errorf("save identifier: %w", err)
	}

	return session, nil
}

// Open loads the session stored under key. An empty key opens the current session.
func (s *CurationService) Open(ctx context.Context, key string) (*domain.Session, error) {
	if key == "" {
		key = domain.CurrentSessionKey
	}

	crawl, err := s.store.LoadCrawl(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) && key == domain.CurrentSessionKey {
			return nil, domain.ErrNoSession
		}
		return nil, fmt.Errorf("load crawl: %w", err)
	}

	categories, err := s.store.LoadCategories(ctx, key)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	identifier, err := s.store.LoadIdentifier(ctx, key)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load identifier: %w", err)
	}
	if identifier == "" {
		identifier = domain.SanitizeIdentifier("")
	}

	return &domain.Session{
		Key:        key,
		Crawl:      *crawl,
		Categories: categories,
		Identifier: identifier,
	}, nil
}

// Categorize groups documents via the classification oracle.
// The oracle's output is returned unchanged; callers sanitise it.
func (s *CurationService) Categorize(ctx context.Context, docs []domain.CrawledDocument) (domain.CategorySet, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("categorize: no documents: %w", domain.ErrInvalidInput)
	}
	if s.classifier == nil {
		return nil, domain.ErrLLMUnavailable
	}

	categories, err := s.classifier.Classify(ctx, summaries(docs))
	if err != nil {
		return nil, fmt.Errorf("categorize: %w", err)
	}
	return categories, nil
}

// GenerateIdentifier names documents via the identifier oracle.
// The answer is sanitised for use as a filename stem.
func (s *CurationService) GenerateIdentifier(ctx context.Context, docs []domain.CrawledDocument) (string, error) {
	if len(docs) == 0 {
		return "", fmt.Errorf("generate identifier: no documents: %w", domain.ErrInvalidInput)
	}
	if s.identifier == nil {
		return "", domain.ErrLLMUnavailable
	}

	raw, err := s.identifier.GenerateIdentifier(ctx, summaries(docs))
	if err != nil {
		return "", fmt.Errorf("generate identifier: %w", err)
	}
	return domain.SanitizeIdentifier(raw), nil
}

// Prune removes urls from the named category, drops categories left empty
// and persists the result.
func (s *CurationService) Prune(
	ctx context.Context,
	session *domain.Session,
	category string,
	urls []string,
) (*domain.Session, error) {
	if session == nil {
		return nil, domain.ErrNoSession
	}
	if domain.FindCategory(session.Categories, category) < 0 {
		return nil, fmt.Errorf("category %q: %w", category, domain.ErrNotFound)
	}

	next := *session
	pruned := domain.PruneURLsFromCategory(session.Categories, category, urls)
	next.Categories = domain.DropEmptyCategories(domain.SanitizeCategories(pruned, session.Crawl))

	logger.Debug("Pruned %d urls from %q", len(urls), category)

	if err := s.persistCategories(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// Split re-classifies the documents of one category, merges the produced
// categories back into the set and persists the result.
func (s *CurationService) Split(ctx context.Context, session *domain.Session, category string) (*domain.Session, error) {
	if session == nil {
		return nil, domain.ErrNoSession
	}

	set, err := s.SplitCategory(ctx, *session, category)
	if err != nil {
		return nil, err
	}

	next := *session
	next.Categories = set
	if err := s.persistCategories(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// SplitCategory classifies the resolvable documents of one category and
// reconciles the produced categories with the rest of the set. The source
// category is removed. Nothing is persisted.
func (s *CurationService) SplitCategory(ctx context.Context, session domain.Session, category string) (domain.CategorySet, error) {
	idx := domain.FindCategory(session.Categories, category)
	if idx < 0 {
		return nil, fmt.Errorf("category %q: %w", category, domain.ErrNotFound)
	}

	subset := resolveCategory(session.Categories[idx], session.Crawl)
	if len(subset.Documents) == 0 {
		return nil, fmt.Errorf("category %q has no resolvable documents: %w", category, domain.ErrInvalidInput)
	}

	logger.Info("Splitting %q (%d documents)", category, len(subset.Documents))

	produced, err := s.Categorize(ctx, subset.Documents)
	if err != nil {
		return nil, err
	}
	produced = domain.DropEmptyCategories(domain.SanitizeCategories(produced, subset))

	return domain.ReconcileSplit(session.Categories, idx, produced), nil
}

// Recategorize re-runs classification over every crawled document and
// replaces the category set.
func (s *CurationService) Recategorize(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	if session == nil {
		return nil, domain.ErrNoSession
	}

	categories, err := s.Categorize(ctx, session.Crawl.Documents)
	if err != nil {
		return nil, err
	}

	next := *session
	next.Categories = domain.SanitizeCategories(categories, session.Crawl)

	if err := s.persistCategories(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// RenameCategory renames a category. Renaming onto an existing name
// (ignoring case) merges the two categories.
func (s *CurationService) RenameCategory(
	ctx context.Context,
	session *domain.Session,
	from, to string,
) (*domain.Session, error) {
	if session == nil {
		return nil, domain.ErrNoSession
	}
	if to == "" {
		return nil, fmt.Errorf("new category name is required: %w", domain.ErrInvalidInput)
	}
	if domain.FindCategory(session.Categories, from) < 0 {
		return nil, fmt.Errorf("category %q: %w", from, domain.ErrNotFound)
	}

	next := *session
	next.Categories = domain.RenameCategory(session.Categories, from, to)

	if err := s.persistCategories(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// Summary returns token estimates and a suggested assembly mode.
func (s *CurationService) Summary(session *domain.Session) driving.SessionSummary {
	if session == nil {
		return driving.SessionSummary{}
	}
	tokens := domain.Summarize(session.Categories, session.Crawl)
	return driving.SessionSummary{
		Identifier:    session.Identifier,
		SourceURL:     session.Crawl.SourceURL,
		DocumentCount: len(session.Crawl.Documents),
		Tokens:        tokens,
		SuggestedMode: domain.SuggestAssemblyMode(tokens.Total, s.maxTokensPerFile),
	}
}

func (s *CurationService) persistCategories(ctx context.Context, session *domain.Session) error {
	if err := s.store.SaveCategories(ctx, session.Key, session.Categories); err != nil {
		return fmt.Errorf("save categories: %w", err)
	}
	return nil
}

func summaries(docs []domain.CrawledDocument) []domain.DocumentSummary {
	out := make([]domain.DocumentSummary, len(docs))
	for i := range docs {
		out[i] = docs[i].Summary()
	}
	return out
}

// resolveCategory returns a crawl holding the category's resolvable
// documents in RefURL order, without duplicates.
func resolveCategory(category domain.Category, crawl domain.CrawlResult) domain.CrawlResult {
	index := crawl.Index()
	subset := domain.CrawlResult{ID: crawl.ID, Status: crawl.Status, SourceURL: crawl.SourceURL}
	seen := make(map[string]struct{}, len(category.RefURLs))
	for _, url := range category.RefURLs {
		doc, ok := index[url]
		if !ok {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		subset.Documents = append(subset.Documents, doc)
	}
	return subset
}
