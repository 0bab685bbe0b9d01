package driven

import (
	"context"

	"github.com/alexpineda/llmdump/internal/core/domain"
)

// Classifier groups documents into named categories.
// Output is untrusted: names may collide, RefURLs may not resolve and
// some documents may be left out. Callers sanitise the result.
type Classifier interface {
	// Classify returns categories referencing the given documents by URL.
	Classify(ctx context.Context, docs []domain.DocumentSummary) (domain.CategorySet, error)
}

// IdentifierGenerator names a crawl with a short slug.
type IdentifierGenerator interface {
	// GenerateIdentifier returns an unsanitised identifier for the documents.
	GenerateIdentifier(ctx context.Context, docs []domain.DocumentSummary) (string, error)
}

// Cleaner rewrites raw crawled markdown into cleaner markdown.
// Empty input returns empty output without contacting any backend.
type Cleaner interface {
	// Clean returns the cleaned markdown.
	Clean(ctx context.Context, markdown string) (string, error)
}
