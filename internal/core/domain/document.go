package domain

import "time"

// CrawledDocument is one page fetched by the crawl provider.
// URL is the join key used everywhere else.
type CrawledDocument struct {
	// URL is the canonical identifier, unique within a crawl result.
	URL string

	// Title is the page title. May be empty.
	Title string

	// Description is the page meta description. May be empty.
	Description string

	// Content is the raw markdown body. May be empty.
	Content string
}

// Summary returns the fields the oracles are allowed to see.
func (d CrawledDocument) Summary() DocumentSummary {
	return DocumentSummary{
		URL:         d.URL,
		Title:       d.Title,
		Description: d.Description,
	}
}

// DocumentSummary is the (url, title, description) triple sent to the
// classification and identifier oracles. Content is deliberately absent.
type DocumentSummary struct {
	URL         string
	Title       string
	Description string
}

// CrawlResult is the full set of documents fetched for one source URL.
// Document order is discovery order and carries no meaning.
type CrawlResult struct {
	// ID is the provider's job identifier.
	ID string

	// Status is the provider's final job status (e.g. "completed").
	Status string

	// SourceURL is the URL the crawl started from.
	SourceURL string

	// CrawledAt is when the crawl finished.
	CrawledAt time.Time

	// Documents are the fetched pages.
	Documents []CrawledDocument
}

// Summaries returns the oracle view of every document.
func (r CrawlResult) Summaries() []DocumentSummary {
	out := make([]DocumentSummary, len(r.Documents))
	for i := range r.Documents {
		out[i] = r.Documents[i].Summary()
	}
	return out
}

// Index maps each URL to its document. The first occurrence wins.
func (r CrawlResult) Index() map[string]CrawledDocument {
	idx := make(map[string]CrawledDocument, len(r.Documents))
	for _, doc := range r.Documents {
		if _, ok := idx[doc.URL]; !ok {
			idx[doc.URL] = doc
		}
	}
	return idx
}

// Lookup returns the document with exactly the given URL.
func (r CrawlResult) Lookup(url string) (CrawledDocument, bool) {
	for _, doc := range r.Documents {
		if doc.URL == url {
			return doc, true
		}
	}
	return CrawledDocument{}, false
}
