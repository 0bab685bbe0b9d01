package domain

import (
	"math"
	"unicode/utf16"
)

// Token estimation constants. The estimate is a heuristic: roughly four
// characters per token, scaled down for the markup that cleanup removes.
// Changing these changes every token figure shown to the operator.
const (
	charsPerToken    = 4
	cleanupShrinkage = 0.8
)

// EstimateTokens approximates the LLM token count of content as
// ceil(length/4) * 0.8. Length counts UTF-16 code units, not bytes, so
// non-ASCII text is not overestimated. The empty string is 0 tokens.
func EstimateTokens(content string) float64 {
	if content == "" {
		return 0
	}
	chunks := math.Ceil(float64(textLength(content)) / charsPerToken)
	return chunks * cleanupShrinkage
}

// textLength is the length of s in UTF-16 code units. Invalid bytes count
// as one unit each.
func textLength(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// EstimateTokensForCategory sums EstimateTokens over the category's URLs
// that resolve in crawl. Dangling URLs contribute nothing.
func EstimateTokensForCategory(category Category, crawl CrawlResult) float64 {
	return estimateWithIndex(category, crawl.Index())
}

// EstimateTokensForAllDocuments sums EstimateTokensForCategory over set.
func EstimateTokensForAllDocuments(set CategorySet, crawl CrawlResult) float64 {
	index := crawl.Index()
	var total float64
	for i := range set {
		total += estimateWithIndex(set[i], index)
	}
	return total
}

func estimateWithIndex(category Category, index map[string]CrawledDocument) float64 {
	var total float64
	for _, url := range category.RefURLs {
		if doc, ok := index[url]; ok {
			total += EstimateTokens(doc.Content)
		}
	}
	return total
}

// CategoryTokens is the per-category line of a TokenSummary.
type CategoryTokens struct {
	// Name is the category name.
	Name string

	// DocumentCount is the number of RefURLs in the category.
	DocumentCount int

	// ResolvedCount is the number of RefURLs that resolve in the crawl.
	ResolvedCount int

	// Tokens is the estimated token count of the resolved documents.
	Tokens float64
}

// TokenSummary aggregates token estimates for a category set.
type TokenSummary struct {
	// Total is the estimate across every category.
	Total float64

	// Categories holds one entry per category, in set order.
	Categories []CategoryTokens
}

// Summarize computes per-category and total token estimates.
func Summarize(set CategorySet, crawl CrawlResult) TokenSummary {
	index := crawl.Index()
	summary := TokenSummary{Categories: make([]CategoryTokens, 0, len(set))}
	for i := range set {
		line := CategoryTokens{
			Name:          set[i].Name,
			DocumentCount: len(set[i].RefURLs),
		}
		for _, url := range set[i].RefURLs {
			if doc, ok := index[url]; ok {
				line.ResolvedCount++
				line.Tokens += EstimateTokens(doc.Content)
			}
		}
		summary.Total += line.Tokens
		summary.Categories = append(summary.Categories, line)
	}
	return summary
}

// SuggestAssemblyMode picks single-file output when total fits into one
// file's token budget, and one file per category otherwise. A budget of
// zero or less means unlimited.
func SuggestAssemblyMode(total float64, maxTokensPerFile int) AssemblyMode {
	if maxTokensPerFile <= 0 || total <= float64(maxTokensPerFile) {
		return AssemblyModeSingle
	}
	return AssemblyModeMultiple
}
