// Package domain defines the core business entities for llmdump.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - CrawledDocument: A page returned by the crawl provider
//   - Category: A named bucket of document URLs
//   - Session: A crawl result, its categories and its identifier
//
// It also holds the pure operations over those types: token estimation,
// sanitize, prune, split reconciliation and identifier sanitising. None of
// them fail or mutate their inputs.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
