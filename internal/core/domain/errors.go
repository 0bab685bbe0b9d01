package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input,
	// such as an empty document list handed to an oracle.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoSession indicates there is no current session to operate on.
	// Run 'llmdump crawl' to start one.
	ErrNoSession = errors.New("no current session")

	// ErrUnsupportedMode indicates an unknown assembly mode.
	ErrUnsupportedMode = errors.New("unsupported assembly mode")

	// ErrUnsupportedType indicates an unknown provider or backend type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Categorisation, identifier generation and cleanup need it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrCrawlerUnavailable indicates the crawl provider is not configured.
	ErrCrawlerUnavailable = errors.New("crawl provider unavailable")

	// ErrOracleResponse indicates an oracle returned output that could not be parsed.
	ErrOracleResponse = errors.New("unparseable oracle response")
)
