// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Crawler: Fetches the documents reachable from a URL
//   - Classifier: Groups document summaries into named categories
//   - IdentifierGenerator: Names a crawl with a short slug
//   - SessionStore: Crawl, category and identifier persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Cleaner: Rewrites document markdown before export. Without it, raw bodies are exported.
//   - LLMService: Language model access backing the oracle adapters.
//   - PromptStore: Custom prompt templates. Without it, built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
