package domain

const unknownDescription = "Unknown"

// AssemblyMode selects how an export is split into files.
type AssemblyMode string

// Available assembly modes.
const (
	// AssemblyModeSingle writes every category into one file.
	AssemblyModeSingle AssemblyMode = "single"

	// AssemblyModeMultiple writes one file per non-empty category.
	AssemblyModeMultiple AssemblyMode = "multiple"
)

// IsValid returns true if the assembly mode is recognised.
func (m AssemblyMode) IsValid() bool {
	switch m {
	case AssemblyModeSingle, AssemblyModeMultiple:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m AssemblyMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m AssemblyMode) Description() string {
	switch m {
	case AssemblyModeSingle:
		return "Single file (all categories)"
	case AssemblyModeMultiple:
		return "One file per category"
	default:
		return unknownDescription
	}
}

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google's Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// CrawlProvider identifies a crawl provider.
type CrawlProvider string

// Available crawl providers.
const (
	// CrawlProviderFirecrawl is a Firecrawl-compatible HTTP API.
	CrawlProviderFirecrawl CrawlProvider = "firecrawl"

	// CrawlProviderLocal crawls from this machine.
	CrawlProviderLocal CrawlProvider = "local"
)

// IsValid returns true if the crawl provider is recognised.
func (p CrawlProvider) IsValid() bool {
	return p == CrawlProviderFirecrawl || p == CrawlProviderLocal
}

// StorageBackend identifies where sessions are persisted.
type StorageBackend string

// Available storage backends.
const (
	// StorageBackendFile stores JSON files in a directory per session.
	StorageBackendFile StorageBackend = "file"

	// StorageBackendSQLite stores the same JSON blobs in a SQLite database.
	StorageBackendSQLite StorageBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageBackendFile || b == StorageBackendSQLite
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible gateways).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// RequestsPerMinute throttles oracle calls. Zero means unthrottled.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// CrawlSettings holds crawl provider configuration.
type CrawlSettings struct {
	// Provider is the crawl provider.
	Provider CrawlProvider

	// BaseURL is the provider endpoint (firecrawl only).
	BaseURL string

	// APIKey is the provider API key (firecrawl only).
	APIKey string

	// PageLimit caps the number of pages fetched per crawl.
	PageLimit int

	// PollIntervalSeconds is how often job status is polled (firecrawl only).
	PollIntervalSeconds int
}

// IsConfigured returns true if the crawl provider is set up.
func (c CrawlSettings) IsConfigured() bool {
	switch c.Provider {
	case CrawlProviderLocal:
		return true
	case CrawlProviderFirecrawl:
		return c.APIKey != ""
	default:
		return false
	}
}

// StorageSettings holds session persistence configuration.
type StorageSettings struct {
	// Backend selects the SessionStore implementation.
	Backend StorageBackend

	// DataDir is the root directory for session data.
	DataDir string
}

// ExportSettings holds document assembly defaults.
type ExportSettings struct {
	// Mode is the default assembly mode.
	Mode AssemblyMode

	// OutputDir is where markdown files are written.
	OutputDir string

	// Clean runs each document through the cleanup oracle.
	Clean bool

	// MaxTokensPerFile is the budget used to suggest an assembly mode.
	MaxTokensPerFile int
}

// AppSettings holds all application settings.
type AppSettings struct {
	LLM     LLMSettings
	Crawl   CrawlSettings
	Storage StorageSettings
	Export  ExportSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured; users must pick a provider and key.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{},
		Crawl: CrawlSettings{
			Provider:            CrawlProviderFirecrawl,
			BaseURL:             "https://api.firecrawl.dev",
			PageLimit:           50,
			PollIntervalSeconds: 2,
		},
		Storage: StorageSettings{
			Backend: StorageBackendFile,
		},
		Export: ExportSettings{
			Mode:             AssemblyModeSingle,
			OutputDir:        "output",
			Clean:            false,
			MaxTokensPerFile: 100000,
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-2.0-flash",
	}
}
