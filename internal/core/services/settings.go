package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driven"
	"github.com/alexpineda/llmdump/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyLLMProvider       = "llm.provider"
	KeyLLMModel          = "llm.model"
	KeyLLMBaseURL        = "llm.base_url"
	KeyLLMAPIKey         = "llm.api_key"
	KeyLLMRequestsPerMin = "llm.requests_per_minute"
	KeyCrawlProvider     = "crawl.provider"
	KeyCrawlBaseURL      = "crawl.base_url"
	KeyCrawlAPIKey       = "crawl.api_key"
	KeyCrawlPageLimit    = "crawl.page_limit"
	KeyCrawlPollInterval = "crawl.poll_interval"
	KeyStorageBackend    = "storage.backend"
	KeyStorageDataDir    = "storage.data_dir"
	KeyExportMode        = "export.mode"
	KeyExportOutputDir   = "export.output_dir"
	KeyExportClean       = "export.clean"
	KeyExportMaxTokens   = "export.max_tokens_per_file"
)

// settingKind describes how a string value for a key is parsed.
type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindBool
)

// knownKeys lists every key Set accepts.
var knownKeys = map[string]settingKind{
	KeyLLMProvider:       kindString,
	KeyLLMModel:          kindString,
	KeyLLMBaseURL:        kindString,
	KeyLLMAPIKey:         kindString,
	KeyLLMRequestsPerMin: kindInt,
	KeyCrawlProvider:     kindString,
	KeyCrawlBaseURL:      kindString,
	KeyCrawlAPIKey:       kindString,
	KeyCrawlPageLimit:    kindInt,
	KeyCrawlPollInterval: kindInt,
	KeyStorageBackend:    kindString,
	KeyStorageDataDir:    kindString,
	KeyExportMode:        kindString,
	KeyExportOutputDir:   kindString,
	KeyExportClean:       kindBool,
	KeyExportMaxTokens:   kindInt,
}

// SettingKeys returns every settable key.
func SettingKeys() []string {
	return []string{
		KeyLLMProvider, KeyLLMModel, KeyLLMBaseURL, KeyLLMAPIKey, KeyLLMRequestsPerMin,
		KeyCrawlProvider, KeyCrawlBaseURL, KeyCrawlAPIKey, KeyCrawlPageLimit, KeyCrawlPollInterval,
		KeyStorageBackend, KeyStorageDataDir,
		KeyExportMode, KeyExportOutputDir, KeyExportClean, KeyExportMaxTokens,
	}
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(defaults.LLM.Provider)
	model := s.configStore.GetString(KeyLLMModel)
	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:          provider,
			Model:             model,
			BaseURL:           s.configStore.GetString(KeyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(KeyLLMAPIKey),
			RequestsPerMinute: s.getInt(KeyLLMRequestsPerMin, defaults.LLM.RequestsPerMinute),
		},
		Crawl: domain.CrawlSettings{
			Provider:            s.getCrawlProvider(defaults.Crawl.Provider),
			BaseURL:             s.getString(KeyCrawlBaseURL, defaults.Crawl.BaseURL),
			APIKey:              s.configStore.GetString(KeyCrawlAPIKey),
			PageLimit:           s.getInt(KeyCrawlPageLimit, defaults.Crawl.PageLimit),
			PollIntervalSeconds: s.getInt(KeyCrawlPollInterval, defaults.Crawl.PollIntervalSeconds),
		},
		Storage: domain.StorageSettings{
			Backend: s.getBackend(defaults.Storage.Backend),
			DataDir: s.getString(KeyStorageDataDir, defaults.Storage.DataDir),
		},
		Export: domain.ExportSettings{
			Mode:             s.getMode(defaults.Export.Mode),
			OutputDir:        s.getString(KeyExportOutputDir, defaults.Export.OutputDir),
			Clean:            s.getBool(KeyExportClean, defaults.Export.Clean),
			MaxTokensPerFile: s.getInt(KeyExportMaxTokens, defaults.Export.MaxTokensPerFile),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
		skip  bool
	}{
		{KeyLLMProvider, settings.LLM.Provider.String(), settings.LLM.Provider == ""},
		{KeyLLMModel, settings.LLM.Model, false},
		{KeyLLMBaseURL, settings.LLM.BaseURL, false},
		{KeyLLMAPIKey, settings.LLM.APIKey, settings.LLM.APIKey == ""},
		{KeyLLMRequestsPerMin, settings.LLM.RequestsPerMinute, false},
		{KeyCrawlProvider, string(settings.Crawl.Provider), false},
		{KeyCrawlBaseURL, settings.Crawl.BaseURL, false},
		{KeyCrawlAPIKey, settings.Crawl.APIKey, settings.Crawl.APIKey == ""},
		{KeyCrawlPageLimit, settings.Crawl.PageLimit, false},
		{KeyCrawlPollInterval, settings.Crawl.PollIntervalSeconds, false},
		{KeyStorageBackend, string(settings.Storage.Backend), false},
		{KeyStorageDataDir, settings.Storage.DataDir, settings.Storage.DataDir == ""},
		{KeyExportMode, settings.Export.Mode.String(), false},
		{KeyExportOutputDir, settings.Export.OutputDir, false},
		{KeyExportClean, settings.Export.Clean, false},
		{KeyExportMaxTokens, settings.Export.MaxTokensPerFile, false},
	}

	for _, v := range values {
		if v.skip {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set updates a single setting from its string form.
// The value is validated and converted to the key's type before storing.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}

	var typed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer: %w", key, domain.ErrInvalidInput)
		}
		typed = n
	case kindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s must be true or false: %w", key, domain.ErrInvalidInput)
		}
		typed = b
	default:
		if err := validateEnum(key, value); err != nil {
			return err
		}
		typed = value
	}

	return s.configStore.Set(key, typed)
}

func validateEnum(key, value string) error {
	valid := true
	switch key {
	case KeyLLMProvider:
		valid = domain.AIProvider(value).IsValid()
	case KeyCrawlProvider:
		valid = domain.CrawlProvider(value).IsValid()
	case KeyStorageBackend:
		valid = domain.StorageBackend(value).IsValid()
	case KeyExportMode:
		valid = domain.AssemblyMode(value).IsValid()
	}
	if !valid {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, domain.ErrInvalidInput)
	}
	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the current settings can run a crawl and export.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider is not configured (set %s): %w", KeyLLMProvider, domain.ErrLLMUnavailable)
	}
	if !settings.Crawl.IsConfigured() {
		return fmt.Errorf("crawl provider %q is not configured: %w", settings.Crawl.Provider, domain.ErrCrawlerUnavailable)
	}
	if !settings.Export.Mode.IsValid() {
		return fmt.Errorf("%q: %w", settings.Export.Mode, domain.ErrUnsupportedMode)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(KeyLLMProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getCrawlProvider(defaultVal domain.CrawlProvider) domain.CrawlProvider {
	provider := domain.CrawlProvider(s.configStore.GetString(KeyCrawlProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(KeyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getMode(defaultVal domain.AssemblyMode) domain.AssemblyMode {
	mode := domain.AssemblyMode(s.configStore.GetString(KeyExportMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}
