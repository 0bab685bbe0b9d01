// Package ai provides factory functions for creating the model-backed
// adapters: the LLM service for the configured provider and the oracles
// built on it.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/alexpineda/llmdump/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/alexpineda/llmdump/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/alexpineda/llmdump/internal/adapters/driven/llm/ollama"
	openaillm "github.com/alexpineda/llmdump/internal/adapters/driven/llm/openai"
	"github.com/alexpineda/llmdump/internal/adapters/driven/llm/throttle"
	"github.com/alexpineda/llmdump/internal/adapters/driven/oracle"
	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// fixHint is appended to configuration errors.
const fixHint = "run 'llmdump settings set llm.provider <name>' to fix"

// Oracles bundles the model-backed collaborators of the curation and
// export services. All fields are nil when no LLM is configured.
type Oracles struct {
	LLM        driven.LLMService
	Classifier driven.Classifier
	Identifier driven.IdentifierGenerator
	Cleaner    driven.Cleaner
}

// Close releases the underlying LLM service.
func (o *Oracles) Close() {
	if o.LLM != nil {
		o.LLM.Close()
	}
}

// NewOracles builds the classifier, identifier generator and cleaner on
// top of llm. Each gets prompts as its prompt store when it is non-nil.
// A nil llm yields empty Oracles.
func NewOracles(llm driven.LLMService, prompts driven.PromptStore) *Oracles {
	if llm == nil {
		return &Oracles{}
	}

	classifier := oracle.NewClassifier(llm)
	identifier := oracle.NewIdentifierGenerator(llm)
	cleaner := oracle.NewCleaner(llm)

	if prompts != nil {
		for _, aware := range []driven.PromptStoreAware{classifier, identifier, cleaner} {
			aware.SetPromptStore(prompts)
		}
	}

	return &Oracles{
		LLM:        llm,
		Classifier: classifier,
		Identifier: identifier,
		Cleaner:    cleaner,
	}
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns nil without error when no provider is configured.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w; %s", domain.ErrLLMUnavailable, err, fixHint)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w); %s", domain.ErrLLMUnavailable, err, fixHint)
	}

	return svc, nil
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
// Returns nil when nothing is configured.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	return svc.Ping(ctx)
}

// CreateLLMService creates the LLM service for the configured provider,
// rate limited to settings.RequestsPerMinute. Returns nil when no provider
// is configured.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderOpenAI:
		svc, err = openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderAnthropic:
		svc, err = anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderGemini:
		svc, err = geminillm.NewLLMService(ctx, geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	return throttle.Wrap(svc, settings.RequestsPerMinute), nil
}
