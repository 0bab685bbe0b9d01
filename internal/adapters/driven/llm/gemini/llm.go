// Package gemini provides an LLM service adapter for Google's Gemini API
// using the genai SDK.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL string

	// Model is the model to use (default: gemini-2.0-flash).
	Model string

	// Timeout bounds each request (default: 120s).
	Timeout time.Duration
}

// LLMService wraps a genai client.
type LLMService struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required: %w", domain.ErrLLMUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &LLMService{client: client, model: cfg.Model, timeout: cfg.Timeout}, nil
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	config := buildConfig(opts.MaxTokens, opts.Temperature, opts.StopWords, opts.JSON)
	return s.generate(ctx, contents, config)
}

// Chat conducts a multi-turn conversation. System messages become the
// system instruction and assistant turns map to the model role.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	config := buildConfig(opts.MaxTokens, opts.Temperature, nil, opts.JSON)

	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			system = append(system, msg.Content)
		case "assistant":
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	return s.generate(ctx, contents, config)
}

func buildConfig(maxTokens int, temperature float64, stop []string, jsonOut bool) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{StopSequences: stop}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}
	if temperature > 0 {
		config.Temperature = genai.Ptr(float32(temperature))
	}
	if jsonOut {
		config.ResponseMIMEType = "application/json"
	}
	return config
}

func (s *LLMService) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: no response content returned")
	}
	return text, nil
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping fetches the model's metadata, which checks the key and the model
// name without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.client.Models.Get(ctx, s.model, nil); err != nil {
		return fmt.Errorf("gemini: ping failed: %w: %w", domain.ErrLLMUnavailable, err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
