package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ollamallm "github.com/alexpineda/llmdump/internal/adapters/driven/llm/ollama"
	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driven"
)

type stubLLM struct{ closed bool }

func (s *stubLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	return "", nil
}

func (s *stubLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	return "", nil
}

func (s *stubLLM) ModelName() string          { return "stub" }
func (s *stubLLM) Ping(context.Context) error { return nil }
func (s *stubLLM) Close() error               { s.closed = true; return nil }

type stubPrompts struct{}

func (stubPrompts) Load(name string) (string, error) { return "custom " + name, nil }
func (stubPrompts) Reload()                          {}

func newOllamaServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantNil  bool
	}{
		{name: "nil settings returns nil", settings: nil, wantNil: true},
		{name: "unconfigured settings returns nil", settings: &domain.LLMSettings{}, wantNil: true},
		{
			name:     "cloud provider without key returns nil",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI},
			wantNil:  true,
		},
		{
			name:     "unknown provider returns nil",
			settings: &domain.LLMSettings{Provider: "unknown", APIKey: "test-key"},
			wantNil:  true,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "llama3.2",
			},
		},
		{
			name:     "openai provider creates service",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "test-key", Model: "gpt-4o-mini"},
		},
		{
			name:     "anthropic provider creates service",
			settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "test-key"},
		},
		{
			name:     "gemini provider creates service",
			settings: &domain.LLMSettings{Provider: domain.AIProviderGemini, APIKey: "test-key"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(context.Background(), tt.settings)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.NotEmpty(t, svc.ModelName())
			_ = svc.Close()
		})
	}
}

func TestCreateLLMService_Throttled(t *testing.T) {
	settings := &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"}

	plain, err := CreateLLMService(context.Background(), settings)
	require.NoError(t, err)
	_, isOllama := plain.(*ollamallm.LLMService)
	assert.True(t, isOllama, "no rate limit keeps the provider service")

	settings.RequestsPerMinute = 30
	limited, err := CreateLLMService(context.Background(), settings)
	require.NoError(t, err)
	_, isOllama = limited.(*ollamallm.LLMService)
	assert.False(t, isOllama, "rate limit wraps the provider service")
	assert.Equal(t, "llama3.2", limited.ModelName())
}

func TestCreateAndValidateLLMService(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		svc, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{})
		require.NoError(t, err)
		assert.Nil(t, svc)
	})

	t.Run("reachable", func(t *testing.T) {
		srv := newOllamaServer(t, http.StatusOK)
		svc, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  srv.URL,
			Model:    "llama3.2",
		})
		require.NoError(t, err)
		require.NotNil(t, svc)
		_ = svc.Close()
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := newOllamaServer(t, http.StatusInternalServerError)
		svc, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  srv.URL,
		})
		require.Error(t, err)
		assert.Nil(t, svc)
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
		assert.Contains(t, err.Error(), "llmdump settings set")
	})
}

func TestNewOracles(t *testing.T) {
	t.Run("nil llm", func(t *testing.T) {
		o := NewOracles(nil, stubPrompts{})
		assert.Nil(t, o.LLM)
		assert.Nil(t, o.Classifier)
		assert.Nil(t, o.Identifier)
		assert.Nil(t, o.Cleaner)
		o.Close()
	})

	t.Run("with llm", func(t *testing.T) {
		llm := &stubLLM{}
		o := NewOracles(llm, stubPrompts{})
		assert.NotNil(t, o.Classifier)
		assert.NotNil(t, o.Identifier)
		assert.NotNil(t, o.Cleaner)

		o.Close()
		assert.True(t, llm.closed)
	})
}
