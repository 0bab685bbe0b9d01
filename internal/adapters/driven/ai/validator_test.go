package ai

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alexpineda/llmdump/internal/core/domain"
)

func TestConfigValidator_ValidateLLM(t *testing.T) {
	v := NewConfigValidator()

	assert.NoError(t, v.ValidateLLM(nil))
	assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{}))

	ok := newOllamaServer(t, http.StatusOK)
	assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: ok.URL}))

	down := newOllamaServer(t, http.StatusServiceUnavailable)
	assert.Error(t, v.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: down.URL}))
}
