package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driven"
)

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(LLMConfig{})
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
}

func TestGenerate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"response":"ok","done":true}`))
	}))
	defer srv.Close()

	svc := NewLLMService(LLMConfig{BaseURL: srv.URL, Model: "tiny"})
	out, err := svc.Generate(context.Background(), "hello", driven.GenerateOptions{JSON: true, MaxTokens: 10})
	require.NoError(t, err)

	assert.Equal(t, "ok", out)
	assert.Equal(t, "tiny", got.Model)
	assert.Equal(t, "json", got.Format)
	assert.False(t, got.Stream)
	require.NotNil(t, got.Options)
	assert.Equal(t, 10, got.Options.NumPredict)
}

func TestChat(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"hi back"},"done":true}`))
	}))
	defer srv.Close()

	svc := NewLLMService(LLMConfig{BaseURL: srv.URL})
	out, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "s"},
		{Role: "user", Content: "hi"},
	}, driven.ChatOptions{})
	require.NoError(t, err)

	assert.Equal(t, "hi back", out)
	assert.Len(t, got.Messages, 2)
	assert.Nil(t, got.Options)
	assert.Empty(t, got.Format)
}

func TestGenerate_ModelMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer srv.Close()

	svc := NewLLMService(LLMConfig{BaseURL: srv.URL})
	_, err := svc.Generate(context.Background(), "x", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestPing_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	svc := NewLLMService(LLMConfig{BaseURL: url})
	assert.ErrorIs(t, svc.Ping(context.Background()), domain.ErrLLMUnavailable)
}
