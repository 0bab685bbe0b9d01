package anthropic

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

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	svc, err := NewLLMService(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc, err := NewLLMService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
}

func TestChat_SendsSystemAndHeaders(t *testing.T) {
	var got messagesRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"hello "},{"type":"text","text":"there"}]}`))
	})

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
	}, driven.ChatOptions{})
	require.NoError(t, err)

	assert.Equal(t, "hello there", out)
	assert.Equal(t, "be brief", got.System)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestGenerate_JSONPrefill(t *testing.T) {
	var got messagesRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"\"identifier\":\"docs\"}"}]}`))
	})

	out, err := svc.Generate(context.Background(), "name it", driven.GenerateOptions{JSON: true})
	require.NoError(t, err)

	assert.Equal(t, `{"identifier":"docs"}`, out)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.Equal(t, "{", got.Messages[1].Content)
}

func TestGenerate_ErrorBody(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	})

	_, err := svc.Generate(context.Background(), "x", driven.GenerateOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "invalid x-api-key")
}

func TestGenerate_BadRequestIsNotUnavailable(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad"}}`))
	})

	_, err := svc.Generate(context.Background(), "x", driven.GenerateOptions{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}
