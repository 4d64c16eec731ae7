package explain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicTestClient(t *testing.T, handler http.HandlerFunc) *AnthropicClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultAnthropicConfig("test-key")
	cfg.BaseURL = srv.URL
	cfg.Timeout = 10 * time.Second
	return NewAnthropicClientWithConfig(cfg)
}

func TestAnthropicClient_Complete(t *testing.T) {
	var gotReq anthropicRequest
	client := anthropicTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := map[string]interface{}{
			"content": []map[string]string{
				{"type": "text", "text": "Here is the explanation."},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	got, err := client.Complete(context.Background(), "explain snap")

	require.NoError(t, err)
	assert.Equal(t, "Here is the explanation.", got)
	assert.Equal(t, "claude-3-5-sonnet-20240620", gotReq.Model)
	assert.Equal(t, 1000, gotReq.MaxTokens)
	assert.Zero(t, gotReq.Temperature, "sampling temperature is pinned to zero")
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "explain snap", gotReq.Messages[0].Content)
}

func TestAnthropicClient_NoAPIKey(t *testing.T) {
	client := NewAnthropicClient("")

	_, err := client.Complete(context.Background(), "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not configured")
}

func TestAnthropicClient_ServerError(t *testing.T) {
	client := anthropicTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"api_error","message":"boom"}}`, http.StatusInternalServerError)
	})

	_, err := client.Complete(context.Background(), "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestAnthropicClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	client := anthropicTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": "ok"}},
		})
	})

	got, err := client.Complete(context.Background(), "x")

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAnthropicClient_APIError(t *testing.T) {
	client := anthropicTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"type": "invalid_request_error", "message": "bad model"},
		})
	})

	_, err := client.Complete(context.Background(), "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad model")
}

func TestAnthropicClient_EmptyContent(t *testing.T) {
	client := anthropicTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"content": []interface{}{}})
	})

	_, err := client.Complete(context.Background(), "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completion returned")
}

func TestNewClient_ProviderSelection(t *testing.T) {
	t.Run("defaults to anthropic", func(t *testing.T) {
		c, err := NewClient(ClientConfig{Provider: "", APIKey: "k"})
		require.NoError(t, err)
		assert.IsType(t, &AnthropicClient{}, c)
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		_, err := NewClient(ClientConfig{Provider: "openai", APIKey: "k"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown explanation provider")
	})

	t.Run("gemini requires key", func(t *testing.T) {
		_, err := NewClient(ClientConfig{Provider: "gemini"})
		require.Error(t, err)
	})
}
