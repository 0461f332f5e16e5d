package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/codelie14/zillasec/internal/common"
)

func newOpenRouterServer(t *testing.T, status int, body string, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.Unmarshal(raw, &req))
		assert.Equal(t, "meta-llama/llama-3.3-70b-instruct:free", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, "user", req.Messages[1].Role)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestFactory(baseURL string) *ProviderFactory {
	cfg := common.NewDefaultConfig()
	cfg.OpenRouter.BaseURL = baseURL
	return NewProviderFactory(cfg, APIKeys{OpenRouter: "test-key"}, arbor.NewLogger())
}

func TestOpenRouterGenerateContent(t *testing.T) {
	var calls int32
	srv := newOpenRouterServer(t, http.StatusOK, `{
		"id": "gen-1",
		"object": "chat.completion",
		"created": 1,
		"model": "meta-llama/llama-3.3-70b-instruct:free",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Voici: {\"a\":1}"}}]
	}`, &calls)

	factory := newTestFactory(srv.URL)
	resp, err := factory.GenerateContent(context.Background(), &ContentRequest{
		SystemInstruction: "analyse",
		UserContent:       "[]",
	})
	require.NoError(t, err)
	assert.Equal(t, `Voici: {"a":1}`, resp.Text)
	assert.Equal(t, ProviderOpenRouter, resp.Provider)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOpenRouterServerErrorIsSingleAttempt(t *testing.T) {
	var calls int32
	srv := newOpenRouterServer(t, http.StatusServiceUnavailable, `{"error":{"message":"overloaded"}}`, &calls)

	factory := newTestFactory(srv.URL)
	_, err := factory.GenerateContent(context.Background(), &ContentRequest{SystemInstruction: "analyse", UserContent: "[]"})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestMissingAPIKey(t *testing.T) {
	factory := NewProviderFactory(common.NewDefaultConfig(), APIKeys{}, arbor.NewLogger())
	_, err := factory.GenerateContent(context.Background(), &ContentRequest{UserContent: "[]"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestDetectProvider(t *testing.T) {
	factory := NewProviderFactory(common.NewDefaultConfig(), APIKeys{}, arbor.NewLogger())

	assert.Equal(t, ProviderClaude, factory.DetectProvider("claude-sonnet-4-20250514"))
	assert.Equal(t, ProviderGemini, factory.DetectProvider("gemini/gemini-3-flash"))
	assert.Equal(t, ProviderOpenRouter, factory.DetectProvider("openrouter/meta-llama/llama-3.3-70b-instruct:free"))
	assert.Equal(t, ProviderOpenRouter, factory.DetectProvider(""))
	assert.Equal(t, "meta-llama/llama-3.3-70b-instruct:free", factory.NormalizeModel("openrouter/meta-llama/llama-3.3-70b-instruct:free"))
}
