package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClient_SendsModelMessagesAndMaxTokens(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "x", "object": "chat.completion", "model": "deepseek-chat",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "hi there!"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	c := NewOpenAI("secret", srv.URL, "deepseek-chat", 150, srv.Client())
	resp, err := c.Generate(context.Background(), []Message{{Role: "user", Content: "hello"}})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "deepseek-chat", got.Model)
	assert.Equal(t, 150, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[0].Content)

	assert.Equal(t, "hi there!", resp.Content)
	assert.Equal(t, 15, resp.TotalTokens)
}

func TestOpenAIClient_ProviderErrorIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "auth"}}`))
	}))
	defer srv.Close()

	c := NewOpenAI("wrong", srv.URL, "deepseek-chat", 150, srv.Client())
	_, err := c.Generate(context.Background(), []Message{{Role: "user", Content: "hello"}})
	assert.Error(t, err)
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "choices": []}`))
	}))
	defer srv.Close()

	c := NewOpenAI("k", srv.URL, "m", 10, srv.Client())
	_, err := c.Generate(context.Background(), []Message{{Role: "user", Content: "hello"}})
	assert.Error(t, err)
}

func TestFactory_UnknownProvider(t *testing.T) {
	f := &Factory{}
	_, err := f.CreateClient(context.Background(), "nope")
	assert.Error(t, err)
}
