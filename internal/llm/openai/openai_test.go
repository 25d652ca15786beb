package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fridgechef/internal/llm"
)

func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	}
}

func TestOpenAIComplete(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse("```json\n[{\"name\":\"egg\",\"confidence\":0.8}]\n```"))
	}))
	defer server.Close()

	model := NewOpenAIModel("sk-test", "gpt-4o", server.URL)

	text, err := model.Complete(context.Background(), &llm.Request{
		Operation:   llm.OpDetectIngredients,
		Prompt:      "list ingredients",
		Image:       &llm.Image{Data: []byte{0xFF, 0xD8}, MimeType: "image/jpeg"},
		MaxTokens:   1000,
		Temperature: llm.Float(0.2),
	})
	require.NoError(t, err)
	assert.Equal(t, "```json\n[{\"name\":\"egg\",\"confidence\":0.8}]\n```", text)

	assert.Equal(t, "gpt-4o", got["model"])
	assert.EqualValues(t, 1000, got["max_tokens"])
	assert.InDelta(t, 0.2, got["temperature"], 0.0001)

	messages := got["messages"].([]any)
	require.Len(t, messages, 1)
	parts := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	image := parts[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/jpeg;base64,/9g=", image["url"])
	assert.Equal(t, "high", image["detail"])
}

func TestOpenAICompleteTextOnly(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse("[]"))
	}))
	defer server.Close()

	model := NewOpenAIModel("sk-test", "gpt-4o", server.URL)

	text, err := model.Complete(context.Background(), &llm.Request{Prompt: "recipes please", MaxTokens: 2000})
	require.NoError(t, err)
	assert.Equal(t, "[]", text)

	_, hasTemp := got["temperature"]
	assert.False(t, hasTemp)
	msg := got["messages"].([]any)[0].(map[string]any)
	assert.Equal(t, "recipes please", msg["content"])
}

func TestOpenAICompleteAPIErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
	}))
	defer server.Close()

	model := NewOpenAIModel("sk-test", "gpt-4o", server.URL)

	_, err := model.Complete(context.Background(), &llm.Request{Prompt: "x", MaxTokens: 10})
	require.Error(t, err)

	var upErr *llm.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusTooManyRequests, upErr.StatusCode)
	assert.Equal(t, "Rate limit reached", upErr.Message)
	assert.EqualValues(t, 1, calls.Load())
}

func TestOpenAICompleteEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse(""))
	}))
	defer server.Close()

	model := NewOpenAIModel("sk-test", "gpt-4o", server.URL)

	_, err := model.Complete(context.Background(), &llm.Request{Prompt: "x"})

	var upErr *llm.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, "No content in OpenAI response", upErr.Message)
}

func TestOpenAICompleteMissingKey(t *testing.T) {
	model := NewOpenAIModel("", "gpt-4o", "")

	_, err := model.Complete(context.Background(), &llm.Request{Prompt: "x"})

	var cfgErr *llm.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}
