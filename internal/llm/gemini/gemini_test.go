package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fridgechef/internal/llm"
)

func TestGeminiComplete(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent"), r.URL.Path)
		assert.Equal(t, "gm-test", r.Header.Get("x-goog-api-key"))
		_ = json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"[{\"name\":\"basil\",\"confidence\":0.6}]"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	model, err := NewGeminiModel(context.Background(), "gm-test", "gemini-2.5-flash", server.URL)
	require.NoError(t, err)

	text, err := model.Complete(context.Background(), &llm.Request{
		Prompt:      "list ingredients",
		Image:       &llm.Image{Data: []byte{0x89, 0x50}, MimeType: "image/png"},
		MaxTokens:   1000,
		Temperature: llm.Float(0.2),
	})
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"basil","confidence":0.6}]`, text)

	contents := got["contents"].([]any)
	require.Len(t, contents, 1)
	parts := contents[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 2)
	inline := parts[0].(map[string]any)["inlineData"].(map[string]any)
	assert.Equal(t, "image/png", inline["mimeType"])
	assert.Equal(t, "list ingredients", parts[1].(map[string]any)["text"])

	generation := got["generationConfig"].(map[string]any)
	assert.EqualValues(t, 1000, generation["maxOutputTokens"])
	assert.InDelta(t, 0.2, generation["temperature"], 0.0001)
}

func TestGeminiCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	model, err := NewGeminiModel(context.Background(), "gm-test", "gemini-2.5-flash", server.URL)
	require.NoError(t, err)

	_, err = model.Complete(context.Background(), &llm.Request{Prompt: "x"})

	var upErr *llm.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusTooManyRequests, upErr.StatusCode)
	assert.Equal(t, "Resource has been exhausted", upErr.Message)
}

func TestGeminiCompleteMissingKey(t *testing.T) {
	model, err := NewGeminiModel(context.Background(), "", "gemini-2.5-flash", "")
	require.NoError(t, err)

	_, err = model.Complete(context.Background(), &llm.Request{Prompt: "x"})

	var cfgErr *llm.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}
