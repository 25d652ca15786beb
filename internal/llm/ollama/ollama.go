package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/vbonduro/fridgechef/internal/llm"
)

type OllamaModel struct {
	host   string
	model  string
	client *http.Client
}

func NewOllamaModel(host, model string) *OllamaModel {
	return &OllamaModel{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: &http.Client{},
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Images  []string       `json:"images,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

func (m *OllamaModel) Complete(ctx context.Context, req *llm.Request) (string, error) {
	if m.host == "" {
		return "", &llm.ConfigurationError{Reason: "OLLAMA_HOST is not set"}
	}

	body := generateRequest{
		Model:  m.model,
		Prompt: req.Prompt,
		Stream: false,
	}
	if req.Image != nil {
		body.Images = []string{base64.StdEncoding.EncodeToString(req.Image.Data)}
	}
	options := map[string]any{}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if req.Temperature != nil {
		options["temperature"] = *req.Temperature
	}
	if len(options) > 0 {
		body.Options = options
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return "", &llm.UpstreamError{Message: "failed to call ollama", Err: err}
	}
	defer resp.Body.Close()

	var respBody struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	decodeErr := json.NewDecoder(resp.Body).Decode(&respBody)

	if resp.StatusCode != http.StatusOK {
		return "", &llm.UpstreamError{StatusCode: resp.StatusCode, Message: respBody.Error}
	}
	if decodeErr != nil {
		return "", &llm.UpstreamError{Message: "failed to decode ollama response", Err: decodeErr}
	}
	return respBody.Response, nil
}
