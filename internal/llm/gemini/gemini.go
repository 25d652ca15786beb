package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/vbonduro/fridgechef/internal/llm"
)

type GeminiModel struct {
	model  string
	client *genai.Client
}

// NewGeminiModel builds a Gemini API backed model. With an empty apiKey no
// client is created and every Complete reports a configuration error.
func NewGeminiModel(ctx context.Context, apiKey, model, baseURL string) (*GeminiModel, error) {
	m := &GeminiModel{model: model}
	if apiKey == "" {
		return m, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	m.client = client
	return m, nil
}

func buildContents(req *llm.Request) []*genai.Content {
	parts := make([]*genai.Part, 0, 2)
	if req.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, llm.NormaliseMIME(req.Image.MimeType)))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func (m *GeminiModel) Complete(ctx context.Context, req *llm.Request) (string, error) {
	if m.client == nil {
		return "", &llm.ConfigurationError{Reason: "GEMINI_API_KEY is not set"}
	}

	config := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*req.Temperature))
	}

	res, err := m.client.Models.GenerateContent(ctx, m.model, buildContents(req), config)
	if err != nil {
		return "", upstreamError(err)
	}
	return res.Text(), nil
}

func upstreamError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &llm.UpstreamError{StatusCode: apiErr.Code, Message: apiErr.Message, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &llm.UpstreamError{StatusCode: apiErrPtr.Code, Message: apiErrPtr.Message, Err: err}
	}
	return &llm.UpstreamError{Message: "failed to call gemini", Err: err}
}
