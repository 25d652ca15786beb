package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/vbonduro/fridgechef/internal/llm"
)

type OpenAIModel struct {
	apiKey string
	model  string
	client openai.Client
}

// NewOpenAIModel returns a Chat Completions backed model. baseURL may be empty
// to use the public API. The SDK's automatic retries are disabled; each
// Complete is a single request.
func NewOpenAIModel(apiKey, model, baseURL string) *OpenAIModel {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIModel{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClient(opts...),
	}
}

// dataURL encodes an image as the inline data URL the vision API accepts.
func dataURL(img *llm.Image) string {
	return fmt.Sprintf("data:%s;base64,%s", llm.NormaliseMIME(img.MimeType), base64.StdEncoding.EncodeToString(img.Data))
}

func buildParams(model string, req *llm.Request) openai.ChatCompletionNewParams {
	var msg openai.ChatCompletionMessageParamUnion
	if req.Image != nil {
		msg = openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(req.Prompt),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL:    dataURL(req.Image),
				Detail: "high",
			}),
		})
	} else {
		msg = openai.UserMessage(req.Prompt)
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{msg},
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	return params
}

func (m *OpenAIModel) Complete(ctx context.Context, req *llm.Request) (string, error) {
	if m.apiKey == "" {
		return "", &llm.ConfigurationError{Reason: "OPENAI_API_KEY is not set"}
	}

	completion, err := m.client.Chat.Completions.New(ctx, buildParams(m.model, req))
	if err != nil {
		return "", upstreamError(err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", &llm.UpstreamError{Message: "No content in OpenAI response"}
	}
	return completion.Choices[0].Message.Content, nil
}

func upstreamError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &llm.UpstreamError{StatusCode: apiErr.StatusCode, Message: apiErr.Message, Err: err}
	}
	return &llm.UpstreamError{Message: "failed to call openai", Err: err}
}
