package claude

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/fridgechef/internal/llm"
)

type Option func(*options)

type options struct {
	clientOpts []anthropic.ClientOption
}

// WithBaseURL points the client at a different Messages API root, e.g. a
// proxy or a test server.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.clientOpts = append(o.clientOpts, anthropic.WithBaseURL(url))
	}
}

type ClaudeModel struct {
	apiKey string
	model  string
	client *anthropic.Client
}

func NewClaudeModel(apiKey, model string, opts ...Option) *ClaudeModel {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &ClaudeModel{
		apiKey: apiKey,
		model:  model,
		client: anthropic.NewClient(apiKey, o.clientOpts...),
	}
}

// buildMessages constructs the Messages API payload: the image block (if any)
// followed by the instruction text.
func buildMessages(req *llm.Request) []anthropic.Message {
	content := make([]anthropic.MessageContent, 0, 2)
	if req.Image != nil {
		content = append(content, anthropic.NewImageMessageContent(
			anthropic.NewMessageContentSource(
				anthropic.MessagesContentSourceTypeBase64,
				llm.NormaliseMIME(req.Image.MimeType),
				base64.StdEncoding.EncodeToString(req.Image.Data),
			),
		))
	}
	content = append(content, anthropic.NewTextMessageContent(req.Prompt))
	return []anthropic.Message{{Role: anthropic.RoleUser, Content: content}}
}

func (m *ClaudeModel) Complete(ctx context.Context, req *llm.Request) (string, error) {
	if m.apiKey == "" {
		return "", &llm.ConfigurationError{Reason: "CLAUDE_API_KEY is not set"}
	}

	body := anthropic.MessagesRequest{
		Model:     anthropic.Model(m.model),
		MaxTokens: req.MaxTokens,
		Messages:  buildMessages(req),
	}
	if req.Temperature != nil {
		t := float32(*req.Temperature)
		body.Temperature = &t
	}

	resp, err := m.client.CreateMessages(ctx, body)
	if err != nil {
		return "", upstreamError(err)
	}

	for _, blk := range resp.Content {
		if blk.Type == anthropic.MessagesContentTypeText && blk.GetText() != "" {
			return blk.GetText(), nil
		}
	}
	return "", &llm.UpstreamError{Message: "No content in Claude response"}
}

func upstreamError(err error) error {
	upErr := &llm.UpstreamError{Err: err}

	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		upErr.Message = apiErr.Message
	}
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		upErr.StatusCode = reqErr.StatusCode
	}
	if upErr.Message == "" && upErr.StatusCode == 0 {
		upErr.Message = "failed to call claude"
	}
	return upErr
}
