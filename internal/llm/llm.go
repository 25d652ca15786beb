package llm

import "context"

// Model is one synchronous request/response call to a hosted language model.
// Implementations issue exactly one outbound call per Complete and never
// retry. They return *ConfigurationError when no credential is configured and
// *UpstreamError when the call fails or returns a non-success status.
type Model interface {
	Complete(ctx context.Context, req *Request) (string, error)
}

type Request struct {
	// Operation names the template the prompt was rendered from; adapters use
	// it for logging only.
	Operation string
	Prompt    string
	Image     *Image
	MaxTokens int
	// Temperature is nil when the provider default should be used.
	Temperature *float64
}

type Image struct {
	Data     []byte
	MimeType string
}

// Float returns a pointer to v, for Request.Temperature.
func Float(v float64) *float64 {
	return &v
}

// NormaliseMIME maps MIME types onto the set every provider accepts. Unknown
// types are coerced to jpeg.
func NormaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
