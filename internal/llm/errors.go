package llm

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a missing model credential or backend.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "model not configured: " + e.Reason
}

// InvalidInputError reports a missing or malformed input, detected before any
// network call.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UpstreamError reports a failed model call. StatusCode is zero when the
// call never produced an HTTP response (network failure, timeout).
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("model returned status %d", e.StatusCode)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "model call failed"
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ParseFailure reports model output that could not be decoded. Text holds the
// offending output for diagnostics; it must never be shown to users.
type ParseFailure struct {
	Text string
	Err  error
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("failed to parse model output: %v", e.Err)
}

func (e *ParseFailure) Unwrap() error {
	return e.Err
}

// UserMessage renders err as a message suitable for end users. Raw model
// output and credentials never appear in it.
func UserMessage(err error) string {
	var (
		cfgErr   *ConfigurationError
		inputErr *InvalidInputError
		upErr    *UpstreamError
		parseErr *ParseFailure
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		return "The recipe service is not configured. Please try again later."
	case errors.As(err, &inputErr):
		return inputErr.Error()
	case errors.As(err, &upErr):
		return upErr.Error() + ". Please try again."
	case errors.As(err, &parseErr):
		return "Could not understand the model response"
	default:
		return "Unknown error occurred"
	}
}
