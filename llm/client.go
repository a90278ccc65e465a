// Package llm is a structured output client for chat completion providers.
//
// A Client sends a chat request and decodes the reply into a Go value. Providers
// are driven by github.com/bububa/instructor-go: when the value is not a
// *schema.String the instructor runs in JSON mode, appends the JSON schema of
// its type to the system prompt, decodes and validates the reply and asks again
// until MaxRetries is reached. Transient api errors are retried with backoff
// around the instructor call.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/bububa/atomic-crew/components"
)

// Provider llm provider name
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderCohere    Provider = "cohere"
	ProviderGemini    Provider = "gemini"
)

var (
	// ErrEmptyResponse is returned when the provider returns no content
	ErrEmptyResponse = errors.New("llm: empty response")
	// ErrMissingAPIKey is returned when the provider api key is not configured
	ErrMissingAPIKey = errors.New("llm: missing api key")
	// ErrUnknownProvider is returned for unsupported providers
	ErrUnknownProvider = errors.New("llm: unknown provider")
)

// Request is a chat request
type Request struct {
	// Model llm model
	Model string
	// Temperature Temperature for response generation, typically ranging from 0 to 1.
	Temperature float32
	// MaxTokens Maximum number of tokens allowed in the response
	MaxTokens int
	// Messages the conversation including system messages
	Messages []components.Message
}

// Client is a structured output chat client
type Client interface {
	Provider() Provider
	// Chat sends the request and decodes the reply into out.
	// apiResp may be nil, usage is accumulated over retries otherwise
	Chat(ctx context.Context, req *Request, out any, apiResp *components.LLMResponse) error
}

// RetryError is returned when the model kept replying with invalid output
type RetryError struct {
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("llm: invalid response after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error {
	return e.Err
}

// StatusError is a provider API error with its HTTP status
type StatusError struct {
	Provider   Provider
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm: %s api error (status %d): %v", e.Provider, e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Transient reports whether the request may succeed when retried
func (e *StatusError) Transient() bool {
	return e.StatusCode == 429 || e.StatusCode == 408 || e.StatusCode >= 500
}
