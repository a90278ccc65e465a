package llm

import (
	"context"
	"fmt"
	"os"

	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	cohereoption "github.com/cohere-ai/cohere-go/v2/option"
	"github.com/google/generative-ai-go/genai"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
)

// NewFromEnv returns a Client for provider configured from environment variables.
//
//	openai:    OPENAI_API_KEY, OPENAI_API_BASE_URL
//	anthropic: ANTHROPIC_API_KEY, ANTHROPIC_API_BASE_URL
//	cohere:    COHERE_API_KEY, COHERE_API_BASE_URL
//	gemini:    GEMINI_API_KEY, GEMINI_API_BASE_URL
func NewFromEnv(provider Provider, opts ...Option) (*Instructor, error) {
	switch provider {
	case ProviderAnthropic:
		authToken := os.Getenv("ANTHROPIC_API_KEY")
		if authToken == "" {
			return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY", ErrMissingAPIKey)
		}
		clientOpts := make([]anthropic.ClientOption, 0, 1)
		if baseURL := os.Getenv("ANTHROPIC_API_BASE_URL"); baseURL != "" {
			clientOpts = append(clientOpts, anthropic.WithBaseURL(baseURL))
		}
		return FromAnthropic(anthropic.NewClient(authToken, clientOpts...), opts...), nil
	case ProviderCohere:
		authToken := os.Getenv("COHERE_API_KEY")
		if authToken == "" {
			return nil, fmt.Errorf("%w: COHERE_API_KEY", ErrMissingAPIKey)
		}
		// transient errors are retried by the Instructor backoff
		clientOpts := []cohereoption.RequestOption{
			cohereoption.WithToken(authToken),
			cohereoption.WithMaxAttempts(1),
		}
		if baseURL := os.Getenv("COHERE_API_BASE_URL"); baseURL != "" {
			clientOpts = append(clientOpts, cohereoption.WithBaseURL(baseURL))
		}
		return FromCohere(cohereclient.NewClient(clientOpts...), opts...), nil
	case ProviderGemini:
		authToken := os.Getenv("GEMINI_API_KEY")
		if authToken == "" {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingAPIKey)
		}
		clientOpts := []option.ClientOption{option.WithAPIKey(authToken)}
		if baseURL := os.Getenv("GEMINI_API_BASE_URL"); baseURL != "" {
			clientOpts = append(clientOpts, option.WithEndpoint(baseURL))
		}
		clt, err := genai.NewClient(context.Background(), clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("llm: gemini client: %w", err)
		}
		return FromGemini(clt, opts...), nil
	case ProviderOpenAI, "":
		authToken := os.Getenv("OPENAI_API_KEY")
		if authToken == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingAPIKey)
		}
		cfg := openai.DefaultConfig(authToken)
		if baseURL := os.Getenv("OPENAI_API_BASE_URL"); baseURL != "" {
			cfg.BaseURL = baseURL
		}
		return FromOpenAI(openai.NewClientWithConfig(cfg), opts...), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
}
