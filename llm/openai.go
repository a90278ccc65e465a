package llm

import (
	"context"
	"errors"

	"github.com/bububa/instructor-go"
	"github.com/bububa/instructor-go/instructors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/atomic-crew/components"
)

type openaiBackend struct {
	clt *openai.Client
}

// FromOpenAI returns a structured output client backed by an openai client
func FromOpenAI(clt *openai.Client, opts ...Option) *Instructor {
	return newInstructor(&openaiBackend{clt: clt}, opts...)
}

func (b *openaiBackend) provider() Provider {
	return ProviderOpenAI
}

func (b *openaiBackend) chat(ctx context.Context, req *chatRequest, out any, opts []instructor.Option, apiResp *components.LLMResponse) error {
	chatReq := openaiRequest(req)
	var resp openai.ChatCompletionResponse
	err := instructors.FromOpenAI(b.clt, opts...).Chat(ctx, &chatReq, out, &resp)
	apiResp.FromOpenAI(&resp)
	if err != nil {
		return wrapOpenAIError(err)
	}
	return nil
}

// openaiRequest builds a fresh request for every call, the instructor appends
// the output schema to the system message in place
func openaiRequest(req *chatRequest) openai.ChatCompletionRequest {
	ret := openai.ChatCompletionRequest{
		Model:               req.Model,
		Temperature:         req.Temperature,
		MaxCompletionTokens: req.MaxTokens,
		Messages:            make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1),
	}
	if req.System != "" || req.Mode != instructor.ModePlainText {
		ret.Messages = append(ret.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.Messages {
		v := new(openai.ChatCompletionMessage)
		msg.ToOpenAI(v)
		ret.Messages = append(ret.Messages, *v)
	}
	return ret
}

func wrapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Provider: ProviderOpenAI, StatusCode: apiErr.HTTPStatusCode, Err: apiErr}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &StatusError{Provider: ProviderOpenAI, StatusCode: reqErr.HTTPStatusCode, Err: reqErr}
	}
	return err
}
