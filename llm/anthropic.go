package llm

import (
	"context"
	"errors"

	"github.com/bububa/instructor-go"
	"github.com/bububa/instructor-go/instructors"
	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/bububa/atomic-crew/components"
)

// defaultAnthropicMaxTokens is sent when the request has no limit, the messages api requires one
const defaultAnthropicMaxTokens = 4096

type anthropicBackend struct {
	clt *anthropic.Client
}

// FromAnthropic returns a structured output client backed by an anthropic client
func FromAnthropic(clt *anthropic.Client, opts ...Option) *Instructor {
	return newInstructor(&anthropicBackend{clt: clt}, opts...)
}

func (b *anthropicBackend) provider() Provider {
	return ProviderAnthropic
}

func (b *anthropicBackend) chat(ctx context.Context, req *chatRequest, out any, opts []instructor.Option, apiResp *components.LLMResponse) error {
	chatReq := anthropicRequest(req)
	var resp anthropic.MessagesResponse
	err := instructors.FromAnthropic(b.clt, opts...).Chat(ctx, &chatReq, out, &resp)
	apiResp.FromAnthropic(&resp)
	if err != nil {
		return wrapAnthropicError(err)
	}
	return nil
}

func anthropicRequest(req *chatRequest) anthropic.MessagesRequest {
	temperature := req.Temperature
	ret := anthropic.MessagesRequest{
		Model:       anthropic.Model(req.Model),
		System:      req.System,
		Temperature: &temperature,
		MaxTokens:   req.MaxTokens,
		Messages:    mergeAnthropicMessages(req.Messages),
	}
	if ret.MaxTokens <= 0 {
		ret.MaxTokens = defaultAnthropicMaxTokens
	}
	return ret
}

// mergeAnthropicMessages converts messages and joins consecutive messages of the same role,
// the conversation starts with a user turn
func mergeAnthropicMessages(msgs []components.Message) []anthropic.Message {
	ret := make([]anthropic.Message, 0, len(msgs))
	for _, msg := range msgs {
		var v anthropic.Message
		msg.ToAnthropic(&v)
		if l := len(ret); l > 0 && ret[l-1].Role == v.Role {
			prev := ret[l-1].Content[0].GetText()
			ret[l-1].Content = []anthropic.MessageContent{anthropic.NewTextMessageContent(prev + "\n\n" + v.Content[0].GetText())}
			continue
		}
		ret = append(ret, v)
	}
	if len(ret) > 0 && ret[0].Role != anthropic.RoleUser {
		ret = append([]anthropic.Message{anthropic.NewUserTextMessage("Begin.")}, ret...)
	}
	return ret
}

func wrapAnthropicError(err error) error {
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return &StatusError{Provider: ProviderAnthropic, StatusCode: reqErr.StatusCode, Err: reqErr}
	}
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		status := 400
		switch string(apiErr.Type) {
		case "rate_limit_error":
			status = 429
		case "overloaded_error":
			status = 529
		case "api_error":
			status = 500
		}
		return &StatusError{Provider: ProviderAnthropic, StatusCode: status, Err: apiErr}
	}
	return err
}
