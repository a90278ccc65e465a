package llm

import (
	"context"
	"errors"

	"github.com/bububa/instructor-go"
	"github.com/bububa/instructor-go/instructors"
	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/cohere-ai/cohere-go/v2/core"

	"github.com/bububa/atomic-crew/components"
)

type cohereBackend struct {
	clt *cohereclient.Client
}

// FromCohere returns a structured output client backed by a cohere client
func FromCohere(clt *cohereclient.Client, opts ...Option) *Instructor {
	return newInstructor(&cohereBackend{clt: clt}, opts...)
}

func (b *cohereBackend) provider() Provider {
	return ProviderCohere
}

func (b *cohereBackend) chat(ctx context.Context, req *chatRequest, out any, opts []instructor.Option, apiResp *components.LLMResponse) error {
	chatReq := cohereRequest(req)
	if req.Mode == instructor.ModePlainText {
		// the cohere instructor only speaks JSON and tool calls
		resp, err := b.clt.Chat(ctx, chatReq)
		if err != nil {
			return wrapCohereError(err)
		}
		apiResp.FromCohere(resp)
		if text, ok := out.(*string); ok {
			*text = resp.Text
		}
		return nil
	}
	// no response is passed: the instructor dereferences the missing response meta of a failed call
	if err := instructors.FromCohere(b.clt, opts...).Chat(ctx, chatReq, out, nil); err != nil {
		return wrapCohereError(err)
	}
	return nil
}

// cohereRequest sends the last non assistant message as the message and the rest as chat history
func cohereRequest(req *chatRequest) *cohere.ChatRequest {
	temperature := float64(req.Temperature)
	ret := &cohere.ChatRequest{
		Temperature: &temperature,
		Message:     "Continue.",
	}
	if req.Model != "" {
		model := req.Model
		ret.Model = &model
	}
	if req.MaxTokens > 0 {
		maxTokens := req.MaxTokens
		ret.MaxTokens = &maxTokens
	}
	if req.System != "" {
		system := req.System
		ret.Preamble = &system
	}
	msgs := req.Messages
	if l := len(msgs); l > 0 && msgs[l-1].Role() != components.AssistantRole {
		ret.Message = msgs[l-1].StringifiedContent()
		msgs = msgs[:l-1]
	}
	for _, msg := range msgs {
		ret.ChatHistory = append(ret.ChatHistory, msg.ToCohere())
	}
	return ret
}

func wrapCohereError(err error) error {
	if code := cohereStatus(err); code != 0 {
		return &StatusError{Provider: ProviderCohere, StatusCode: code, Err: err}
	}
	return err
}

// cohereStatus returns the http status of the first cohere api error in the err tree.
// Typed cohere errors embed *core.APIError without unwrapping to it
func cohereStatus(err error) int {
	switch v := err.(type) {
	case nil:
		return 0
	case *core.APIError:
		return v.StatusCode
	case *cohere.BadRequestError:
		return v.StatusCode
	case *cohere.UnauthorizedError:
		return v.StatusCode
	case *cohere.ForbiddenError:
		return v.StatusCode
	case *cohere.NotFoundError:
		return v.StatusCode
	case *cohere.UnprocessableEntityError:
		return v.StatusCode
	case *cohere.TooManyRequestsError:
		return v.StatusCode
	case *cohere.InvalidTokenError:
		return v.StatusCode
	case *cohere.ClientClosedRequestError:
		return v.StatusCode
	case *cohere.InternalServerError:
		return v.StatusCode
	case *cohere.NotImplementedError:
		return v.StatusCode
	case *cohere.ServiceUnavailableError:
		return v.StatusCode
	case *cohere.GatewayTimeoutError:
		return v.StatusCode
	case interface{ Unwrap() []error }:
		for _, e := range v.Unwrap() {
			if code := cohereStatus(e); code != 0 {
				return code
			}
		}
		return 0
	}
	return cohereStatus(errors.Unwrap(err))
}
