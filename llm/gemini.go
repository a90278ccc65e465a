package llm

import (
	"context"
	"errors"

	"github.com/bububa/instructor-go"
	"github.com/bububa/instructor-go/instructors"
	geminiinstructor "github.com/bububa/instructor-go/instructors/gemini"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	"github.com/bububa/atomic-crew/components"
)

type geminiBackend struct {
	clt *genai.Client
}

// FromGemini returns a structured output client backed by a gemini client.
// The instructor builds the generative model itself, so temperature and max tokens are model defaults
func FromGemini(clt *genai.Client, opts ...Option) *Instructor {
	return newInstructor(&geminiBackend{clt: clt}, opts...)
}

func (b *geminiBackend) provider() Provider {
	return ProviderGemini
}

func (b *geminiBackend) chat(ctx context.Context, req *chatRequest, out any, opts []instructor.Option, _ *components.LLMResponse) error {
	// no response is passed: the instructor dereferences the missing usage metadata of a failed call
	if err := instructors.FromGemini(b.clt, opts...).Chat(ctx, geminiRequest(req), out, nil); err != nil {
		return wrapGeminiError(err)
	}
	return nil
}

// geminiRequest merges same role turns, the last user turn is sent and the rest is chat history
func geminiRequest(req *chatRequest) *geminiinstructor.Request {
	ret := &geminiinstructor.Request{Model: req.Model}
	if req.System != "" {
		ret.System = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	history := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		content := msg.ToGemini()
		if l := len(history); l > 0 && history[l-1].Role == content.Role {
			history[l-1].Parts = append(history[l-1].Parts, content.Parts...)
			continue
		}
		history = append(history, content)
	}
	if l := len(history); l > 0 && history[l-1].Role == "user" {
		ret.Parts = history[l-1].Parts
		history = history[:l-1]
	} else {
		ret.Parts = []genai.Part{genai.Text("Continue.")}
	}
	if len(history) > 0 && history[0].Role != "user" {
		history = append([]*genai.Content{{Role: "user", Parts: []genai.Part{genai.Text("Begin.")}}}, history...)
	}
	ret.History = history
	return ret
}

func wrapGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &StatusError{Provider: ProviderGemini, StatusCode: apiErr.Code, Err: apiErr}
	}
	return err
}
