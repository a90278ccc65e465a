package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/bububa/atomic-crew/components"
	"github.com/bububa/atomic-crew/schema"
)

func TestGeminiRequest(t *testing.T) {
	req := geminiRequest(&chatRequest{
		Model:  "gemini-1.5-flash",
		System: "system prompt",
		Messages: []components.Message{
			*components.NewMessage(components.AssistantRole, schema.String("hello")),
			*components.NewMessage(components.UserRole, schema.String("task")),
			*components.NewMessage(components.AssistantRole, schema.String("step")),
			*components.NewMessage(components.ToolRole, schema.String("observation")),
			*components.NewMessage(components.UserRole, schema.String("more")),
		},
	})
	assert.Equal(t, "gemini-1.5-flash", req.Model)
	require.NotNil(t, req.System)
	assert.Equal(t, []genai.Part{genai.Text("system prompt")}, req.System.Parts)
	assert.Equal(t, []genai.Part{genai.Text("observation"), genai.Text("more")}, req.Parts)
	require.Len(t, req.History, 4)
	assert.Equal(t, "user", req.History[0].Role)
	assert.Equal(t, []genai.Part{genai.Text("Begin.")}, req.History[0].Parts)
	assert.Equal(t, "model", req.History[1].Role)
	assert.Equal(t, "user", req.History[2].Role)
	assert.Equal(t, "model", req.History[3].Role)
}

func TestGeminiRequestEndsWithModel(t *testing.T) {
	req := geminiRequest(&chatRequest{Messages: []components.Message{
		*components.NewMessage(components.UserRole, schema.String("task")),
		*components.NewMessage(components.AssistantRole, schema.String("draft")),
	}})
	assert.Nil(t, req.System)
	assert.Equal(t, []genai.Part{genai.Text("Continue.")}, req.Parts)
	require.Len(t, req.History, 2)
	assert.Equal(t, "user", req.History[0].Role)
}

func TestWrapGeminiError(t *testing.T) {
	err := wrapGeminiError(errors.Join(errors.New("hit max retry attempts"), fmt.Errorf("generate: %w", &googleapi.Error{Code: http.StatusTooManyRequests})))
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, ProviderGemini, statusErr.Provider)
	assert.True(t, statusErr.Transient())

	err = wrapGeminiError(&googleapi.Error{Code: http.StatusForbidden})
	require.True(t, errors.As(err, &statusErr))
	assert.False(t, statusErr.Transient())

	plain := errors.New("plain")
	assert.Equal(t, plain, wrapGeminiError(plain))
}
