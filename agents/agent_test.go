package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/atomic-crew/components"
	"github.com/bububa/atomic-crew/components/systemprompt/cot"
	"github.com/bububa/atomic-crew/llm/llmtest"
	"github.com/bububa/atomic-crew/schema"
	"github.com/bububa/atomic-crew/tools"
)

func TestAgentRun(t *testing.T) {
	clt := llmtest.New(`{"chat_message":"2024-01-01"}`)
	mem := components.NewMemory(10)
	mem.NewMessage(components.AssistantRole, schema.NewOutput("Hello! How can I assist you today?"))
	var started, ended bool
	agent := NewAgent[schema.Input, schema.Output](
		WithClient(clt),
		WithMemory(mem),
		WithModel("gpt-4o-mini"),
		WithTemperature(0.5),
		WithMaxTokens(1000),
		WithName("chatbot"),
	)
	agent.SetStartHook(func(context.Context, *Agent[schema.Input, schema.Output], *schema.Input) { started = true })
	agent.SetEndHook(func(_ context.Context, _ *Agent[schema.Input, schema.Output], _ *schema.Input, out *schema.Output, _ *components.LLMResponse) {
		ended = out.ChatMessage != ""
	})
	output := new(schema.Output)
	apiResp := new(components.LLMResponse)
	require.NoError(t, agent.Run(context.Background(), schema.NewInput("What day is it?"), output, apiResp))
	assert.Equal(t, "2024-01-01", output.ChatMessage)
	assert.True(t, started)
	assert.True(t, ended)
	assert.Equal(t, "chatbot", agent.Name())
	assert.Equal(t, 3, agent.Memory().MessageCount())

	reqs := clt.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "gpt-4o-mini", reqs[0].Model)
	assert.Equal(t, float32(0.5), reqs[0].Temperature)
	assert.Equal(t, 1000, reqs[0].MaxTokens)
	require.Len(t, reqs[0].Messages, 3)
	assert.Equal(t, components.SystemRole, reqs[0].Messages[0].Role())
	assert.Equal(t, cot.New().Generate(), reqs[0].Messages[0].StringifiedContent())
	assert.Equal(t, "What day is it?", reqs[0].Messages[2].StringifiedContent())

	agent.ResetMemory()
	assert.Equal(t, 1, agent.Memory().MessageCount())
}

func TestAgentRunError(t *testing.T) {
	clt := llmtest.New()
	var hookErr error
	agent := NewAgent[schema.Input, schema.Output](WithClient(clt))
	agent.SetErrorHook(func(_ context.Context, _ *Agent[schema.Input, schema.Output], _ *schema.Input, _ *components.LLMResponse, err error) {
		hookErr = err
	})
	err := agent.Run(context.Background(), schema.NewInput("hi"), new(schema.Output), nil)
	assert.ErrorIs(t, err, llmtest.ErrExhausted)
	assert.ErrorIs(t, hookErr, llmtest.ErrExhausted)
	assert.Equal(t, 1, agent.Memory().MessageCount())
}

func TestChainRun(t *testing.T) {
	first := NewAgent[schema.Input, schema.Output](WithClient(llmtest.New(`{"chat_message":"draft"}`)), WithName("writer"))
	second := NewAgent[schema.Output, schema.Output](WithClient(llmtest.New(`{"chat_message":"final"}`)), WithName("editor"))
	chain := NewChain[schema.Input, schema.Output](first, second)
	out := new(schema.Output)
	resps, err := chain.Run(context.Background(), schema.NewInput("write"), out)
	require.NoError(t, err)
	assert.Equal(t, "final", out.ChatMessage)
	assert.Len(t, resps, 2)

	apiResp := new(components.LLMResponse)
	second.ResetMemory()
	first.ResetMemory()
	first.SetClient(llmtest.New(`{"chat_message":"draft"}`))
	second.SetClient(llmtest.New(`{"chat_message":"final"}`))
	ret, err := chain.RunForChain(context.Background(), schema.NewInput("write"), apiResp)
	require.NoError(t, err)
	assert.Equal(t, "final", ret.(*schema.Output).ChatMessage)
	assert.Equal(t, int64(20), apiResp.Usage.InputTokens)
}

func TestChainErrors(t *testing.T) {
	agent := NewAgent[schema.Input, schema.Output](WithClient(llmtest.New(`{"chat_message":"x"}`)))
	chain := NewChain[schema.Input, schema.Output](agent)
	_, err := chain.RunForChain(context.Background(), schema.NewOutput("wrong"), new(components.LLMResponse))
	assert.ErrorIs(t, err, ErrInvalidSchema)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = chain.Run(ctx, schema.NewInput("x"), new(schema.Output))
	assert.ErrorIs(t, err, context.Canceled)

	mismatch := NewChain[schema.Input, schema.Input](agent)
	_, err = mismatch.Run(context.Background(), schema.NewInput("x"), new(schema.Input))
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

type queryInput struct {
	schema.Base
	Queries []string `json:"queries" validate:"required,min=1"`
}

type lookupResult struct {
	schema.Base
	Facts string `json:"facts"`
}

func (r lookupResult) Title() string { return "Lookup results" }

func (r lookupResult) Info() string { return r.Facts }

type lookupTool struct {
	tools.Config
	seen []string
}

func (t *lookupTool) Run(_ context.Context, in *queryInput, out *lookupResult) error {
	t.seen = append(t.seen, in.Queries...)
	out.Facts = "facts about " + in.Queries[0]
	return nil
}

func TestToolAgent(t *testing.T) {
	clt := llmtest.New(
		`{"queries":["ai tutors"]}`,
		`{"chat_message":"AI tutors are growing"}`,
		`{"queries":["ai grading"]}`,
		`{"chat_message":"AI grading is growing"}`,
	)
	lookup := &lookupTool{}
	lookup.SetTitle("Lookup")
	agent := NewToolAgent[schema.Input, queryInput, schema.Output](WithClient(clt), WithName("researcher"))
	agent.SetTool(tools.NewAnonymous[queryInput, lookupResult](lookup))
	assert.Equal(t, "researcher", agent.Name())

	output := new(schema.Output)
	apiResp := new(components.LLMResponse)
	require.NoError(t, agent.Run(context.Background(), schema.NewInput("What is new?"), output, apiResp))
	assert.Equal(t, "AI tutors are growing", output.ChatMessage)
	assert.Equal(t, []string{"ai tutors"}, lookup.seen)
	assert.EqualValues(t, 30, apiResp.Usage.TotalTokens())

	reqs := clt.Requests()
	require.Len(t, reqs, 2)
	assert.NotContains(t, reqs[0].Messages[0].StringifiedContent(), "Lookup results")
	assert.Contains(t, reqs[1].Messages[0].StringifiedContent(), "## Lookup results\nfacts about ai tutors")

	ret, err := agent.RunForChain(context.Background(), schema.NewInput("And grading?"), new(components.LLMResponse))
	require.NoError(t, err)
	assert.Equal(t, "AI grading is growing", ret.(*schema.Output).ChatMessage)
	sys := clt.Requests()[3].Messages[0].StringifiedContent()
	assert.Contains(t, sys, "facts about ai grading")
	assert.NotContains(t, sys, "facts about ai tutors")

	_, err = agent.RunForChain(context.Background(), "wrong", nil)
	assert.ErrorIs(t, err, ErrInvalidSchema)
}
