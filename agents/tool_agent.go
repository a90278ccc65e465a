package agents

import (
	"context"
	"fmt"

	"github.com/bububa/atomic-crew/components"
	"github.com/bububa/atomic-crew/components/systemprompt"
	"github.com/bububa/atomic-crew/schema"
	"github.com/bububa/atomic-crew/tools"
)

// ToolAgent represent agent with tool callback.
// The start agent produces the tool input T, the tool runs, and the end agent
// answers the user input with the tool result in its context
type ToolAgent[I schema.Schema, T schema.Schema, O schema.Schema] struct {
	start *Agent[I, T]
	end   *Agent[I, O]
	tool  tools.AnonymousTool
	name  string
}

// NewToolAgent returns a new ToolAgent instance, both inner agents share the options
func NewToolAgent[I schema.Schema, T schema.Schema, O schema.Schema](options ...Option) *ToolAgent[I, T, O] {
	ret := &ToolAgent[I, T, O]{
		start: NewAgent[I, T](options...),
		end:   NewAgent[I, O](options...),
	}
	ret.name = ret.end.Name()
	return ret
}

func (t *ToolAgent[I, T, O]) SetTool(tool tools.AnonymousTool) *ToolAgent[I, T, O] {
	t.tool = tool
	return t
}

// Start returns the agent producing the tool input
func (t *ToolAgent[I, T, O]) Start() *Agent[I, T] {
	return t.start
}

// End returns the agent producing the final output
func (t *ToolAgent[I, T, O]) End() *Agent[I, O] {
	return t.end
}

func (t *ToolAgent[I, T, O]) Name() string {
	return t.name
}

func (t *ToolAgent[I, T, O]) SetName(name string) {
	t.name = name
}

func (t *ToolAgent[I, T, O]) ResetMemory() {
	t.start.ResetMemory()
	t.end.ResetMemory()
}

// Run runs the chat agent with the given user input synchronously.
// Tool results implementing systemprompt.ContextProvider are registered on the end agent
// system prompt, other results are added to its memory as a system message
func (t *ToolAgent[I, T, O]) Run(ctx context.Context, userInput *I, output *O, apiResp *components.LLMResponse) error {
	toolInput := new(T)
	if err := t.start.Run(ctx, userInput, toolInput, apiResp); err != nil {
		return err
	}
	if t.tool != nil {
		toolResult, err := t.tool.RunAnonymous(ctx, toolInput)
		if err != nil {
			return fmt.Errorf("tool %s: %w", t.tool.Title(), err)
		}
		switch v := toolResult.(type) {
		case systemprompt.ContextProvider:
			t.end.UnregisterSystemPromptContextProvider(v.Title())
			t.end.RegisterSystemPromptContextProvider(v)
		case schema.Schema:
			t.end.NewMessage(components.SystemRole, v)
		default:
			return fmt.Errorf("tool %s: %w", t.tool.Title(), ErrInvalidSchema)
		}
	}
	return t.end.Run(ctx, userInput, output, apiResp)
}

// RunForChain runs the chat agent with the given user input for chain.
func (t *ToolAgent[I, T, O]) RunForChain(ctx context.Context, userInput any, apiResp *components.LLMResponse) (any, error) {
	in, ok := userInput.(*I)
	if !ok {
		return nil, ErrInvalidSchema
	}
	out := new(O)
	if err := t.Run(ctx, in, out, apiResp); err != nil {
		return nil, err
	}
	return out, nil
}
