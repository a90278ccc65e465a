package agents

import (
	"context"
	"fmt"

	"github.com/bububa/atomic-crew/components"
	"github.com/bububa/atomic-crew/schema"
)

// Chain agents chain
type Chain[I schema.Schema, O schema.Schema] struct {
	name   string
	agents []ChainableAgent
}

// NewChain returns a new Chain instance
func NewChain[I schema.Schema, O schema.Schema](agents ...ChainableAgent) *Chain[I, O] {
	return &Chain[I, O]{
		agents: agents,
	}
}

func (c *Chain[I, O]) Name() string {
	return c.name
}

func (c *Chain[I, O]) SetName(name string) {
	c.name = name
}

// Run runs the chat agents with the given user input synchronously.
// Each agent receives the previous agent output, the last output is copied to output.
func (c *Chain[I, O]) Run(ctx context.Context, input *I, output *O) ([]components.LLMResponse, error) {
	apiRespList := make([]components.LLMResponse, 0, len(c.agents))
	var (
		in  any = input
		out any = input
	)
	for idx, agent := range c.agents {
		if err := ctx.Err(); err != nil {
			return apiRespList, err
		}
		apiResp := new(components.LLMResponse)
		ret, err := agent.RunForChain(ctx, in, apiResp)
		if err != nil {
			return apiRespList, fmt.Errorf("chain step %d (%s): %w", idx, agent.Name(), err)
		}
		in = ret
		out = ret
		apiRespList = append(apiRespList, *apiResp)
	}
	outO, ok := out.(*O)
	if !ok {
		return apiRespList, ErrInvalidSchema
	}
	*output = *outO
	return apiRespList, nil
}

// RunForChain runs the chain as a step of another chain
func (c *Chain[I, O]) RunForChain(ctx context.Context, input any, apiResp *components.LLMResponse) (any, error) {
	in, ok := input.(*I)
	if !ok {
		return nil, ErrInvalidSchema
	}
	out := new(O)
	apiRespList, err := c.Run(ctx, in, out)
	if err != nil {
		return nil, err
	}
	for _, v := range apiRespList {
		if v.Usage == nil {
			continue
		}
		if apiResp.Usage == nil {
			apiResp.Usage = new(components.LLMUsage)
		}
		apiResp.Usage.Merge(v.Usage)
	}
	return out, nil
}
