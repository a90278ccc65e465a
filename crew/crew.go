// Package crew runs a list of tasks against a team of role playing agents.
//
// Agents reason in JSON steps: each step either calls one of the agent tools or
// carries the final answer. Agents allowed to delegate get two extra tools to hand
// work or questions to their coworkers. Tasks run sequentially and every task
// receives the outputs it depends on as context.
package crew

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bububa/atomic-crew/components"
)

// DefaultMaxContextTokens is the default token budget of a task context
const DefaultMaxContextTokens = 8000

// Config crew settings
type Config struct {
	agents           []*Agent
	tasks            []*Task
	process          Process
	verbose          bool
	logger           *zap.Logger
	counter          components.TokenCounter
	maxContextTokens int
	cacheTools       bool
}

// Crew is a team of agents running a list of tasks
type Crew struct {
	Config
	mu    sync.Mutex
	cache *toolCache
}

// New returns a new Crew, the process defaults to Sequential
func New(opts ...Option) *Crew {
	ret := &Crew{
		Config: Config{
			process:          Sequential,
			maxContextTokens: DefaultMaxContextTokens,
			cacheTools:       true,
		},
	}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.logger == nil {
		ret.logger = zap.NewNop()
	}
	if ret.counter == nil {
		ret.counter = components.EstimateCounter
	}
	return ret
}

func (c *Crew) Agents() []*Agent {
	return c.agents
}

func (c *Crew) Tasks() []*Task {
	return c.tasks
}

func (c *Crew) Process() Process {
	return c.process
}

// Validate checks the crew can be kicked off
func (c *Crew) Validate() error {
	if c.process != Sequential {
		return fmt.Errorf("%w: %q", ErrUnsupportedProcess, c.process)
	}
	if len(c.tasks) == 0 {
		return ErrNoTasks
	}
	members := make(map[*Agent]struct{}, len(c.agents))
	for _, a := range c.agents {
		members[a] = struct{}{}
	}
	position := make(map[*Task]int, len(c.tasks))
	for idx, t := range c.tasks {
		position[t] = idx
	}
	for idx, t := range c.tasks {
		if t.agent == nil {
			return fmt.Errorf("%w: task %d (%s)", ErrTaskWithoutAgent, idx, t.Name())
		}
		if _, ok := members[t.agent]; !ok {
			return fmt.Errorf("%w: task %d (%s) agent %s", ErrAgentNotInCrew, idx, t.Name(), t.agent.role)
		}
		for _, dep := range t.context {
			if pos, ok := position[dep]; !ok || pos >= idx {
				return fmt.Errorf("%w: task %d (%s) depends on %s", ErrContextOrder, idx, t.Name(), dep.Name())
			}
		}
	}
	return nil
}

// Kickoff runs the tasks and returns the crew output, the last task output being the result
func (c *Crew) Kickoff(ctx context.Context) (*CrewOutput, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cacheTools {
		c.cache = newToolCache()
	} else {
		c.cache = nil
	}
	id := uuid.NewString()
	logger := c.events().With(zap.String("crew", id))
	logger.Info("crew kickoff",
		zap.Int("agents", len(c.agents)),
		zap.Int("tasks", len(c.tasks)),
		zap.String("process", string(c.process)),
	)
	outputs, usage, err := c.runSequential(ctx, logger)
	if err != nil {
		logger.Error("crew failed", zap.Error(err))
		return nil, err
	}
	ret := &CrewOutput{
		ID:          id,
		TasksOutput: outputs,
		Usage:       usage,
	}
	if len(outputs) > 0 {
		ret.Raw = outputs[len(outputs)-1].Raw
	}
	logger.Info("crew finished",
		zap.Int64("input_tokens", usage.InputTokens),
		zap.Int64("output_tokens", usage.OutputTokens),
	)
	return ret, nil
}

func (c *Crew) events() *zap.Logger {
	if !c.verbose {
		return zap.NewNop()
	}
	return c.logger
}

// CrewOutput is the result of a crew kickoff
type CrewOutput struct {
	ID          string               `json:"id"`
	Raw         string               `json:"raw"`
	TasksOutput []*TaskOutput        `json:"tasks_output"`
	Usage       *components.LLMUsage `json:"usage,omitempty"`
}

func (o CrewOutput) String() string {
	return o.Raw
}
