package crew

import (
	"context"
	"strings"

	"github.com/bububa/atomic-crew/components"
)

// summaryWords is the number of description words kept in TaskOutput.Summary
const summaryWords = 10

// TaskConfig task settings
type TaskConfig struct {
	name           string
	description    string
	expectedOutput string
	agent          *Agent
	context        []*Task
}

// Task is a unit of work assigned to one agent
type Task struct {
	TaskConfig
	output *TaskOutput
}

// NewTask returns a new Task
func NewTask(description string, expectedOutput string, opts ...TaskOption) *Task {
	ret := &Task{
		TaskConfig: TaskConfig{
			description:    description,
			expectedOutput: expectedOutput,
		},
	}
	for _, opt := range opts {
		opt(&ret.TaskConfig)
	}
	return ret
}

// Name returns the task name, the summary of its description when unnamed
func (t *Task) Name() string {
	if t.name != "" {
		return t.name
	}
	return summarize(t.description)
}

func (t *Task) Description() string {
	return t.description
}

func (t *Task) ExpectedOutput() string {
	return t.expectedOutput
}

func (t *Task) Agent() *Agent {
	return t.agent
}

func (t *Task) SetAgent(agent *Agent) {
	t.agent = agent
}

// Context returns the tasks whose outputs are given to this task
func (t *Task) Context() []*Task {
	return t.context
}

// Output returns the output of the last execution, nil before
func (t *Task) Output() *TaskOutput {
	return t.output
}

// Execute runs the task with its agent alone
func (t *Task) Execute(ctx context.Context, taskContext string) (*TaskOutput, error) {
	if t.agent == nil {
		return nil, ErrTaskWithoutAgent
	}
	raw, usage, err := t.agent.Execute(ctx, t, taskContext)
	if err != nil {
		return nil, err
	}
	t.output = newTaskOutput(t, raw, usage)
	return t.output, nil
}

// TaskOutput is the result of a task
type TaskOutput struct {
	Description string               `json:"description"`
	Summary     string               `json:"summary"`
	Raw         string               `json:"raw"`
	Agent       string               `json:"agent"`
	Usage       *components.LLMUsage `json:"usage,omitempty"`
}

func newTaskOutput(t *Task, raw string, usage *components.LLMUsage) *TaskOutput {
	return &TaskOutput{
		Description: t.description,
		Summary:     summarize(t.description),
		Raw:         raw,
		Agent:       t.agent.role,
		Usage:       usage,
	}
}

func (o TaskOutput) String() string {
	return o.Raw
}

// summarize keeps the first words of a description
func summarize(description string) string {
	words := strings.Fields(description)
	if len(words) > summaryWords {
		words = words[:summaryWords]
	}
	return strings.Join(words, " ") + "..."
}

type TaskOption func(*TaskConfig)

func WithTaskName(name string) TaskOption {
	return func(c *TaskConfig) {
		c.name = name
	}
}

func WithAgent(agent *Agent) TaskOption {
	return func(c *TaskConfig) {
		c.agent = agent
	}
}

// WithContext sets the tasks whose outputs are given to this task as context
func WithContext(tasks ...*Task) TaskOption {
	return func(c *TaskConfig) {
		c.context = append(c.context, tasks...)
	}
}
