package crew

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bububa/atomic-crew/components"
)

// Process is the policy a crew runs its tasks with
type Process string

const (
	// Sequential runs tasks one after the other in declaration order
	Sequential Process = "sequential"
	// Hierarchical lets a manager agent plan and delegate the tasks. Not supported
	Hierarchical Process = "hierarchical"
)

const contextSeparator = "\n\n----------\n\n"

// runSequential executes the tasks in order, each with the context it depends on
func (c *Crew) runSequential(ctx context.Context, logger *zap.Logger) ([]*TaskOutput, *components.LLMUsage, error) {
	usage := new(components.LLMUsage)
	outputs := make([]*TaskOutput, 0, len(c.tasks))
	produced := make(map[*Task]*TaskOutput, len(c.tasks))
	var previous *TaskOutput
	for idx, task := range c.tasks {
		if err := ctx.Err(); err != nil {
			return outputs, usage, err
		}
		taskContext := c.taskContext(task, produced, previous)
		logger.Info("task started",
			zap.Int("index", idx),
			zap.String("task", task.Name()),
			zap.String("agent", task.agent.role),
		)
		raw, taskUsage, err := task.agent.execute(ctx, &job{
			description:    task.description,
			expectedOutput: task.expectedOutput,
			context:        taskContext,
			coworkers:      c.agents,
			cache:          c.cache,
			logger:         c.logger,
			verbose:        c.verbose,
		})
		usage.Merge(taskUsage)
		if err != nil {
			return outputs, usage, fmt.Errorf("task %d (%s): %w", idx, task.Name(), err)
		}
		output := newTaskOutput(task, raw, taskUsage)
		task.output = output
		produced[task] = output
		outputs = append(outputs, output)
		previous = output
		logger.Info("task completed",
			zap.Int("index", idx),
			zap.String("task", task.Name()),
			zap.Int64("tokens", taskUsage.TotalTokens()),
		)
	}
	return outputs, usage, nil
}

// taskContext joins the outputs of the task context, or uses the previous output when the task declares none.
// The result is trimmed to the crew context token budget
func (c *Crew) taskContext(task *Task, produced map[*Task]*TaskOutput, previous *TaskOutput) string {
	var parts []string
	if len(task.context) > 0 {
		for _, dep := range task.context {
			if out, ok := produced[dep]; ok && out.Raw != "" {
				parts = append(parts, out.Raw)
			}
		}
	} else if previous != nil && previous.Raw != "" {
		parts = append(parts, previous.Raw)
	}
	return components.TruncateTokens(c.counter, strings.Join(parts, contextSeparator), c.maxContextTokens)
}
