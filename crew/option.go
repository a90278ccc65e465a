package crew

import (
	"go.uber.org/zap"

	"github.com/bububa/atomic-crew/components"
)

type Option func(*Config)

func WithAgents(agents ...*Agent) Option {
	return func(c *Config) {
		c.agents = append(c.agents, agents...)
	}
}

func WithTasks(tasks ...*Task) Option {
	return func(c *Config) {
		c.tasks = append(c.tasks, tasks...)
	}
}

func WithProcess(p Process) Option {
	return func(c *Config) {
		c.process = p
	}
}

// WithVerbose logs agent, task and tool events
func WithVerbose(verbose bool) Option {
	return func(c *Config) {
		c.verbose = verbose
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// WithTokenCounter sets the counter used to trim task contexts
func WithTokenCounter(counter components.TokenCounter) Option {
	return func(c *Config) {
		c.counter = counter
	}
}

// WithMaxContextTokens sets the task context budget, n <= 0 disables trimming
func WithMaxContextTokens(n int) Option {
	return func(c *Config) {
		c.maxContextTokens = n
	}
}

// WithToolCache toggles the per kickoff tool result cache
func WithToolCache(enabled bool) Option {
	return func(c *Config) {
		c.cacheTools = enabled
	}
}
