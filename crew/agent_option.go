package crew

import (
	"go.uber.org/zap"

	"github.com/bububa/atomic-crew/llm"
	"github.com/bububa/atomic-crew/tools"
)

type AgentOption func(*AgentConfig)

func WithTools(list ...tools.AnonymousTool) AgentOption {
	return func(c *AgentConfig) {
		c.tools = append(c.tools, list...)
	}
}

func WithDelegation(allow bool) AgentOption {
	return func(c *AgentConfig) {
		c.allowDelegation = allow
	}
}

func WithAgentVerbose(verbose bool) AgentOption {
	return func(c *AgentConfig) {
		c.verbose = verbose
	}
}

// WithMaxIter sets the number of steps before the agent is asked for its final answer
func WithMaxIter(n int) AgentOption {
	return func(c *AgentConfig) {
		c.maxIter = n
	}
}

func WithLLM(clt llm.Client) AgentOption {
	return func(c *AgentConfig) {
		c.client = clt
	}
}

func WithModel(model string) AgentOption {
	return func(c *AgentConfig) {
		c.model = model
	}
}

func WithTemperature(temperature float32) AgentOption {
	return func(c *AgentConfig) {
		c.temperature = temperature
	}
}

func WithMaxTokens(n int) AgentOption {
	return func(c *AgentConfig) {
		c.maxTokens = n
	}
}

// WithAgentLogger sets the logger receiving the agent events when verbose
func WithAgentLogger(l *zap.Logger) AgentOption {
	return func(c *AgentConfig) {
		c.logger = l
	}
}
