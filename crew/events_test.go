package crew

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bububa/atomic-crew/llm/llmtest"
	"github.com/bububa/atomic-crew/schema"
	"github.com/bububa/atomic-crew/tools"
)

func TestVerboseEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	echo := newEchoTool(nil)
	client := llmtest.New(action("Echo", map[string]any{"text": "hi"}), final("done"))
	agent := NewAgent("Helper", "help", "You help.", WithLLM(client), WithTools(tools.NewAnonymous[echoInput, schema.String](echo)))
	c := New(WithAgents(agent), WithTasks(NewTask("Say hi", "x", WithAgent(agent))), WithVerbose(true), WithLogger(zap.New(core)))
	_, err := c.Kickoff(context.Background())
	require.NoError(t, err)

	for _, msg := range []string{"crew kickoff", "task started", "agent started task", "using tool", "agent final answer", "task completed", "crew finished"} {
		assert.Equal(t, 1, logs.FilterMessage(msg).Len(), msg)
	}
	tool := logs.FilterMessage("using tool").All()[0]
	assert.Equal(t, "Helper", tool.ContextMap()["agent"])
	assert.Equal(t, "Echo", tool.ContextMap()["tool"])
}

func TestQuietByDefault(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	client := llmtest.New(final("done"))
	agent := NewAgent("Helper", "help", "You help.", WithLLM(client))
	_, err := New(WithAgents(agent), WithTasks(NewTask("Say hi", "x", WithAgent(agent))), WithLogger(zap.New(core))).Kickoff(context.Background())
	require.NoError(t, err)
	assert.Zero(t, logs.Len())
}

func TestAgentVerboseOnly(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	client := llmtest.New(final("done"))
	agent := NewAgent("Helper", "help", "You help.", WithLLM(client), WithAgentVerbose(true), WithAgentLogger(zap.New(core)))
	_, err := New(WithAgents(agent), WithTasks(NewTask("Say hi", "x", WithAgent(agent)))).Kickoff(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("agent final answer").Len())
	assert.Zero(t, logs.FilterMessage("crew kickoff").Len())
}
