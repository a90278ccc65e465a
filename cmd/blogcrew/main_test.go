package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bububa/atomic-crew/components"
	"github.com/bububa/atomic-crew/llm"
	"github.com/bububa/atomic-crew/llm/llmtest"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("BLOGCREW_PROVIDER", "")
	t.Setenv("BLOGCREW_MODEL", "")
	t.Setenv("SERPER_API_KEY", "test-key")
	var out bytes.Buffer
	prev := stdout
	stdout = &out
	t.Cleanup(func() { stdout = prev })

	cli := CLI{}
	parser, err := kong.New(&cli, kong.Name("blogcrew"), kong.Exit(func(int) {}))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	if err != nil {
		return out.String(), err
	}
	err = ctx.Run(&cli)
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "--year", "2025")
	require.NoError(t, err)
	assert.Contains(t, out, "configuration is valid: 3 agents, 3 tasks, sequential process, openai/gpt-4o")
	assert.Contains(t, out, "1. research -> Research Specialist")
	assert.Contains(t, out, "3. review -> Editorial Reviewer")

	out, err = execute(t, "validate", "--provider", "gemini", "--model", "gemini-1.5-flash")
	require.NoError(t, err)
	assert.Contains(t, out, "gemini/gemini-1.5-flash")

	_, err = execute(t, "validate", "--provider", "mistral")
	assert.Error(t, err)

	_, err = execute(t, "validate", "--search", "searxng")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "role: Research Specialist")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "blogcrew version "))
}

func TestRunCommand(t *testing.T) {
	post := "## [Khanmigo](https://www.khanmigo.ai)\n- Tutors students\n- Scales tutoring"
	client := llmtest.NewResponder(func(*llm.Request) llmtest.Reply {
		return llmtest.Reply{Content: llmtest.JSON(map[string]any{"thought": "done", "final_answer": post})}
	})
	prev := newClient
	newClient = func(provider llm.Provider, _ *zap.Logger) (llm.Client, error) {
		assert.Equal(t, llm.ProviderAnthropic, provider)
		return client, nil
	}
	t.Cleanup(func() { newClient = prev })
	prevCounter := newCounter
	newCounter = func(string) components.TokenCounter { return components.EstimateCounter }
	t.Cleanup(func() { newCounter = prevCounter })

	output := filepath.Join(t.TempDir(), "post.md")
	out, err := execute(t, "run", "--provider", "anthropic", "--model", "claude-3-5-haiku-latest", "--no-verbose", "--log-level", "error", "--output", output)
	require.NoError(t, err)
	assert.Equal(t, Separator+"\n"+post+"\n", out)

	written, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, post, string(written))

	reqs := client.Requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, "claude-3-5-haiku-latest", reqs[0].Model)
}

func TestRunCommandMissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := execute(t, "run", "--no-verbose", "--log-level", "error")
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
}

func TestResearchCommandRequiresSearxngURL(t *testing.T) {
	prev := newClient
	newClient = func(llm.Provider, *zap.Logger) (llm.Client, error) {
		return llmtest.New(), nil
	}
	t.Cleanup(func() { newClient = prev })
	t.Setenv("SEARXNG_URL", "")
	_, err := execute(t, "research", "--search", "searxng", "--no-verbose", "What is new?")
	assert.Error(t, err)
}
