package blog

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/atomic-crew/components"
	"github.com/bububa/atomic-crew/config"
	"github.com/bububa/atomic-crew/crew"
	"github.com/bububa/atomic-crew/llm"
	"github.com/bububa/atomic-crew/llm/llmtest"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("BLOGCREW_PROVIDER", "")
	t.Setenv("BLOGCREW_MODEL", "")
	t.Setenv("SERPER_API_KEY", "test-key")
	cfg, err := config.Default()
	require.NoError(t, err)
	return cfg
}

func finalAnswer(answer string) string {
	return llmtest.JSON(map[string]any{"thought": "done", "final_answer": answer})
}

func systemPrompt(req llm.Request) string {
	return req.Messages[0].StringifiedContent()
}

func TestBuildDefault(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Year = 2025
	c, err := Build(cfg, WithClient(llmtest.New()))
	require.NoError(t, err)

	agents := c.Agents()
	require.Len(t, agents, 3)
	assert.Equal(t, "Research Specialist", agents[0].Role())
	assert.Equal(t, "Investigate the latest applications of AI in educational apps for 2025", agents[0].Goal())
	require.Len(t, agents[0].Tools(), 1)
	assert.Equal(t, "Google Search Scraper", agents[0].Tools()[0].Title())
	assert.Equal(t, "Tool for searching the internet to find the latest information.", agents[0].Tools()[0].Description())
	assert.False(t, agents[0].AllowDelegation())
	assert.True(t, agents[1].AllowDelegation())
	assert.Empty(t, agents[1].Tools())
	assert.True(t, agents[2].AllowDelegation())

	tasks := c.Tasks()
	require.Len(t, tasks, 3)
	assert.Equal(t, "research", tasks[0].Name())
	assert.Same(t, agents[0], tasks[0].Agent())
	assert.Same(t, agents[1], tasks[1].Agent())
	assert.Same(t, agents[2], tasks[2].Agent())
	assert.Equal(t, crew.Sequential, c.Process())
}

func TestBuildKickoff(t *testing.T) {
	cfg := defaultConfig(t)
	client := llmtest.NewResponder(func(req *llm.Request) llmtest.Reply {
		sys := systemPrompt(*req)
		switch {
		case strings.Contains(sys, "You are Research Specialist."):
			return llmtest.Reply{Content: finalAnswer("- Khanmigo tutors students.")}
		case strings.Contains(sys, "You are Content Creator."):
			return llmtest.Reply{Content: finalAnswer("## [Khanmigo](https://www.khanmigo.ai)\n- draft")}
		default:
			return llmtest.Reply{Content: finalAnswer("## [Khanmigo](https://www.khanmigo.ai)\n- Tutors students\n- Scales tutoring\n")}
		}
	})
	c, err := Build(cfg, WithClient(client), WithTokenCounter(components.EstimateCounter))
	require.NoError(t, err)
	out, err := c.Kickoff(context.Background())
	require.NoError(t, err)
	assert.Empty(t, CheckFormat(out.Raw))
	require.Len(t, out.TasksOutput, 3)
	assert.Equal(t, "Editorial Reviewer", out.TasksOutput[2].Agent)

	reqs := client.Requests()
	require.Len(t, reqs, 3)
	for _, req := range reqs {
		assert.Equal(t, config.DefaultModel, req.Model)
		assert.InDelta(t, 0.7, req.Temperature, 0.0001)
	}
	assert.Contains(t, systemPrompt(reqs[0]), "- Google Search Scraper: Tool for searching the internet")
	assert.Contains(t, systemPrompt(reqs[1]), "- Delegate work to coworker: Delegate a specific task to one of the following coworkers: Research Specialist, Editorial Reviewer.")
}

func TestBuildToolBinding(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Agents[1].Tools = []string{config.ToolScrape, config.ToolHuman}
	cfg.Agents[2].Tools = []string{config.ToolHuman}
	var out bytes.Buffer
	c, err := Build(cfg, WithHumanIO(strings.NewReader("yes\n"), &out))
	require.NoError(t, err)
	writer, editor := c.Agents()[1], c.Agents()[2]
	require.Len(t, writer.Tools(), 2)
	assert.Equal(t, "Read website content", writer.Tools()[0].Title())
	assert.Equal(t, "human", writer.Tools()[1].Title())
	assert.Same(t, writer.Tools()[1], editor.Tools()[0])

	ret, err := editor.Tools()[0].RunAnonymous(context.Background(), `{"question":"Publish?"}`)
	require.NoError(t, err)
	assert.Contains(t, ret.(interface{ String() string }).String(), "yes")
	assert.Contains(t, out.String(), "Publish?")
}

func TestBuildSearxng(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Search.Provider = config.SearchSearxng
	cfg.Search.SearxngURL = ""
	_, err := Build(cfg)
	assert.ErrorIs(t, err, ErrMissingSearxngURL)

	cfg.Search.SearxngURL = "http://localhost:8888"
	c, err := Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, "Google Search Scraper", c.Agents()[0].Tools()[0].Title())
	assert.Contains(t, c.Agents()[0].Tools()[0].InputSchema(), "category")
}

func TestBuildRejectsHierarchical(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Process = string(crew.Hierarchical)
	_, err := Build(cfg)
	assert.ErrorIs(t, err, crew.ErrUnsupportedProcess)
}
