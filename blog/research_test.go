package blog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/atomic-crew/components"
	"github.com/bububa/atomic-crew/config"
	"github.com/bububa/atomic-crew/llm/llmtest"
	"github.com/bububa/atomic-crew/schema"
	"github.com/bububa/atomic-crew/tools"
	"github.com/bububa/atomic-crew/tools/serper"
)

func TestResearcher(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Q string `json:"q"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		queries = append(queries, body.Q)
		w.Write([]byte(`{"organic":[{"title":"Khanmigo","link":"https://www.khanmigo.ai","snippet":"AI tutor by Khan Academy","position":1}]}`))
	}))
	defer srv.Close()

	cfg := defaultConfig(t)
	client := llmtest.New(
		`{"queries":["AI tutors 2024"]}`,
		llmtest.JSON(Brief{Answer: "Khanmigo is an AI tutor.", References: []string{"https://www.khanmigo.ai"}, FollowUpQuestions: []string{"Is it free?"}}),
	)
	search := serper.New(serper.WithAPIKey("k"), serper.WithEndpoint(srv.URL), serper.WithToolOptions(tools.WithTitle("Google Search Scraper")))
	researcher, err := NewResearcher(cfg,
		WithClient(client),
		WithTool(config.ToolSearch, tools.NewAnonymous[serper.Input, serper.Output](search)),
	)
	require.NoError(t, err)
	assert.Equal(t, "Research Specialist", researcher.Name())

	brief := new(Brief)
	require.NoError(t, researcher.Run(context.Background(), schema.NewInput("What AI tutors exist?"), brief, new(components.LLMResponse)))
	assert.Equal(t, []string{"AI tutors 2024"}, queries)
	assert.Equal(t, "Khanmigo is an AI tutor.\n\nReferences:\n- https://www.khanmigo.ai\n\nFollow-up Questions:\n- Is it free?\n", brief.String())

	reqs := client.Requests()
	require.Len(t, reqs, 2)
	assert.Contains(t, reqs[0].Messages[0].StringifiedContent(), "expert search engine query generator")
	endPrompt := reqs[1].Messages[0].StringifiedContent()
	assert.Contains(t, endPrompt, "You are Research Specialist.")
	assert.Contains(t, endPrompt, "## Search results")
	assert.Contains(t, endPrompt, "Link: https://www.khanmigo.ai")
}

func TestResearcherSearchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	cfg := defaultConfig(t)
	search := serper.New(serper.WithAPIKey("k"), serper.WithEndpoint(srv.URL))
	researcher, err := NewResearcher(cfg,
		WithClient(llmtest.New(`{"queries":["x"]}`)),
		WithTool(config.ToolSearch, tools.NewAnonymous[serper.Input, serper.Output](search)),
	)
	require.NoError(t, err)
	err = researcher.Run(context.Background(), schema.NewInput("q"), new(Brief), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestResearcherNoAgents(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Agents = nil
	_, err := NewResearcher(cfg, WithClient(llmtest.New()))
	assert.ErrorIs(t, err, ErrNoAgents)
}
