package blog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/bububa/atomic-crew/agents"
	"github.com/bububa/atomic-crew/components"
	"github.com/bububa/atomic-crew/components/systemprompt/cot"
	"github.com/bububa/atomic-crew/components/systemprompt/persona"
	"github.com/bububa/atomic-crew/config"
	"github.com/bububa/atomic-crew/schema"
)

// SearchQueries is the search tool input the researcher asks for
type SearchQueries struct {
	schema.Base
	Queries []string `json:"queries" jsonschema:"title=queries,description=Up to 3 search queries covering the question." validate:"required,min=1,max=3,dive,required"`
}

// Brief is the answer of a quick research
type Brief struct {
	schema.Base
	// Answer the answer in markdown format
	Answer string `json:"answer" jsonschema:"title=answer,description=The answer to the question in markdown format." validate:"required"`
	// References up to 3 URLs the answer is based on
	References []string `json:"references,omitempty" jsonschema:"title=references,description=Up to 3 HTTP URLs used as references for the answer."`
	// FollowUpQuestions up to 3 related questions
	FollowUpQuestions []string `json:"follow_up_questions,omitempty" jsonschema:"title=follow_up_questions,description=Up to 3 follow-up questions related to the answer."`
}

func (b Brief) String() string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(b.Answer))
	sb.WriteString("\n")
	if len(b.References) > 0 {
		sb.WriteString("\nReferences:\n")
		for _, v := range b.References {
			fmt.Fprintf(&sb, "- %s\n", v)
		}
	}
	if len(b.FollowUpQuestions) > 0 {
		sb.WriteString("\nFollow-up Questions:\n")
		for _, v := range b.FollowUpQuestions {
			fmt.Fprintf(&sb, "- %s\n", v)
		}
	}
	return sb.String()
}

// Researcher answers a single question with one round of web search
type Researcher = agents.ToolAgent[schema.Input, SearchQueries, Brief]

// NewResearcher returns the quick research agent, played by the first agent having the search tool
func NewResearcher(cfg *config.Config, opts ...Option) (*Researcher, error) {
	if len(cfg.Agents) == 0 {
		return nil, ErrNoAgents
	}
	o := newOptions(opts)
	record := cfg.Agents[0]
	for _, a := range cfg.Agents {
		if slices.Contains(a.Tools, config.ToolSearch) {
			record = a
			break
		}
	}
	tool, err := o.tool(cfg, config.ToolSearch)
	if err != nil {
		return nil, err
	}
	model := record.Model
	if model == "" {
		model = cfg.Model
	}
	role := cfg.ApplyYear(record.Role)
	ret := agents.NewToolAgent[schema.Input, SearchQueries, Brief](
		agents.WithClient(o.client),
		agents.WithModel(model),
		agents.WithTemperature(cfg.Temperature),
		agents.WithMaxTokens(cfg.MaxTokens),
		agents.WithName(role),
	)
	ret.Start().SetSystemPromptGenerator(cot.New(
		cot.WithBackground(
			"- You are an expert search engine query generator.",
			fmt.Sprintf("- You work as %s: %s.", role, cfg.ApplyYear(record.Goal)),
		),
		cot.WithSteps(
			"- Analyze the question to identify the key concepts.",
			"- Generate up to 3 diverse search queries covering the question.",
		),
		cot.WithOutputInstructs(
			"- Queries must be concise and specific.",
			"- Do not repeat the same query twice.",
		),
	))
	ret.End().SetSystemPromptGenerator(persona.New(role, cfg.ApplyYear(record.Goal), cfg.ApplyYear(record.Backstory),
		persona.WithOutputInstructs([]string{
			"- Answer the question using only the search results in the extra information section.",
			"- Include up to 3 relevant HTTP URLs from the search results as references.",
			"- Provide up to 3 follow-up questions to encourage further exploration of the topic.",
		}),
	))
	logger := o.logger
	ret.Start().SetEndHook(func(_ context.Context, _ *agents.Agent[schema.Input, SearchQueries], _ *schema.Input, out *SearchQueries, _ *components.LLMResponse) {
		logger.Info("research queries", zap.Strings("queries", out.Queries))
	})
	ret.SetTool(tool)
	return ret, nil
}
