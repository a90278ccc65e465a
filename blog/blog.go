// Package blog assembles the AI in education blog crew from its configuration
package blog

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/bububa/atomic-crew/components"
	"github.com/bububa/atomic-crew/config"
	"github.com/bububa/atomic-crew/crew"
	"github.com/bububa/atomic-crew/llm"
	"github.com/bububa/atomic-crew/tools"
	"github.com/bububa/atomic-crew/tools/human"
	"github.com/bububa/atomic-crew/tools/searxng"
	"github.com/bububa/atomic-crew/tools/serper"
	"github.com/bububa/atomic-crew/tools/webscraper"
)

// ErrMissingSearxngURL is returned when the searxng search provider has no url
var ErrMissingSearxngURL = errors.New("blog: searxng search requires searxng_url")

// ErrNoAgents is returned when the configuration has no agent to play a role
var ErrNoAgents = errors.New("blog: no agents configured")

type Options struct {
	client     llm.Client
	logger     *zap.Logger
	counter    components.TokenCounter
	tools      map[string]tools.AnonymousTool
	humanIn    io.Reader
	humanOut   io.Writer
	httpClient *http.Client
}

type Option func(*Options)

func WithClient(clt llm.Client) Option {
	return func(o *Options) {
		o.client = clt
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		o.logger = l
	}
}

func WithTokenCounter(counter components.TokenCounter) Option {
	return func(o *Options) {
		o.counter = counter
	}
}

// WithTool binds a tool to a configuration tool name instead of the built-in one
func WithTool(name string, t tools.AnonymousTool) Option {
	return func(o *Options) {
		if o.tools == nil {
			o.tools = make(map[string]tools.AnonymousTool)
		}
		o.tools[name] = t
	}
}

// WithHumanIO sets where the human tool asks its questions and reads the answers
func WithHumanIO(r io.Reader, w io.Writer) Option {
	return func(o *Options) {
		o.humanIn = r
		o.humanOut = w
	}
}

// WithHttpClient sets the http client of the search and scrape tools
func WithHttpClient(clt *http.Client) Option {
	return func(o *Options) {
		o.httpClient = clt
	}
}

func newOptions(opts []Option) *Options {
	o := &Options{tools: make(map[string]tools.AnonymousTool)}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// Build returns the validated crew described by cfg
func Build(cfg *config.Config, opts ...Option) (*crew.Crew, error) {
	o := newOptions(opts)
	agents := make([]*crew.Agent, 0, len(cfg.Agents))
	byName := make(map[string]*crew.Agent, len(cfg.Agents))
	for _, a := range cfg.Agents {
		agentTools := make([]tools.AnonymousTool, 0, len(a.Tools))
		for _, name := range a.Tools {
			t, err := o.tool(cfg, name)
			if err != nil {
				return nil, fmt.Errorf("agent %s: %w", a.Name, err)
			}
			agentTools = append(agentTools, t)
		}
		model := a.Model
		if model == "" {
			model = cfg.Model
		}
		temperature := cfg.Temperature
		if a.Temperature != nil {
			temperature = *a.Temperature
		}
		agent := crew.NewAgent(
			cfg.ApplyYear(a.Role),
			cfg.ApplyYear(a.Goal),
			cfg.ApplyYear(a.Backstory),
			crew.WithTools(agentTools...),
			crew.WithDelegation(a.AllowDelegation),
			crew.WithAgentVerbose(a.Verbose),
			crew.WithMaxIter(a.MaxIter),
			crew.WithLLM(o.client),
			crew.WithModel(model),
			crew.WithTemperature(temperature),
			crew.WithMaxTokens(cfg.MaxTokens),
			crew.WithAgentLogger(o.logger),
		)
		agents = append(agents, agent)
		byName[a.Name] = agent
	}
	tasks := make([]*crew.Task, 0, len(cfg.Tasks))
	taskByName := make(map[string]*crew.Task, len(cfg.Tasks))
	for _, t := range cfg.Tasks {
		agent, ok := byName[t.Agent]
		if !ok {
			return nil, fmt.Errorf("%w: task %q agent %q", config.ErrInvalidReference, t.Name, t.Agent)
		}
		taskOpts := []crew.TaskOption{crew.WithTaskName(t.Name), crew.WithAgent(agent)}
		for _, dep := range t.Context {
			depTask, ok := taskByName[dep]
			if !ok {
				return nil, fmt.Errorf("%w: task %q context %q", config.ErrInvalidReference, t.Name, dep)
			}
			taskOpts = append(taskOpts, crew.WithContext(depTask))
		}
		task := crew.NewTask(cfg.ApplyYear(t.Description), cfg.ApplyYear(t.ExpectedOutput), taskOpts...)
		tasks = append(tasks, task)
		taskByName[t.Name] = task
	}
	crewOpts := []crew.Option{
		crew.WithAgents(agents...),
		crew.WithTasks(tasks...),
		crew.WithProcess(crew.Process(cfg.Process)),
		crew.WithVerbose(cfg.Verbose),
		crew.WithLogger(o.logger),
		crew.WithMaxContextTokens(cfg.MaxContextTokens),
	}
	if o.counter != nil {
		crewOpts = append(crewOpts, crew.WithTokenCounter(o.counter))
	}
	ret := crew.New(crewOpts...)
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

// tool returns the tool bound to name, built tools are shared by the agents
func (o *Options) tool(cfg *config.Config, name string) (tools.AnonymousTool, error) {
	if t, ok := o.tools[name]; ok {
		return t, nil
	}
	var ret tools.AnonymousTool
	switch name {
	case config.ToolSearch:
		t, err := o.searchTool(cfg.Search)
		if err != nil {
			return nil, err
		}
		ret = t
	case config.ToolScrape:
		scraperOpts := []webscraper.Option{
			webscraper.WithMaxMarkdownLength(20_000),
			webscraper.WithToolOptions(tools.WithLogger(o.logger)),
		}
		if o.httpClient != nil {
			scraperOpts = append(scraperOpts, webscraper.WithHttpClient(o.httpClient))
		}
		ret = tools.NewAnonymous[webscraper.Input, webscraper.Output](webscraper.New(scraperOpts...))
	case config.ToolHuman:
		humanOpts := []human.Option{human.WithToolOptions(tools.WithLogger(o.logger))}
		if o.humanIn != nil {
			humanOpts = append(humanOpts, human.WithReader(o.humanIn))
		}
		if o.humanOut != nil {
			humanOpts = append(humanOpts, human.WithWriter(o.humanOut))
		}
		ret = tools.NewAnonymous[human.Input, human.Output](human.New(humanOpts...))
	default:
		return nil, fmt.Errorf("blog: unknown tool %q", name)
	}
	o.tools[name] = ret
	return ret, nil
}

func (o *Options) searchTool(cfg config.Search) (tools.AnonymousTool, error) {
	toolOpts := []tools.Option{tools.WithLogger(o.logger)}
	if cfg.Name != "" {
		toolOpts = append(toolOpts, tools.WithTitle(cfg.Name))
	}
	if cfg.Description != "" {
		toolOpts = append(toolOpts, tools.WithDescription(cfg.Description))
	}
	switch cfg.Provider {
	case config.SearchSearxng:
		if cfg.SearxngURL == "" {
			return nil, ErrMissingSearxngURL
		}
		opts := []searxng.Option{
			searxng.WithBaseURL(cfg.SearxngURL),
			searxng.WithToolOptions(toolOpts...),
		}
		if cfg.MaxResults > 0 {
			opts = append(opts, searxng.WithMaxResults(cfg.MaxResults))
		}
		if cfg.Locale != "" {
			opts = append(opts, searxng.WithLanguage(cfg.Locale))
		}
		if o.httpClient != nil {
			opts = append(opts, searxng.WithHttpClient(o.httpClient))
		}
		return tools.NewAnonymous[searxng.Input, searxng.Output](searxng.New(opts...)), nil
	default:
		opts := []serper.Option{
			serper.WithAPIKey(cfg.SerperAPIKey),
			serper.WithCountry(cfg.Country),
			serper.WithLocale(cfg.Locale),
			serper.WithToolOptions(toolOpts...),
		}
		if cfg.MaxResults > 0 {
			opts = append(opts, serper.WithMaxResults(cfg.MaxResults))
		}
		if cfg.RateLimit > 0 {
			opts = append(opts, serper.WithRateLimit(cfg.RateLimit, 1))
		}
		if o.httpClient != nil {
			opts = append(opts, serper.WithHttpClient(o.httpClient))
		}
		return tools.NewAnonymous[serper.Input, serper.Output](serper.New(opts...)), nil
	}
}
