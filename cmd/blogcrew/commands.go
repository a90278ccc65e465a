package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"go.uber.org/zap"

	"github.com/bububa/atomic-crew/blog"
	"github.com/bububa/atomic-crew/components"
	"github.com/bububa/atomic-crew/config"
	"github.com/bububa/atomic-crew/llm"
	"github.com/bububa/atomic-crew/logger"
	"github.com/bububa/atomic-crew/schema"
)

// Separator is printed before the crew result
const Separator = "######################"

var (
	stdout io.Writer = os.Stdout
	// newClient builds the llm client of a run
	newClient = func(provider llm.Provider, l *zap.Logger) (llm.Client, error) {
		return llm.NewFromEnv(provider, llm.WithLogger(l))
	}
	// newCounter builds the token counter trimming task contexts
	newCounter = func(model string) components.TokenCounter {
		return components.NewTiktokenCounter(model)
	}
)

func loadEnv(files []string) error {
	return config.LoadDotEnv(files...)
}

// Overrides are the flags overriding configuration values
type Overrides struct {
	Provider   string `help:"LLM provider (openai, anthropic, cohere, gemini)."`
	Model      string `help:"Model name."`
	Year       int    `help:"Year the research focuses on."`
	Search     string `help:"Search backend (serper, searxng)."`
	SearxngURL string `name:"searxng-url" help:"SearxNG instance url."`
	Verbose    *bool  `help:"Log agent, task and tool events." negatable:""`
}

func (o Overrides) apply(cfg *config.Config) error {
	if o.Provider != "" {
		cfg.Provider = o.Provider
	}
	if o.Model != "" {
		cfg.Model = o.Model
	}
	if o.Year != 0 {
		cfg.Year = o.Year
	}
	if o.Search != "" {
		cfg.Search.Provider = o.Search
	}
	if o.SearxngURL != "" {
		cfg.Search.SearxngURL = o.SearxngURL
	}
	if o.Verbose != nil {
		cfg.Verbose = *o.Verbose
	}
	return cfg.Validate()
}

func loadConfig(cli *CLI, o Overrides) (*config.Config, error) {
	cfg, err := config.Load(cli.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := o.apply(cfg); err != nil {
		return nil, err
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}
	return cfg, nil
}

// RunCmd runs the crew.
type RunCmd struct {
	Overrides
	Output string `short:"o" help:"Also write the result to this file." type:"path"`
}

func (c *RunCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli, c.Overrides)
	if err != nil {
		return err
	}
	if c.Output != "" {
		cfg.Output = c.Output
	}
	l, err := logger.New(cfg.LogLevel, cfg.Verbose)
	if err != nil {
		return err
	}
	defer l.Sync()

	client, err := newClient(llm.Provider(cfg.Provider), l)
	if err != nil {
		return err
	}
	team, err := blog.Build(cfg,
		blog.WithClient(client),
		blog.WithLogger(l),
		blog.WithTokenCounter(newCounter(cfg.Model)),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := team.Kickoff(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, Separator)
	fmt.Fprintln(stdout, result)

	for _, issue := range blog.CheckFormat(result.Raw) {
		l.Warn("blog post format", zap.String("issue", issue.String()))
	}
	l.Info("crew usage",
		zap.String("crew", result.ID),
		zap.Int64("input_tokens", result.Usage.InputTokens),
		zap.Int64("output_tokens", result.Usage.OutputTokens),
	)
	if cfg.Output != "" {
		if err := os.WriteFile(cfg.Output, []byte(result.Raw), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

// ResearchCmd runs the quick researcher.
type ResearchCmd struct {
	Overrides
	Question string `arg:"" help:"Question to research."`
}

func (c *ResearchCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli, c.Overrides)
	if err != nil {
		return err
	}
	l, err := logger.New(cfg.LogLevel, cfg.Verbose)
	if err != nil {
		return err
	}
	defer l.Sync()
	client, err := newClient(llm.Provider(cfg.Provider), l)
	if err != nil {
		return err
	}
	researcher, err := blog.NewResearcher(cfg, blog.WithClient(client), blog.WithLogger(l))
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	brief := new(blog.Brief)
	if err := researcher.Run(ctx, schema.NewInput(c.Question), brief, new(components.LLMResponse)); err != nil {
		return err
	}
	fmt.Fprint(stdout, brief)
	return nil
}

// ValidateCmd validates the configuration.
type ValidateCmd struct {
	Overrides
}

func (c *ValidateCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli, c.Overrides)
	if err != nil {
		return err
	}
	team, err := blog.Build(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "configuration is valid: %d agents, %d tasks, %s process, %s/%s\n",
		len(team.Agents()), len(team.Tasks()), team.Process(), cfg.Provider, cfg.Model)
	for idx, t := range team.Tasks() {
		fmt.Fprintf(stdout, "  %d. %s -> %s\n", idx+1, t.Name(), t.Agent().Role())
	}
	return nil
}

// ConfigCmd prints the embedded configuration.
type ConfigCmd struct{}

func (c *ConfigCmd) Run() error {
	_, err := stdout.Write(config.DefaultYAML())
	return err
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Fprintf(stdout, "blogcrew version %s\n", version)
	return nil
}
