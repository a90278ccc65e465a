// Package config loads the blog crew configuration
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

const (
	DefaultProvider = "openai"
	DefaultModel    = "gpt-4o"
	DefaultYear     = 2024
	// YearPlaceholder is replaced with the configured year in agent and task texts
	YearPlaceholder = "{year}"
)

// DefaultMaxContextTokens is used when max_context_tokens is 0, a negative value disables trimming
const DefaultMaxContextTokens = 8000

const (
	ToolSearch = "search"
	ToolScrape = "scrape"
	ToolHuman  = "human"
)

const (
	SearchSerper  = "serper"
	SearchSearxng = "searxng"
)

// ErrInvalidReference is returned when a task refers to an unknown agent or task
var ErrInvalidReference = errors.New("config: invalid reference")

// Config is the crew configuration
type Config struct {
	Provider         string   `yaml:"provider" validate:"required,oneof=openai anthropic cohere gemini"`
	Model            string   `yaml:"model" validate:"required"`
	Temperature      float32  `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens        int      `yaml:"max_tokens" validate:"gte=0"`
	Year             int      `yaml:"year" validate:"gte=1970,lte=9999"`
	Verbose          bool     `yaml:"verbose"`
	Process          string   `yaml:"process" validate:"required,oneof=sequential hierarchical"`
	MaxContextTokens int      `yaml:"max_context_tokens"`
	Search           Search   `yaml:"search"`
	Agents           []Agent  `yaml:"agents" validate:"required,min=1,dive"`
	Tasks            []Task   `yaml:"tasks" validate:"required,min=1,dive"`
	LogLevel         string   `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Output           string   `yaml:"output"`
}

// Search configures the search tool
type Search struct {
	Provider     string `yaml:"provider" validate:"required,oneof=serper searxng"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	MaxResults   int    `yaml:"max_results" validate:"gte=0"`
	SerperAPIKey string `yaml:"serper_api_key"`
	SearxngURL   string `yaml:"searxng_url" validate:"omitempty,url"`
	Country      string `yaml:"country"`
	Locale       string `yaml:"locale"`
	// RateLimit requests per second sent to the search api, 0 keeps the tool default
	RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`
}

// Agent is an agent record
type Agent struct {
	Name            string   `yaml:"name" validate:"required"`
	Role            string   `yaml:"role" validate:"required"`
	Goal            string   `yaml:"goal" validate:"required"`
	Backstory       string   `yaml:"backstory" validate:"required"`
	Tools           []string `yaml:"tools" validate:"dive,oneof=search scrape human"`
	AllowDelegation bool     `yaml:"allow_delegation"`
	Verbose         bool     `yaml:"verbose"`
	MaxIter         int      `yaml:"max_iter" validate:"gte=0"`
	Model           string   `yaml:"model"`
	Temperature     *float32 `yaml:"temperature" validate:"omitempty,gte=0,lte=2"`
}

// Task is a task record, Agent and Context refer to agent and task names
type Task struct {
	Name           string   `yaml:"name" validate:"required"`
	Description    string   `yaml:"description" validate:"required"`
	ExpectedOutput string   `yaml:"expected_output" validate:"required"`
	Agent          string   `yaml:"agent" validate:"required"`
	Context        []string `yaml:"context"`
}

// Default returns the embedded configuration
func Default() (*Config, error) {
	return Parse(defaultYAML)
}

// DefaultYAML returns the embedded configuration document
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

// Load reads the configuration file, the embedded one when path is empty
func Load(path string) (*Config, error) {
	if path == "" {
		return Default()
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(bs)
}

// envRef matches ${VAR} references, a bare $ is kept as is
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnv replaces ${VAR} references in s with the environment value, unset variables expand to ""
func ExpandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(envRef.FindStringSubmatch(ref)[1])
	})
}

// Parse expands ${VAR} references, decodes the yaml document, applies defaults and validates it
func Parse(bs []byte) (*Config, error) {
	cfg := new(Config)
	if err := yaml.Unmarshal([]byte(ExpandEnv(string(bs))), cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment, missing files are ignored.
// Variables already set are not overridden
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Year == 0 {
		c.Year = DefaultYear
	}
	if c.Process == "" {
		c.Process = "sequential"
	}
	if c.MaxContextTokens == 0 {
		c.MaxContextTokens = DefaultMaxContextTokens
	}
	if c.Search.Provider == "" {
		c.Search.Provider = SearchSerper
	}
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.Search.Provider = strings.ToLower(strings.TrimSpace(c.Search.Provider))
}

// Validate checks field constraints and cross references
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	agents := make(map[string]struct{}, len(c.Agents))
	for _, a := range c.Agents {
		if _, found := agents[a.Name]; found {
			return fmt.Errorf("%w: duplicate agent %q", ErrInvalidReference, a.Name)
		}
		agents[a.Name] = struct{}{}
	}
	tasks := make(map[string]struct{}, len(c.Tasks))
	for _, t := range c.Tasks {
		if _, found := tasks[t.Name]; found {
			return fmt.Errorf("%w: duplicate task %q", ErrInvalidReference, t.Name)
		}
		if _, found := agents[t.Agent]; !found {
			return fmt.Errorf("%w: task %q agent %q", ErrInvalidReference, t.Name, t.Agent)
		}
		for _, dep := range t.Context {
			if _, found := tasks[dep]; !found {
				return fmt.Errorf("%w: task %q context %q must name an earlier task", ErrInvalidReference, t.Name, dep)
			}
		}
		tasks[t.Name] = struct{}{}
	}
	return nil
}

// ApplyYear replaces the year placeholder in s
func (c *Config) ApplyYear(s string) string {
	return strings.ReplaceAll(s, YearPlaceholder, fmt.Sprint(c.Year))
}

// Agent returns the agent record by name
func (c *Config) Agent(name string) (Agent, bool) {
	for _, a := range c.Agents {
		if a.Name == name {
			return a, true
		}
	}
	return Agent{}, false
}

var validate = validator.New(validator.WithRequiredStructEnabled())
