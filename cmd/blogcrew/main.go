// Command blogcrew runs a crew of agents researching, writing and editing a blog
// post about AI trends in educational apps.
//
// Usage:
//
//	blogcrew run
//	blogcrew run --provider anthropic --model claude-3-5-sonnet-latest --year 2025
//	blogcrew run --search searxng --searxng-url http://localhost:8888 --output post.md
//	blogcrew research "Which AI tutors launched this year?"
//	blogcrew validate --config crew.yaml
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI defines the command-line interface.
type CLI struct {
	Run      RunCmd      `cmd:"" default:"withargs" help:"Run the crew and print the blog post."`
	Research ResearchCmd `cmd:"" help:"Answer a single question with one round of web search."`
	Validate ValidateCmd `cmd:"" help:"Validate the configuration and build the crew without calling the llm."`
	Config   ConfigCmd   `cmd:"" help:"Print the default configuration."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`

	ConfigFile string   `name:"config" short:"c" help:"Path to config file (embedded default when empty)." type:"path"`
	EnvFile    []string `name:"env-file" help:"Dotenv files to load." default:".env"`
	LogLevel   string   `help:"Log level (debug, info, warn, error)."`
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("blogcrew"),
		kong.Description("A crew of agents writing a blog post on AI in educational apps"),
		kong.UsageOnError(),
	)
	if err := loadEnv(cli.EnvFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
