// Package persona renders role/goal/backstory system prompts for crew agents
package persona

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bububa/atomic-crew/components/systemprompt"
)

// ToolInfo describes a tool offered to the persona
type ToolInfo struct {
	Name        string
	Description string
	InputSchema string
}

// Generator is role/goal/backstory system prompt generator
type Generator struct {
	systemprompt.BaseGenerator
	role            string
	goal            string
	backstory       string
	tools           []ToolInfo
	outputInstructs []string
}

var _ systemprompt.Generator = (*Generator)(nil)

// New returns a new persona Generator
func New(role string, goal string, backstory string, options ...Option) *Generator {
	ret := &Generator{
		role:      role,
		goal:      goal,
		backstory: backstory,
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// Role returns the persona role
func (g *Generator) Role() string {
	return g.role
}

// AddTools appends tools to the TOOLS section
func (g *Generator) AddTools(tools ...ToolInfo) {
	g.tools = append(g.tools, tools...)
}

func (g *Generator) Generate() string {
	identity := []string{fmt.Sprintf("- You are %s.", g.role)}
	if backstory := strings.TrimSpace(g.backstory); backstory != "" {
		identity = append(identity, "- "+collapse(backstory))
	}
	var goal []string
	if g.goal != "" {
		goal = []string{"- Your personal goal is: " + collapse(g.goal)}
	}
	var tools []string
	if len(g.tools) > 0 {
		tools = append(tools, "- You ONLY have access to the following tools, and should NEVER make up tools that are not listed here:")
		for _, t := range g.tools {
			tools = append(tools, fmt.Sprintf("- %s: %s", t.Name, collapse(t.Description)))
			if t.InputSchema != "" {
				tools = append(tools, fmt.Sprintf("  input JSON schema: %s", compact(t.InputSchema)))
			}
		}
	}
	return g.Render(
		systemprompt.Section{Title: "IDENTITY and PURPOSE", Lines: identity},
		systemprompt.Section{Title: "GOAL", Lines: goal},
		systemprompt.Section{Title: "TOOLS", Lines: tools},
		systemprompt.Section{Title: "OUTPUT INSTRUCTIONS", Lines: g.outputInstructs},
	)
}

// collapse joins multi-line literals into a single line
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// compact removes insignificant whitespace from a JSON document
func compact(s string) string {
	buf := new(bytes.Buffer)
	if err := json.Compact(buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
