package cot

import (
	"github.com/bububa/atomic-crew/components/systemprompt"
)

// Generator is Chain-of-Thought system prompt generator
type Generator struct {
	systemprompt.BaseGenerator
	background      []string
	steps           []string
	outputInstructs []string
}

var _ systemprompt.Generator = (*Generator)(nil)

// New returns a new system prompt Generator
func New(options ...Option) *Generator {
	ret := new(Generator)
	for _, opt := range options {
		opt(ret)
	}
	if len(ret.background) == 0 {
		ret.background = []string{"- This is a conversation with a helpful and friendly AI assistant."}
	}
	ret.outputInstructs = append(ret.outputInstructs, "- Always respond using the proper JSON schema.", "- Always use the available additional information and context to enhance the response.")
	return ret
}

func (g *Generator) Generate() string {
	return g.Render(
		systemprompt.Section{Title: "IDENTITY and PURPOSE", Lines: g.background},
		systemprompt.Section{Title: "INTERNAL ASSISTANT STEPS", Lines: g.steps},
		systemprompt.Section{Title: "OUTPUT INSTRUCTIONS", Lines: g.outputInstructs},
	)
}
