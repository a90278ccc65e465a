package cot

import "github.com/bububa/atomic-crew/components/systemprompt"

// Option configures a Generator, list options append to what is already set
type Option func(g *Generator)

// WithBackground adds identity and purpose lines
func WithBackground(lines ...string) Option {
	return func(g *Generator) {
		g.background = append(g.background, lines...)
	}
}

// WithSteps adds internal assistant steps
func WithSteps(steps ...string) Option {
	return func(g *Generator) {
		g.steps = append(g.steps, steps...)
	}
}

// WithOutputInstructs adds output instructions, the JSON schema reminders are always appended last
func WithOutputInstructs(instructs ...string) Option {
	return func(g *Generator) {
		g.outputInstructs = append(g.outputInstructs, instructs...)
	}
}

func WithContextProviders(providers ...systemprompt.ContextProvider) Option {
	return func(g *Generator) {
		g.AddContextProviders(providers...)
	}
}
