package persona

import "github.com/bububa/atomic-crew/components/systemprompt"

type Option = func(g *Generator)

// WithTools set Generator tools
func WithTools(tools ...ToolInfo) Option {
	return func(g *Generator) {
		g.tools = append(g.tools, tools...)
	}
}

// WithOutputInstructs set Generator output instructions
func WithOutputInstructs(outputInstructs []string) Option {
	return func(g *Generator) {
		g.outputInstructs = outputInstructs
	}
}

// WithContextProviders set Generator context pproviders
func WithContextProviders(providers ...systemprompt.ContextProvider) Option {
	return func(g *Generator) {
		g.AddContextProviders(providers...)
	}
}
