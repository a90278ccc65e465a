package systemprompt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bububa/atomic-crew/components/systemprompt"
	"github.com/bububa/atomic-crew/components/systemprompt/cot"
	"github.com/bububa/atomic-crew/components/systemprompt/persona"
)

func TestCotGenerate(t *testing.T) {
	g := cot.New()
	assert.Equal(t, `# IDENTITY and PURPOSE
- This is a conversation with a helpful and friendly AI assistant.

# OUTPUT INSTRUCTIONS
- Always respond using the proper JSON schema.
- Always use the available additional information and context to enhance the response.`, g.Generate())
}

func TestContextProviders(t *testing.T) {
	date := systemprompt.NewStaticProvider("Current date", "2024-01-01")
	empty := systemprompt.NewStaticProvider("Empty", "")
	g := cot.New(cot.WithContextProviders(date, empty, systemprompt.NewStaticProvider("Current date", "dup")))
	assert.Len(t, g.ContextProviders(), 2)
	assert.Contains(t, g.Generate(), "# EXTRA INFORMATION AND CONTEXT\n## Current date\n2024-01-01")
	assert.NotContains(t, g.Generate(), "## Empty")

	p, err := g.ContextProvider("Current date")
	assert.NoError(t, err)
	assert.Equal(t, "2024-01-01", p.Info())

	g.RemoveContextProviders("Current date")
	_, err = g.ContextProvider("Current date")
	assert.Error(t, err)
	assert.Len(t, g.ContextProviders(), 1)
	assert.NotContains(t, g.Generate(), "EXTRA INFORMATION")
}

func TestPersonaGenerate(t *testing.T) {
	g := persona.New("Research Specialist", "Investigate\n   AI apps", "You excel in\n discovering trends.",
		persona.WithTools(persona.ToolInfo{
			Name:        "Search",
			Description: "Search the internet.",
			InputSchema: "{\n  \"type\": \"object\",\n  \"description\": \"search queries\"\n}",
		}),
		persona.WithOutputInstructs([]string{"- Respond in JSON."}),
	)
	out := g.Generate()
	assert.Contains(t, out, "# IDENTITY and PURPOSE\n- You are Research Specialist.\n- You excel in discovering trends.")
	assert.Contains(t, out, "# GOAL\n- Your personal goal is: Investigate AI apps")
	assert.Contains(t, out, "- Search: Search the internet.\n  input JSON schema: {\"type\":\"object\",\"description\":\"search queries\"}")
	assert.Contains(t, out, "# OUTPUT INSTRUCTIONS\n- Respond in JSON.")
	assert.Equal(t, "Research Specialist", g.Role())
}

func TestCotOptionsAppend(t *testing.T) {
	g := cot.New(
		cot.WithBackground("- You generate search queries."),
		cot.WithSteps("- Find the key concepts."),
		cot.WithSteps("- Write the queries."),
		cot.WithOutputInstructs("- Keep queries short."),
	)
	assert.Equal(t, `# IDENTITY and PURPOSE
- You generate search queries.

# INTERNAL ASSISTANT STEPS
- Find the key concepts.
- Write the queries.

# OUTPUT INSTRUCTIONS
- Keep queries short.
- Always respond using the proper JSON schema.
- Always use the available additional information and context to enhance the response.`, g.Generate())
}
