package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bububa/atomic-crew/schema"
)

type greetInput struct {
	schema.Base
	Name string `json:"name" validate:"required"`
}

type greetTool struct {
	Config
	err error
}

func (t *greetTool) Run(_ context.Context, in *greetInput, out *schema.String) error {
	if t.err != nil {
		return t.err
	}
	*out = schema.String("hello " + in.Name)
	return nil
}

func newGreet(opts ...Option) *greetTool {
	ret := new(greetTool)
	Apply(&ret.Config, append([]Option{WithTitle("greet"), WithDescription("Greets a person")}, opts...)...)
	return ret
}

func TestAnonymousDecode(t *testing.T) {
	tool := NewAnonymous[greetInput, schema.String](newGreet())
	assert.Equal(t, "greet", tool.Title())
	assert.Equal(t, "Greets a person", tool.Description())
	assert.Contains(t, tool.InputSchema(), `"name"`)

	inputs := []any{
		&greetInput{Name: "ada"},
		greetInput{Name: "ada"},
		json.RawMessage(`{"name":"ada"}`),
		[]byte(`{"name":"ada"}`),
		`{"name":"ada"}`,
		map[string]any{"name": "ada"},
	}
	for _, in := range inputs {
		out, err := tool.RunAnonymous(context.Background(), in)
		require.NoError(t, err, "input %T", in)
		assert.Equal(t, "hello ada", schema.Stringify(out.(*schema.String)))
	}
}

func TestAnonymousInvalidInput(t *testing.T) {
	tool := NewAnonymous[greetInput, schema.String](newGreet())
	_, err := tool.RunAnonymous(context.Background(), `{"name":""}`)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = tool.RunAnonymous(context.Background(), "not json")
	assert.ErrorIs(t, err, ErrInvalidInput)
	var nilInput *greetInput
	_, err = tool.RunAnonymous(context.Background(), nilInput)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestWithLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	greet := newGreet(WithLogger(zap.New(core)))
	tool := NewAnonymous[greetInput, schema.String](greet)

	_, err := tool.RunAnonymous(context.Background(), `{"name":"ada"}`)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("tool call").Len())
	assert.Equal(t, 1, logs.FilterMessage("tool done").Len())

	greet.err = errors.New("boom")
	_, err = tool.RunAnonymous(context.Background(), `{"name":"ada"}`)
	require.Error(t, err)
	failed := logs.FilterMessage("tool failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "greet", failed[0].ContextMap()["tool"])
}
