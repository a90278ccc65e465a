package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bububa/atomic-crew/schema"
)

// ErrInvalidInput is returned when the anonymous input can not be converted to the tool input
var ErrInvalidInput = errors.New("invalid tool input")

// Anonymous adapts a typed Tool to AnonymousTool.
// Title, description and hooks are shared with the wrapped tool.
type Anonymous[I schema.Schema, O schema.Schema] struct {
	Tool[I, O]
}

var _ AnonymousTool = (*Anonymous[schema.String, schema.String])(nil)

// NewAnonymous returns the AnonymousTool presentation of a typed tool
func NewAnonymous[I schema.Schema, O schema.Schema](t Tool[I, O]) *Anonymous[I, O] {
	return &Anonymous[I, O]{Tool: t}
}

// InputSchema implements AnonymousTool interface
func (a *Anonymous[I, O]) InputSchema() string {
	ret, _ := schema.JSONSchema(new(I))
	return ret
}

// RunAnonymous accepts *I, I, json.RawMessage, []byte, string or map input, returns *O
func (a *Anonymous[I, O]) RunAnonymous(ctx context.Context, input any) (any, error) {
	in, err := a.decode(input)
	if err != nil {
		return nil, err
	}
	hooks, _ := a.Tool.(Hooks)
	if hooks != nil {
		if fn := hooks.StartHook(); fn != nil {
			fn(ctx, a, in)
		}
	}
	out := new(O)
	if err := a.Tool.Run(ctx, in, out); err != nil {
		if hooks != nil {
			if fn := hooks.ErrorHook(); fn != nil {
				fn(ctx, a, in, err)
			}
		}
		return nil, err
	}
	if hooks != nil {
		if fn := hooks.EndHook(); fn != nil {
			fn(ctx, a, in, out)
		}
	}
	return out, nil
}

func (a *Anonymous[I, O]) decode(input any) (*I, error) {
	var raw []byte
	switch v := input.(type) {
	case *I:
		if v == nil {
			return nil, fmt.Errorf("%w: nil input", ErrInvalidInput)
		}
		return v, a.validate(v)
	case I:
		return &v, a.validate(&v)
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		bs, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		raw = bs
	}
	in := new(I)
	if err := json.Unmarshal(raw, in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return in, a.validate(in)
}

func (a *Anonymous[I, O]) validate(in *I) error {
	if err := schema.Validate(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
