// Package tools holds the tools agents can call and the adapter exposing typed
// tools to llm driven callers.
package tools

import (
	"context"

	"github.com/bububa/atomic-crew/schema"
)

// ITool is the name, description and hooks every tool carries, see Config
type ITool interface {
	SetTitle(string)
	Title() string
	SetDescription(string)
	Description() string
	SetStartHook(fn func(context.Context, AnonymousTool, any))
	SetEndHook(fn func(context.Context, AnonymousTool, any, any))
	SetErrorHook(fn func(context.Context, AnonymousTool, any, error))
}

// Hooks exposes the callbacks around a tool run
type Hooks interface {
	StartHook() func(context.Context, AnonymousTool, any)
	EndHook() func(context.Context, AnonymousTool, any, any)
	ErrorHook() func(context.Context, AnonymousTool, any, error)
}

// Tool is a typed tool
type Tool[I schema.Schema, O schema.Schema] interface {
	ITool
	Run(context.Context, *I, *O) error
}

// AnonymousTool is a tool driven by untyped input, usually the JSON produced by a llm
type AnonymousTool interface {
	ITool
	// InputSchema returns the JSON schema of the tool input
	InputSchema() string
	RunAnonymous(context.Context, any) (any, error)
}

var _ Hooks = Config{}
