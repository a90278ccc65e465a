package tools

import (
	"context"

	"go.uber.org/zap"
)

// Option configures the shared tool settings
type Option func(c *Config)

// Apply applies opts to c
func Apply(c *Config, opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// WithTitle sets the name the llm calls the tool by
func WithTitle(title string) Option {
	return func(c *Config) {
		c.SetTitle(title)
	}
}

// WithDescription sets the description shown to the llm
func WithDescription(desc string) Option {
	return func(c *Config) {
		c.SetDescription(desc)
	}
}

func WithStartHook(fn func(context.Context, AnonymousTool, any)) Option {
	return func(c *Config) {
		c.SetStartHook(fn)
	}
}

func WithEndHook(fn func(context.Context, AnonymousTool, any, any)) Option {
	return func(c *Config) {
		c.SetEndHook(fn)
	}
}

func WithErrorHook(fn func(context.Context, AnonymousTool, any, error)) Option {
	return func(c *Config) {
		c.SetErrorHook(fn)
	}
}

// WithLogger logs tool calls at debug level and tool failures at warn level.
// Hooks set before are replaced
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		if l == nil {
			return
		}
		c.SetStartHook(func(_ context.Context, t AnonymousTool, in any) {
			l.Debug("tool call", zap.String("tool", t.Title()), zap.Any("input", in))
		})
		c.SetEndHook(func(_ context.Context, t AnonymousTool, _ any, _ any) {
			l.Debug("tool done", zap.String("tool", t.Title()))
		})
		c.SetErrorHook(func(_ context.Context, t AnonymousTool, _ any, err error) {
			l.Warn("tool failed", zap.String("tool", t.Title()), zap.Error(err))
		})
	}
}
