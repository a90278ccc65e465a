package llm

import (
	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

type Option func(c *Config)

// Config represents the structured output client configuration
type Config struct {
	// maxRetries number of times an invalid reply is sent back to the model
	maxRetries int
	// maxAPITries max number of attempts for transient api errors
	maxAPITries uint
	// validate validates decoded output against `validate` tags
	validate bool
	backOff  func() backoff.BackOff
	logger   *zap.Logger
}

func defaultConfig() Config {
	return Config{
		maxRetries:  3,
		maxAPITries: 5,
		validate:    true,
		backOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		logger: zap.NewNop(),
	}
}

// WithMaxRetries set max retries for invalid replies
func WithMaxRetries(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithMaxAPITries set max attempts for transient api errors
func WithMaxAPITries(n uint) Option {
	return func(c *Config) {
		if n > 0 {
			c.maxAPITries = n
		}
	}
}

// WithValidation enables or disables struct validation of decoded output
func WithValidation(enabled bool) Option {
	return func(c *Config) {
		c.validate = enabled
	}
}

// WithBackOff set the backoff policy factory for transient api errors
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(c *Config) {
		if fn != nil {
			c.backOff = fn
		}
	}
}

// WithLogger set client logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.logger = l
		}
	}
}
