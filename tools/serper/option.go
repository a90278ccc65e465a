package serper

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/bububa/atomic-crew/tools"
)

type Option func(*Config)

func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.apiKey = key
	}
}

// WithEndpoint overrides the search endpoint, mostly useful for tests
func WithEndpoint(endpoint string) Option {
	return func(c *Config) {
		c.endpoint = endpoint
	}
}

// WithCountry sets the gl parameter, e.g. "us"
func WithCountry(gl string) Option {
	return func(c *Config) {
		c.country = gl
	}
}

// WithLocale sets the hl parameter, e.g. "en"
func WithLocale(hl string) Option {
	return func(c *Config) {
		c.locale = hl
	}
}

func WithMaxResults(n int) Option {
	return func(c *Config) {
		c.maxResults = n
	}
}

// WithRateLimit limits outgoing requests to rps per second with the given burst
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Config) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithHttpClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}

func WithToolOptions(opts ...tools.Option) Option {
	return func(c *Config) {
		tools.Apply(&c.Config, opts...)
	}
}
