package llm

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/bububa/instructor-go"
	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/bububa/atomic-crew/components"
	"github.com/bububa/atomic-crew/schema"
)

// chatRequest is a provider neutral request, system messages are joined into System
type chatRequest struct {
	Model       string
	Temperature float32
	MaxTokens   int
	System      string
	Messages    []components.Message
	Mode        instructor.Mode
}

// backend runs one chat through the provider instructor.
// Errors carrying an http status are returned as *StatusError
type backend interface {
	provider() Provider
	chat(ctx context.Context, req *chatRequest, out any, opts []instructor.Option, apiResp *components.LLMResponse) error
}

// Instructor implements Client on top of a provider backend
type Instructor struct {
	Config
	backend backend
}

var _ Client = (*Instructor)(nil)

func newInstructor(b backend, opts ...Option) *Instructor {
	ret := &Instructor{
		Config:  defaultConfig(),
		backend: b,
	}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	return ret
}

func (i *Instructor) Provider() Provider {
	return i.backend.provider()
}

// Chat implements Client interface
func (i *Instructor) Chat(ctx context.Context, req *Request, out any, apiResp *components.LLMResponse) error {
	if apiResp == nil {
		apiResp = new(components.LLMResponse)
	}
	chatReq := &chatRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Mode:        instructor.ModeJSON,
	}
	var system []string
	for _, msg := range req.Messages {
		if msg.Role() == components.SystemRole {
			system = append(system, msg.StringifiedContent())
			continue
		}
		chatReq.Messages = append(chatReq.Messages, msg)
	}
	chatReq.System = strings.Join(system, "\n\n")
	var (
		text   string
		target = out
	)
	setText, isText := textTarget(out)
	if isText {
		chatReq.Mode = instructor.ModePlainText
		target = &text
	}
	opts := []instructor.Option{
		instructor.WithMode(chatReq.Mode),
		instructor.WithMaxRetries(i.maxRetries),
	}
	if i.validate && !isText {
		opts = append(opts, instructor.WithValidation())
	}
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := i.backend.chat(ctx, chatReq, target, opts, apiResp)
		if err == nil {
			return struct{}{}, nil
		}
		if !isTransient(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		i.logger.Warn("transient llm error, retrying", zap.String("provider", string(i.Provider())), zap.Error(err))
		return struct{}{}, err
	}, backoff.WithBackOff(i.backOff()), backoff.WithMaxTries(i.maxAPITries))
	if err != nil {
		if isText || isAPIError(err) {
			return err
		}
		i.logger.Debug("invalid structured response",
			zap.String("provider", string(i.Provider())),
			zap.Int("attempts", i.maxRetries+1),
			zap.Error(err))
		return &RetryError{Attempts: i.maxRetries + 1, Err: err}
	}
	if isText {
		if strings.TrimSpace(text) == "" {
			return ErrEmptyResponse
		}
		setText(text)
	}
	if apiResp.Model == "" {
		apiResp.Model = req.Model
	}
	return nil
}

// textTarget returns a setter when out expects free text
func textTarget(out any) (func(string), bool) {
	switch v := out.(type) {
	case *schema.String:
		return func(s string) { *v = schema.String(s) }, true
	case *string:
		return func(s string) { *v = s }, true
	}
	return nil, false
}

// isAPIError reports errors raised by the transport rather than by decoding the reply
func isAPIError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Transient()
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
