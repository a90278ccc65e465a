// Package llmtest provides a scripted llm.Client for tests
package llmtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	jsonenc "github.com/bububa/instructor-go/encoding/json"

	"github.com/bububa/atomic-crew/components"
	"github.com/bububa/atomic-crew/llm"
	"github.com/bububa/atomic-crew/schema"
)

// ErrExhausted is returned when the script has no reply left
var ErrExhausted = errors.New("llmtest: script exhausted")

// Reply is a scripted reply, Err takes precedence over Content
type Reply struct {
	Content string
	Err     error
}

// Responder computes a reply from the request, used instead of a fixed script
type Responder func(req *llm.Request) Reply

// Scripted is a llm.Client replaying replies in order
type Scripted struct {
	mu        sync.Mutex
	replies   []Reply
	responder Responder
	requests  []llm.Request
}

var _ llm.Client = (*Scripted)(nil)

// New returns a Scripted client replying contents in order
func New(contents ...string) *Scripted {
	ret := new(Scripted)
	for _, v := range contents {
		ret.replies = append(ret.replies, Reply{Content: v})
	}
	return ret
}

// NewResponder returns a Scripted client computing replies with fn
func NewResponder(fn Responder) *Scripted {
	return &Scripted{responder: fn}
}

// JSON encodes v as a reply content, it panics on encoding errors
func JSON(v any) string {
	bs, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(bs)
}

// Push appends replies to the script
func (s *Scripted) Push(replies ...Reply) *Scripted {
	s.mu.Lock()
	s.replies = append(s.replies, replies...)
	s.mu.Unlock()
	return s
}

func (s *Scripted) Provider() llm.Provider {
	return "scripted"
}

// Requests returns the recorded requests
func (s *Scripted) Requests() []llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := make([]llm.Request, len(s.requests))
	copy(ret, s.requests)
	return ret
}

// Chat implements llm.Client interface
func (s *Scripted) Chat(ctx context.Context, req *llm.Request, out any, apiResp *components.LLMResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	recorded := *req
	recorded.Messages = append([]components.Message(nil), req.Messages...)
	s.requests = append(s.requests, recorded)
	var (
		reply Reply
		found bool
	)
	if s.responder != nil {
		reply, found = s.responder(&recorded), true
	} else if len(s.replies) > 0 {
		reply, s.replies, found = s.replies[0], s.replies[1:], true
	}
	s.mu.Unlock()
	if !found {
		return ErrExhausted
	}
	if reply.Err != nil {
		return reply.Err
	}
	if apiResp != nil {
		if apiResp.Usage == nil {
			apiResp.Usage = new(components.LLMUsage)
		}
		apiResp.Usage.Merge(&components.LLMUsage{InputTokens: 10, OutputTokens: 5})
		apiResp.Role = components.AssistantRole
		apiResp.Model = req.Model
	}
	switch v := out.(type) {
	case *schema.String:
		*v = schema.String(reply.Content)
		return nil
	case *string:
		*v = reply.Content
		return nil
	}
	enc, err := jsonenc.NewEncoder(out)
	if err != nil {
		return err
	}
	if err := enc.Unmarshal([]byte(reply.Content), out); err != nil {
		return fmt.Errorf("llmtest: decode reply: %w", err)
	}
	return schema.Validate(out)
}
