package crew

import (
	"encoding/json"

	"github.com/bububa/atomic-crew/schema"
)

// Step is one reasoning step of an agent: either a tool action or the final answer
type Step struct {
	schema.Base
	// Thought what the agent thinks about the current situation
	Thought string `json:"thought" jsonschema:"title=thought,description=Your reasoning about what to do next."`
	// Action exact name of the tool to use
	Action string `json:"action,omitempty" jsonschema:"title=action,description=Exact name of the tool to use. Leave empty when giving the final answer." validate:"required_without=FinalAnswer"`
	// ActionInput tool input matching the tool input JSON schema
	ActionInput any `json:"action_input,omitempty" jsonschema:"title=action_input,description=Input of the tool as a JSON object matching its input JSON schema."`
	// FinalAnswer the complete final answer of the task
	FinalAnswer string `json:"final_answer,omitempty" jsonschema:"title=final_answer,description=The complete final answer. Leave empty when using a tool." validate:"required_without=Action"`
}

// IsFinal reports whether the step carries the final answer
func (s Step) IsFinal() bool {
	return s.FinalAnswer != ""
}

// canonicalInput returns a stable presentation of a tool input, used as cache key.
// JSON strings are decoded first so `"{\"a\":1}"` and `{"a":1}` share a key
func canonicalInput(v any) string {
	if s, ok := v.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return s
		}
		v = decoded
	}
	bs, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(bs)
}
