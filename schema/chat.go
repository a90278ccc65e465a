package schema

// Input is the default user input schema
type Input struct {
	Base
	// ChatMessage is the chat message from the user
	ChatMessage string `json:"chat_message" jsonschema:"title=chat_message,description=The chat message sent by the user to the assistant." validate:"required"`
}

// NewInput returns a new Input
func NewInput(msg string) *Input {
	return &Input{ChatMessage: msg}
}

func (s Input) String() string {
	return s.ChatMessage
}

// Output is the default assistant output schema
type Output struct {
	Base
	// ChatMessage is the chat message from the assistant
	ChatMessage string `json:"chat_message" jsonschema:"title=chat_message,description=The chat message exchanged between the user and the chat agent. This contains the markdown-enabled response generated by the chat agent." validate:"required"`
}

// NewOutput returns a new Output
func NewOutput(msg string) *Output {
	return &Output{ChatMessage: msg}
}

func (s Output) String() string {
	return s.ChatMessage
}
