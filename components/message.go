package components

import (
	"encoding/json"

	cohere "github.com/cohere-ai/cohere-go/v2"
	"github.com/google/generative-ai-go/genai"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	"github.com/rs/xid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/atomic-crew/schema"
)

// NewTurnID returns a new turn ID.
func NewTurnID() string {
	return xid.New().String()
}

// MessageRole is the role of the message sender (e.g., 'user', 'system', 'tool')
type MessageRole = string

const (
	SystemRole    MessageRole = "system"
	UserRole      MessageRole = "user"
	AssistantRole MessageRole = "assistant"
	ToolRole      MessageRole = "tool"
)

// Message  Represents a message in the chat history.
type Message struct {
	content schema.Schema
	// role is the role of the message sender (e.g., 'user', 'system', 'tool')
	role MessageRole
	//	turnID is Unique identifier for the turn this message belongs to.
	turnID string
}

// NewMessage returns a new Message
func NewMessage(role MessageRole, content schema.Schema) *Message {
	return &Message{
		role:    role,
		content: content,
	}
}

// SetTurnID set message turnID
func (m *Message) SetTurnID(turnID string) *Message {
	m.turnID = turnID
	return m
}

// Role returns message role
func (m Message) Role() MessageRole {
	return m.role
}

// Content returns message content
func (m Message) Content() schema.Schema {
	return m.content
}

// StringifiedContent returns message content as text
func (m Message) StringifiedContent() string {
	return schema.Stringify(m.content)
}

// TurnID returns message turnID
func (m Message) TurnID() string {
	return m.turnID
}

type messageJSON struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
	TurnID  string      `json:"turn_id,omitempty"`
}

// MarshalJSON implements json.Marshaler interface
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{
		Role:    m.role,
		Content: m.StringifiedContent(),
		TurnID:  m.turnID,
	})
}

// UnmarshalJSON implements json.Unmarshaler interface, content is decoded as a String schema
func (m *Message) UnmarshalJSON(bs []byte) error {
	var v messageJSON
	if err := json.Unmarshal(bs, &v); err != nil {
		return err
	}
	m.role = v.Role
	m.content = schema.String(v.Content)
	m.turnID = v.TurnID
	return nil
}

// ToOpenAI convert message to openai ChatCompletionMessage
func (m Message) ToOpenAI(dist *openai.ChatCompletionMessage) {
	dist.Role = m.role
	if m.role == ToolRole {
		// tool observations are replayed as user turns, no native tool call ids exist
		dist.Role = UserRole
	}
	dist.Content = m.StringifiedContent()
}

// ToAnthropic convert message to anthropic Message
func (m Message) ToAnthropic(dist *anthropic.Message) {
	switch m.role {
	case AssistantRole:
		dist.Role = anthropic.RoleAssistant
	default:
		dist.Role = anthropic.RoleUser
	}
	dist.Content = []anthropic.MessageContent{anthropic.NewTextMessageContent(m.StringifiedContent())}
}

// ToCohere convert message to a cohere chat history entry
func (m Message) ToCohere() *cohere.Message {
	msg := &cohere.ChatMessage{Message: m.StringifiedContent()}
	switch m.role {
	case AssistantRole:
		return &cohere.Message{Role: "CHATBOT", Chatbot: msg}
	case SystemRole:
		return &cohere.Message{Role: "SYSTEM", System: msg}
	default:
		return &cohere.Message{Role: "USER", User: msg}
	}
}

// ToGemini convert message to gemini Content, assistant turns are sent as the model role
func (m Message) ToGemini() *genai.Content {
	role := "user"
	if m.role == AssistantRole {
		role = "model"
	}
	return &genai.Content{
		Role:  role,
		Parts: []genai.Part{genai.Text(m.StringifiedContent())},
	}
}
