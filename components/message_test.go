package components

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/generative-ai-go/genai"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/atomic-crew/schema"
)

func TestMessageMarshaler(t *testing.T) {
	var buf bytes.Buffer
	msg := NewMessage(UserRole, schema.NewString("test string schema")).SetTurnID("turn-1")
	require.NoError(t, json.NewEncoder(&buf).Encode(msg))
	var decoded Message
	require.NoError(t, json.NewDecoder(&buf).Decode(&decoded))
	assert.Equal(t, msg.StringifiedContent(), decoded.StringifiedContent())
	assert.Equal(t, UserRole, decoded.Role())
	assert.Equal(t, "turn-1", decoded.TurnID())
}

func TestMessageToOpenAI(t *testing.T) {
	var dist openai.ChatCompletionMessage
	NewMessage(ToolRole, schema.String("Observation: ok")).ToOpenAI(&dist)
	assert.Equal(t, openai.ChatMessageRoleUser, dist.Role)
	assert.Equal(t, "Observation: ok", dist.Content)

	NewMessage(AssistantRole, schema.NewOutput("done")).ToOpenAI(&dist)
	assert.Equal(t, openai.ChatMessageRoleAssistant, dist.Role)
	assert.Equal(t, "done", dist.Content)
}

func TestMessageToAnthropic(t *testing.T) {
	var dist anthropic.Message
	NewMessage(AssistantRole, schema.String("answer")).ToAnthropic(&dist)
	assert.Equal(t, anthropic.RoleAssistant, dist.Role)
	require.Len(t, dist.Content, 1)
	assert.Equal(t, "answer", dist.Content[0].GetText())

	NewMessage(ToolRole, schema.String("obs")).ToAnthropic(&dist)
	assert.Equal(t, anthropic.RoleUser, dist.Role)
}

func TestMessageToCohere(t *testing.T) {
	msg := NewMessage(AssistantRole, schema.String("answer")).ToCohere()
	assert.Equal(t, "CHATBOT", msg.Role)
	require.NotNil(t, msg.Chatbot)
	assert.Equal(t, "answer", msg.Chatbot.Message)

	msg = NewMessage(ToolRole, schema.String("obs")).ToCohere()
	assert.Equal(t, "USER", msg.Role)
	require.NotNil(t, msg.User)
	assert.Equal(t, "obs", msg.User.Message)
}

func TestMessageToGemini(t *testing.T) {
	content := NewMessage(AssistantRole, schema.String("answer")).ToGemini()
	assert.Equal(t, "model", content.Role)
	require.Len(t, content.Parts, 1)
	assert.Equal(t, genai.Text("answer"), content.Parts[0])

	assert.Equal(t, "user", NewMessage(ToolRole, schema.String("obs")).ToGemini().Role)
}
