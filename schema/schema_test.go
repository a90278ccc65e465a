package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Base
	Name  string   `json:"name" jsonschema:"title=name,description=Full name" validate:"required"`
	Email string   `json:"email,omitempty" jsonschema:"title=email" validate:"omitempty,email"`
	Tags  []string `json:"tags,omitempty" jsonschema:"title=tags,description=List of tags"`
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "plain", Stringify(String("plain")))
	assert.Equal(t, "pointer", Stringify(NewString("pointer")))
	assert.Equal(t, "hello", Stringify(NewOutput("hello")))
	assert.Equal(t, "", Stringify(nil))
	assert.JSONEq(t, `{"name":"Alice","tags":["a"]}`, Stringify(profile{Name: "Alice", Tags: []string{"a"}}))
}

func TestJSONSchema(t *testing.T) {
	raw, err := JSONSchema(new(profile))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "object", doc["type"])
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok, "properties should be an object")
	assert.Contains(t, props, "name")
	assert.Contains(t, props, "email")
	assert.Contains(t, props, "tags")
	assert.NotContains(t, raw, "$ref")

	again, err := JSONSchema(profile{})
	require.NoError(t, err)
	assert.Equal(t, raw, again)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(&profile{Name: "Bob"}))
	assert.Error(t, Validate(&profile{}))
	assert.Error(t, Validate(profile{Name: "Bob", Email: "not-an-email"}))
	assert.NoError(t, Validate("not a struct"))
	var nilProfile *profile
	assert.NoError(t, Validate(nilProfile))
}
