package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abc"))
	assert.Equal(t, 2, EstimateTokens("abcdefgh"))
	assert.Equal(t, 1, EstimateTokens("日本語"))
}

func TestTruncateTokens(t *testing.T) {
	text := strings.Repeat("word ", 100)
	assert.Equal(t, text, TruncateTokens(EstimateCounter, text, 0))
	assert.Equal(t, text, TruncateTokens(EstimateCounter, text, 1000))

	cut := TruncateTokens(EstimateCounter, text, 10)
	assert.Equal(t, 40, len(cut))
	assert.True(t, strings.HasPrefix(text, cut))
	assert.LessOrEqual(t, EstimateCounter.Count(cut), 10)
}
