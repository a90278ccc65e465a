package components

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const (
	defaultEncoding = "cl100k_base"
	// estimateCharsPerToken is used when no BPE encoding is available
	estimateCharsPerToken = 4
)

// TokenCounter counts tokens of a text for a model
type TokenCounter interface {
	Count(text string) int
}

// TiktokenCounter counts tokens with the tiktoken encoding of a model.
// When the encoding can not be loaded it falls back to an estimate.
type TiktokenCounter struct {
	model string
	once  sync.Once
	enc   *tiktoken.Tiktoken
}

var _ TokenCounter = (*TiktokenCounter)(nil)

// NewTiktokenCounter returns a TokenCounter for the model
func NewTiktokenCounter(model string) *TiktokenCounter {
	return &TiktokenCounter{model: model}
}

func (c *TiktokenCounter) load() {
	if enc, err := tiktoken.EncodingForModel(c.model); err == nil {
		c.enc = enc
		return
	}
	if enc, err := tiktoken.GetEncoding(defaultEncoding); err == nil {
		c.enc = enc
	}
}

// Count implements TokenCounter interface
func (c *TiktokenCounter) Count(text string) int {
	c.once.Do(c.load)
	if c.enc == nil {
		return EstimateTokens(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

type estimateCounter struct{}

func (estimateCounter) Count(text string) int {
	return EstimateTokens(text)
}

// EstimateCounter is a TokenCounter which never touches a BPE file
var EstimateCounter TokenCounter = estimateCounter{}

// EstimateTokens estimates the token count of text at four runes per token
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + estimateCharsPerToken - 1) / estimateCharsPerToken
}

// TruncateTokens keeps the leading part of text which fits in maxTokens.
// A non-positive maxTokens returns text unchanged
func TruncateTokens(counter TokenCounter, text string, maxTokens int) string {
	if maxTokens <= 0 || counter.Count(text) <= maxTokens {
		return text
	}
	runes := []rune(text)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if counter.Count(string(runes[:mid])) <= maxTokens {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return string(runes[:lo])
}
