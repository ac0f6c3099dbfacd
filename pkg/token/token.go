// Package token estimates prompt sizes for logs and usage events.
package token

import (
	"fmt"
	"unicode/utf8"

	"beaglemind-be/pkg/llm"

	"github.com/pkoukk/tiktoken-go"
)

// perMessageOverhead approximates the role and separator tokens of chat formatting.
const perMessageOverhead = 4

type Counter struct {
	enc *tiktoken.Tiktoken
}

func New(encoding string) (*Counter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", encoding, err)
	}
	return &Counter{enc: enc}, nil
}

// NewEstimator returns a Counter that approximates one token per four runes. It is used
// when the BPE tables cannot be loaded.
func NewEstimator() *Counter {
	return &Counter{}
}

func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c == nil || c.enc == nil {
		return (utf8.RuneCountInString(text) + 3) / 4
	}
	return len(c.enc.Encode(text, nil, nil))
}

// CountPrompt counts the system prompt plus every history message.
func (c *Counter) CountPrompt(systemPrompt string, history []llm.Message) int {
	total := 0
	if systemPrompt != "" {
		total += c.Count(systemPrompt) + perMessageOverhead
	}
	for _, m := range history {
		total += c.Count(m.Content) + perMessageOverhead
	}
	return total
}
