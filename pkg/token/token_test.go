package token

import (
	"testing"

	"beaglemind-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

func TestEstimatorCount(t *testing.T) {
	c := NewEstimator()

	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"ééééééé", 2},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Count(tt.text))
		})
	}
}

func TestCountPrompt(t *testing.T) {
	c := NewEstimator()
	history := []llm.Message{
		{Role: llm.RoleUser, Content: "abcdefgh"},
		{Role: llm.RoleAssistant, Content: "abcd"},
	}

	assert.Equal(t, (1+4)+(2+4)+(1+4), c.CountPrompt("sys", history))
	assert.Equal(t, 2+4, c.CountPrompt("", history[:1]))
}

func TestNilCounterEstimates(t *testing.T) {
	var c *Counter
	assert.Equal(t, 2, c.Count("12345678"))
}
