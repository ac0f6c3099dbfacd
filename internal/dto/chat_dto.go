package dto

import (
	"strings"

	"beaglemind-be/pkg/llm"
)

// ChatMessagePart is one UI message part. Only text parts carry model input.
type ChatMessagePart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type ChatMessage struct {
	Role    string            `json:"role" validate:"required,oneof=user assistant system"`
	Content string            `json:"content,omitempty"`
	Parts   []ChatMessagePart `json:"parts,omitempty"`
}

// Text returns Content, or the text parts joined by a space.
func (m ChatMessage) Text() string {
	if m.Content != "" {
		return m.Content
	}
	var texts []string
	for _, p := range m.Parts {
		if p.Type == "text" && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, " ")
}

type ChatRequestData struct {
	Tool string `json:"tool,omitempty"` // websearch | knowledge | both
}

type ChatRequest struct {
	Messages []ChatMessage   `json:"messages" validate:"required,min=1,dive"`
	Data     ChatRequestData `json:"data"`
	Provider string          `json:"provider,omitempty"`
	Model    string          `json:"model,omitempty"`
}

// History converts the UI messages to model messages, dropping empty ones.
func (r *ChatRequest) History() []llm.Message {
	history := make([]llm.Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		text := m.Text()
		if text == "" {
			continue
		}
		history = append(history, llm.Message{Role: m.Role, Content: text})
	}
	return history
}

// ChatMeta is the first event of every chat stream.
type ChatMeta struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Fallback  bool   `json:"fallback"`
	Included  int    `json:"included"`
	Retrieval string `json:"retrieval"` // ok | empty | unavailable | skipped
	Tokens    int    `json:"prompt_tokens"`
}

type ChatDelta struct {
	Content string `json:"content"`
}

type ChatStreamError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ChatDone struct {
	FinishReason string `json:"finish_reason"`
}

// ChatFrame is one WebSocket frame: meta, delta, error or done.
type ChatFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}
