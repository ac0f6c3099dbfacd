// Package conversation forwards chat history operations to the external conversation API.
package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"beaglemind-be/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	logModule   = "ConversationClient"
	tracerName  = "beaglemind/conversation"
	defaultList = 50
)

// Identity is the optional caller identity attached to create and list.
type Identity struct {
	UserID    string `json:"user_id,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

func (i Identity) Anonymous() bool {
	return i.UserID == "" && i.UserEmail == ""
}

type Message struct {
	ID      string `json:"id,omitempty"`
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content"`
}

type Summary struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	LastMessage string `json:"lastMessage,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// UpstreamError carries a non-2xx reply so it can be relayed with the same status.
type UpstreamError struct {
	StatusCode int
	Message    string
	Body       json.RawMessage
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("conversation API: status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logger.ILogger
}

func NewClient(baseURL string, timeout time.Duration, log logger.ILogger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type createRequest struct {
	Identity
	Title        string `json:"title"`
	FirstMessage string `json:"first_message,omitempty"`
}

// Create starts a conversation and returns its id.
func (c *Client) Create(ctx context.Context, id Identity, title, firstMessage string) (string, error) {
	if strings.TrimSpace(title) == "" {
		title = "New Chat"
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/api/conversations", createRequest{Identity: id, Title: title, FirstMessage: firstMessage}, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

type appendRequest struct {
	ConversationID string    `json:"conversation_id"`
	Messages       []Message `json:"messages"`
	LastPreview    string    `json:"last_preview,omitempty"`
}

func (c *Client) Append(ctx context.Context, conversationID string, messages []Message, lastPreview string) error {
	return c.post(ctx, "/api/conversations/append", appendRequest{
		ConversationID: conversationID,
		Messages:       messages,
		LastPreview:    lastPreview,
	}, nil)
}

type listRequest struct {
	Identity
	Limit int `json:"limit"`
}

// List returns the caller's conversations. Anonymous callers and upstream failures get
// an empty list so the sidebar keeps working.
func (c *Client) List(ctx context.Context, id Identity) []Summary {
	items := []Summary{}
	if id.Anonymous() {
		return items
	}

	var out struct {
		Items []Summary `json:"items"`
	}
	if err := c.post(ctx, "/api/conversations/list", listRequest{Identity: id, Limit: defaultList}, &out); err != nil {
		c.log.Warn(logModule, "Conversation list unavailable", map[string]interface{}{"error": err.Error()})
		return items
	}
	if out.Items != nil {
		items = out.Items
	}
	return items
}

type conversationRef struct {
	ConversationID string `json:"conversation_id"`
}

func (c *Client) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	var out struct {
		Items []Message `json:"items"`
	}
	if err := c.post(ctx, "/api/conversations/messages", conversationRef{ConversationID: conversationID}, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []Message{}
	}
	return out.Items, nil
}

type titleRequest struct {
	ConversationID string `json:"conversation_id"`
	Title          string `json:"title"`
}

func (c *Client) UpdateTitle(ctx context.Context, conversationID, title string) error {
	return c.post(ctx, "/api/conversations/title", titleRequest{ConversationID: conversationID, Title: title}, nil)
}

// Delete removes a conversation and returns the upstream deletion counts.
func (c *Client) Delete(ctx context.Context, conversationID string) (map[string]any, error) {
	var out struct {
		Result map[string]any `json:"result"`
	}
	if err := c.post(ctx, "/api/conversations/delete", conversationRef{ConversationID: conversationID}, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "conversation "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.route", path)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("conversation request failed: %w", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upstream := &UpstreamError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if json.Valid(raw) {
			upstream.Body = raw
		}
		return upstream
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
