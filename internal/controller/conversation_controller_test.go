package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"beaglemind-be/internal/dto"
	"beaglemind-be/internal/pkg/logger"
	"beaglemind-be/internal/service"
	"beaglemind-be/pkg/conversation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// upstream records the last request body per path and replies from a fixed table.
type upstream struct {
	bodies map[string]map[string]interface{}
	status map[string]int
	reply  map[string]string
}

func newUpstream(t *testing.T) (*upstream, *httptest.Server) {
	u := &upstream{
		bodies: map[string]map[string]interface{}{},
		status: map[string]int{},
		reply: map[string]string{
			"/api/conversations":          `{"id":"conv-1"}`,
			"/api/conversations/list":     `{"items":[{"id":"conv-1","title":"LEDs","lastMessage":"hi","updatedAt":"2026-01-01"}]}`,
			"/api/conversations/messages": `{"items":[{"role":"user","content":"hi"}]}`,
			"/api/conversations/delete":   `{"deleted":1}`,
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body := map[string]interface{}{}
		_ = json.Unmarshal(raw, &body)
		u.bodies[r.URL.Path] = body

		code := http.StatusOK
		if c, ok := u.status[r.URL.Path]; ok {
			code = c
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = io.WriteString(w, u.reply[r.URL.Path])
	}))
	t.Cleanup(srv.Close)
	return u, srv
}

func newConversationApp(baseURL string) *fiber.App {
	app := newTestApp()
	client := conversation.NewClient(baseURL, time.Second, logger.NewNopLogger())
	NewConversationController(service.NewConversationService(client), testSecret).RegisterRoutes(app)
	return app
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestConversationCreateForwardsIdentity(t *testing.T) {
	up, srv := newUpstream(t)
	app := newConversationApp(srv.URL)

	req := httptest.NewRequest(fiber.MethodPost, "/conversations/create", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signedToken(t, jwt.MapClaims{
		"user_id": "u-42",
		"email":   "dev@example.com",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var envelope struct {
		Data dto.CreateConversationResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "conv-1", envelope.Data.Id)

	sent := up.bodies["/api/conversations"]
	assert.Equal(t, "u-42", sent["user_id"])
	assert.Equal(t, "dev@example.com", sent["user_email"])
	assert.Equal(t, "New Chat", sent["title"])
}

func TestConversationListIsEmptyForAnonymous(t *testing.T) {
	up, srv := newUpstream(t)
	status, body, _ := postJSON(t, newConversationApp(srv.URL), "/conversations/list", "")

	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"items":[]`)
	assert.NotContains(t, up.bodies, "/api/conversations/list")
}

func TestConversationRelaysUpstreamErrors(t *testing.T) {
	up, srv := newUpstream(t)
	up.status["/api/conversations/messages"] = http.StatusNotFound
	up.reply["/api/conversations/messages"] = `{"error":"conversation not found"}`

	status, body, _ := postJSON(t, newConversationApp(srv.URL), "/conversations/messages", dto.ConversationRef{ConversationId: "missing"})

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Contains(t, body, "conversation not found")
}

func TestConversationRoutes(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     interface{}
		wantCode int
		wantBody string
	}{
		{
			name:     "messages",
			path:     "/conversations/messages",
			body:     dto.ConversationRef{ConversationId: "conv-1"},
			wantCode: fiber.StatusOK,
			wantBody: `"content":"hi"`,
		},
		{
			name: "append",
			path: "/conversations/append",
			body: dto.AppendMessagesRequest{
				ConversationId: "conv-1",
				Messages:       []conversation.Message{{Role: "assistant", Content: "hello"}},
			},
			wantCode: fiber.StatusOK,
		},
		{
			name:     "append rejects bad role",
			path:     "/conversations/append",
			body:     dto.AppendMessagesRequest{ConversationId: "conv-1", Messages: []conversation.Message{{Role: "robot"}}},
			wantCode: fiber.StatusBadRequest,
		},
		{
			name:     "title requires title",
			path:     "/conversations/title",
			body:     dto.UpdateTitleRequest{ConversationId: "conv-1"},
			wantCode: fiber.StatusBadRequest,
		},
		{
			name:     "delete",
			path:     "/conversations/delete",
			body:     dto.ConversationRef{ConversationId: "conv-1"},
			wantCode: fiber.StatusOK,
			wantBody: `"status":"deleted"`,
		},
		{
			name:     "delete requires id",
			path:     "/conversations/delete",
			body:     dto.ConversationRef{},
			wantCode: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newUpstream(t)
			status, body, _ := postJSON(t, newConversationApp(srv.URL), tt.path, tt.body)
			assert.Equal(t, tt.wantCode, status)
			assert.Contains(t, body, tt.wantBody)
		})
	}
}
