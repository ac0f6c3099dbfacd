package conversation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"beaglemind-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	path string
	body map[string]any
}

func newTestClient(t *testing.T, status int, reply string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &rec.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second, logger.NewNopLogger()), rec
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		wantTitle string
	}{
		{"explicit title", "GPIO help", "GPIO help"},
		{"default title", "  ", "New Chat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestClient(t, http.StatusOK, `{"id":"conv-1"}`)

			id, err := c.Create(context.Background(), Identity{UserID: "u1", UserEmail: "a@b.c"}, tt.title, "hello")

			require.NoError(t, err)
			assert.Equal(t, "conv-1", id)
			assert.Equal(t, "/api/conversations", rec.path)
			assert.Equal(t, tt.wantTitle, rec.body["title"])
			assert.Equal(t, "u1", rec.body["user_id"])
			assert.Equal(t, "a@b.c", rec.body["user_email"])
			assert.Equal(t, "hello", rec.body["first_message"])
		})
	}
}

func TestListDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		status   int
		reply    string
		want     int
		wantCall bool
	}{
		{"anonymous", Identity{}, http.StatusOK, `{"items":[{"id":"x"}]}`, 0, false},
		{"upstream error", Identity{UserID: "u1"}, http.StatusInternalServerError, `{"detail":"boom"}`, 0, true},
		{"garbage body", Identity{UserID: "u1"}, http.StatusOK, `not json`, 0, true},
		{"null items", Identity{UserEmail: "a@b.c"}, http.StatusOK, `{"items":null}`, 0, true},
		{"ok", Identity{UserID: "u1"}, http.StatusOK, `{"items":[{"id":"c1","title":"t"},{"id":"c2"}]}`, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestClient(t, tt.status, tt.reply)

			items := c.List(context.Background(), tt.identity)

			assert.NotNil(t, items)
			assert.Len(t, items, tt.want)
			if tt.wantCall {
				assert.Equal(t, "/api/conversations/list", rec.path)
				assert.Equal(t, float64(defaultList), rec.body["limit"])
			} else {
				assert.Empty(t, rec.path)
			}
		})
	}
}

func TestUpstreamErrorIsRelayed(t *testing.T) {
	c, _ := newTestClient(t, http.StatusNotFound, `{"detail":"Conversation not found"}`)

	_, err := c.Messages(context.Background(), "missing")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
	assert.JSONEq(t, `{"detail":"Conversation not found"}`, string(upstream.Body))
}

func TestMessagesAppendTitleDelete(t *testing.T) {
	t.Run("messages", func(t *testing.T) {
		c, rec := newTestClient(t, http.StatusOK, `{"items":[{"role":"user","content":"hi"}]}`)

		msgs, err := c.Messages(context.Background(), "c1")

		require.NoError(t, err)
		assert.Equal(t, []Message{{Role: "user", Content: "hi"}}, msgs)
		assert.Equal(t, "/api/conversations/messages", rec.path)
		assert.Equal(t, "c1", rec.body["conversation_id"])
	})

	t.Run("append", func(t *testing.T) {
		c, rec := newTestClient(t, http.StatusOK, `{"status":"ok"}`)

		err := c.Append(context.Background(), "c1", []Message{{Role: "assistant", Content: "answer"}}, "answer")

		require.NoError(t, err)
		assert.Equal(t, "/api/conversations/append", rec.path)
		assert.Equal(t, "answer", rec.body["last_preview"])
		assert.Len(t, rec.body["messages"], 1)
	})

	t.Run("title", func(t *testing.T) {
		c, rec := newTestClient(t, http.StatusOK, ``)

		require.NoError(t, c.UpdateTitle(context.Background(), "c1", "Renamed"))
		assert.Equal(t, "/api/conversations/title", rec.path)
		assert.Equal(t, "Renamed", rec.body["title"])
	})

	t.Run("delete", func(t *testing.T) {
		c, rec := newTestClient(t, http.StatusOK, `{"status":"deleted","result":{"messages":3}}`)

		result, err := c.Delete(context.Background(), "c1")

		require.NoError(t, err)
		assert.Equal(t, "/api/conversations/delete", rec.path)
		assert.Equal(t, float64(3), result["messages"])
	})
}
