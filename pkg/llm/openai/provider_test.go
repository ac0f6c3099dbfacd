package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"beaglemind-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func sseServer(t *testing.T, events ...string) (*httptest.Server, *chatRequest) {
	t.Helper()
	var got chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, ev := range events {
			fmt.Fprintf(w, "data: %s\n\n", ev)
			w.(http.Flusher).Flush()
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func delta(s string) string {
	return fmt.Sprintf(`{"choices":[{"delta":{"content":%q}}]}`, s)
}

func TestStream(t *testing.T) {
	srv, got := sseServer(t, delta("Hello"), delta(", "), `{"choices":[{"delta":{}}]}`, delta("world"), "[DONE]", delta("ignored"))
	p := NewProvider("openai", "sk-test", srv.URL, "gpt-4o")

	history := []llm.Message{{Role: llm.RoleSystem, Content: "sys"}, {Role: llm.RoleUser, Content: "hi"}}

	var chunks []string
	for chunk, err := range p.Stream(context.Background(), history, llm.WithModel("gpt-4o-mini"), llm.WithTemperature(0.2)) {
		require.NoError(t, err)
		chunks = append(chunks, chunk)
	}

	assert.Equal(t, []string{"Hello", ", ", "world"}, chunks)
	assert.True(t, got.Stream)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, history, got.Messages)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.2, *got.Temperature, 1e-9)
}

func TestStreamEarlyBreak(t *testing.T) {
	srv, _ := sseServer(t, delta("a"), delta("b"), delta("c"), "[DONE]")
	p := NewProvider("openai", "sk-test", srv.URL, "gpt-4o")

	var chunks []string
	for chunk, err := range p.Stream(context.Background(), nil) {
		require.NoError(t, err)
		chunks = append(chunks, chunk)
		break
	}
	assert.Equal(t, []string{"a"}, chunks)
}

func TestStreamErrors(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "non-200",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
			},
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name: "error event",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "data: {\"error\":{\"message\":\"boom\"}}\n\n")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			p := NewProvider("groq", "sk-test", srv.URL, "llama")
			_, err := llm.Collect(p.Stream(context.Background(), nil))

			var de *llm.DispatchError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "groq", de.Provider)
			assert.Equal(t, "llama", de.Model)
			assert.Equal(t, tt.wantStatus, de.StatusCode)
		})
	}
}

func TestMissingKeyFailsWithoutRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()

	p := NewProvider("openai", "", srv.URL, "gpt-4o")
	_, err := p.Chat(context.Background(), nil)

	assert.True(t, llm.IsDispatchError(err))
	assert.False(t, called)
}

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, 800, req.MaxTokens)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"{\"commands\":[]}"}}]}`)
	}))
	defer srv.Close()

	p := NewProvider("openai", "sk-test", srv.URL, "gpt-4o")
	out, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}}, llm.WithMaxTokens(800), llm.WithTemperature(0))

	require.NoError(t, err)
	assert.Equal(t, `{"commands":[]}`, out)
}
