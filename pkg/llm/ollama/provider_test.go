package ollama

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
)

func ndjsonServer(t *testing.T, lines ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.Equal(t, "assistant", req.Messages[1].Role)

		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaStream(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		want    string
		wantErr bool
	}{
		{
			name: "fragments until done",
			lines: []string{
				`{"message":{"role":"assistant","content":"Beagle"},"done":false}`,
				``,
				`{"message":{"role":"assistant","content":"Bone"},"done":false}`,
				`{"message":{"role":"assistant","content":""},"done":true}`,
				`{"message":{"role":"assistant","content":"late"},"done":false}`,
			},
			want: "BeagleBone",
		},
		{
			name: "error object",
			lines: []string{
				`{"message":{"content":"partial"},"done":false}`,
				`{"error":"model not found"}`,
			},
			want:    "partial",
			wantErr: true,
		},
		{
			name:    "garbage line",
			lines:   []string{`not json`},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := ndjsonServer(t, tt.lines...)
			p := NewOllamaProvider(srv.URL, "llama3")

			history := []llm.Message{{Role: "user", Content: "hi"}, {Role: "model", Content: "hello"}}
			got, err := llm.Collect(p.Stream(context.Background(), history))

			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.True(t, llm.IsDispatchError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOllamaStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "llama3").Chat(context.Background(), nil)

	var de *llm.DispatchError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, http.StatusServiceUnavailable, de.StatusCode)
	assert.Equal(t, "ollama", de.Provider)
}
