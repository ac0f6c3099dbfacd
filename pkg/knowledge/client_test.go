package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"beaglemind-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "documents": [["first", "second"], ["third"]],
  "metadatas": [[{"file_name": "a.md", "source_link": "https://docs.beagleboard.org/a", "has_code": true}, null], [{"repo_name": "beagleboard_forum"}]],
  "distances": [[0.1, 0.2]],
  "total_found": 42,
  "filtered_results": 3
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{
		BaseURL:        srv.URL + "/",
		CollectionName: "beaglemind_col",
		FetchResults:   10,
		Timeout:        2 * time.Second,
	}, logger.NewNopLogger())
}

func TestRetrieveSendsContractBody(t *testing.T) {
	var got retrieveRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/retrieve", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(sampleResponse))
	})

	_, err := client.Retrieve(context.Background(), "  GPIO setup ", 5)
	require.NoError(t, err)

	assert.Equal(t, retrieveRequest{
		Query:           "GPIO setup",
		CollectionName:  "beaglemind_col",
		NResults:        10,
		IncludeMetadata: true,
		Rerank:          true,
	}, got)
}

func TestRetrieveFlattensInOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleResponse))
	})

	res, err := client.Retrieve(context.Background(), "q", 10)
	require.NoError(t, err)

	require.Len(t, res.Items, 3)
	assert.Equal(t, 42, res.TotalFound)
	assert.Equal(t, 3, res.FilteredResults)

	assert.Equal(t, "first", res.Items[0].Content)
	assert.Equal(t, 0.1, res.Items[0].Distance)
	assert.Equal(t, "a.md", res.Items[0].Metadata.FileName())
	assert.True(t, res.Items[0].Metadata.HasCode())

	assert.Equal(t, "second", res.Items[1].Content)
	assert.Equal(t, 0.2, res.Items[1].Distance)
	assert.NotNil(t, res.Items[1].Metadata)

	// missing distance group defaults to 0
	assert.Equal(t, "third", res.Items[2].Content)
	assert.Equal(t, 0.0, res.Items[2].Distance)
	assert.Equal(t, "beagleboard_forum", res.Items[2].Metadata.RepoName())
}

func TestRetrieveCapsDesiredCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleResponse))
	})

	res, err := client.Retrieve(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, 42, res.TotalFound)
}

func TestRetrieveFailures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		query      string
		wantStatus int
	}{
		{
			name:       "server error",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			query:      "GPIO setup",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:    "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("{oops")) },
			query:   "GPIO setup",
		},
		{
			name:    "empty query",
			handler: func(w http.ResponseWriter, r *http.Request) { t.Error("no request expected") },
			query:   "   ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)

			res, err := client.Retrieve(context.Background(), tt.query, 5)

			assert.Nil(t, res)
			require.Error(t, err)
			assert.True(t, IsRetrievalError(err))
			var re *RetrievalError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.wantStatus, re.StatusCode)
			assert.NotEmpty(t, re.Reason)
		})
	}
}

func TestRetrieveTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(ClientConfig{BaseURL: url, CollectionName: "c"}, logger.NewNopLogger())
	_, err := client.Retrieve(context.Background(), "GPIO setup", 5)

	require.Error(t, err)
	assert.True(t, IsRetrievalError(err))
}

type countingRetriever struct {
	calls atomic.Int32
	fail  int32 // number of leading calls that fail
	err   error
}

func (c *countingRetriever) Retrieve(ctx context.Context, query string, desiredCount int) (*RetrievalResult, error) {
	n := c.calls.Add(1)
	if n <= c.fail {
		return nil, c.err
	}
	return &RetrievalResult{TotalFound: 1, Items: []RetrievedItem{{Content: query}}}, nil
}

func TestCachedRetrieverHitsLocalTier(t *testing.T) {
	next := &countingRetriever{}
	cached := NewCachedRetriever(next, "c", time.Minute, nil, logger.NewNopLogger())

	for i := 0; i < 3; i++ {
		res, err := cached.Retrieve(context.Background(), "pru", 5)
		require.NoError(t, err)
		assert.Equal(t, "pru", res.Items[0].Content)
	}
	assert.Equal(t, int32(1), next.calls.Load())

	_, err := cached.Retrieve(context.Background(), "pru", 3)
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load(), "different count is a different key")
}

func TestCachedRetrieverDoesNotCacheFailures(t *testing.T) {
	next := &countingRetriever{fail: 1, err: &RetrievalError{Reason: "down"}}
	cached := NewCachedRetriever(next, "c", time.Minute, nil, logger.NewNopLogger())

	_, err := cached.Retrieve(context.Background(), "pru", 5)
	require.Error(t, err)

	res, err := cached.Retrieve(context.Background(), "pru", 5)
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestRetryingRetriever(t *testing.T) {
	t.Run("recovers from transient failure", func(t *testing.T) {
		next := &countingRetriever{fail: 2, err: &RetrievalError{Reason: "bad gateway", StatusCode: 502}}
		r := WithRetry(next, 3).(*RetryingRetriever)
		r.initial = time.Millisecond

		res, err := r.Retrieve(context.Background(), "q", 5)
		require.NoError(t, err)
		assert.NotNil(t, res)
		assert.Equal(t, int32(3), next.calls.Load())
	})

	t.Run("client errors are permanent", func(t *testing.T) {
		next := &countingRetriever{fail: 5, err: &RetrievalError{Reason: "bad request", StatusCode: 400}}
		r := WithRetry(next, 3).(*RetryingRetriever)
		r.initial = time.Millisecond

		_, err := r.Retrieve(context.Background(), "q", 5)
		require.Error(t, err)
		assert.True(t, IsRetrievalError(err))
		assert.Equal(t, int32(1), next.calls.Load())
	})

	t.Run("disabled returns the wrapped retriever", func(t *testing.T) {
		next := &countingRetriever{}
		assert.Same(t, next, WithRetry(next, 0))
	})
}
