package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"beaglemind-be/internal/pkg/logger"
)

const logModule = "KnowledgeClient"

var ErrEmptyQuery = errors.New("empty query")

// RetrievalError is returned for every transport, status or decoding failure.
// Callers degrade to "no context" on it.
type RetrievalError struct {
	Reason     string
	StatusCode int
	Err        error
}

func (e *RetrievalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("knowledge base retrieval failed (status %d): %s", e.StatusCode, e.Reason)
	}
	return "knowledge base retrieval failed: " + e.Reason
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// IsRetrievalError reports whether err carries a RetrievalError.
func IsRetrievalError(err error) bool {
	var re *RetrievalError
	return errors.As(err, &re)
}

type ClientConfig struct {
	BaseURL        string
	CollectionName string
	FetchResults   int
	Timeout        time.Duration
}

// Client talks to the knowledge base /api/retrieve endpoint.
type Client struct {
	baseURL        string
	collectionName string
	fetchResults   int
	httpClient     *http.Client
	logger         logger.ILogger
}

var _ Retriever = (*Client)(nil)

func NewClient(cfg ClientConfig, log logger.ILogger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	fetch := cfg.FetchResults
	if fetch <= 0 {
		fetch = 10
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		collectionName: cfg.CollectionName,
		fetchResults:   fetch,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         log,
	}
}

// Retrieve over-fetches fetchResults passages upstream and keeps at most desiredCount.
func (c *Client) Retrieve(ctx context.Context, query string, desiredCount int) (*RetrievalResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &RetrievalError{Reason: "empty query", Err: ErrEmptyQuery}
	}

	payload, err := json.Marshal(retrieveRequest{
		Query:           query,
		CollectionName:  c.collectionName,
		NResults:        c.fetchResults,
		IncludeMetadata: true,
		Rerank:          true,
	})
	if err != nil {
		return nil, &RetrievalError{Reason: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/retrieve", bytes.NewReader(payload))
	if err != nil {
		return nil, &RetrievalError{Reason: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn(logModule, "Knowledge base unreachable", map[string]interface{}{"error": err.Error()})
		return nil, &RetrievalError{Reason: "request failed: " + err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RetrievalError{Reason: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn(logModule, "Knowledge base returned error status", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   truncate(string(body), 300),
		})
		return nil, &RetrievalError{Reason: http.StatusText(resp.StatusCode), StatusCode: resp.StatusCode}
	}

	var decoded retrieveResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &RetrievalError{Reason: "decode response", Err: err}
	}

	items := decoded.flatten()
	if desiredCount >= 0 && len(items) > desiredCount {
		items = items[:desiredCount]
	}

	c.logger.Info(logModule, "Knowledge base response", map[string]interface{}{
		"total_found":      decoded.TotalFound,
		"filtered_results": decoded.FilteredResults,
		"kept":             len(items),
		"elapsed_ms":       time.Since(start).Milliseconds(),
	})

	return &RetrievalResult{
		TotalFound:      decoded.TotalFound,
		FilteredResults: decoded.FilteredResults,
		Items:           items,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
