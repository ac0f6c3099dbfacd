package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Retriever is the contract shared by the HTTP client and its decorators.
type Retriever interface {
	Retrieve(ctx context.Context, query string, desiredCount int) (*RetrievalResult, error)
}

// Metadata is the per-passage metadata returned by the knowledge base.
// Values keep their decoded JSON types; use the accessors.
type Metadata map[string]any

func (m Metadata) String(key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func (m Metadata) Bool(key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	case float64:
		return v != 0
	default:
		return false
	}
}

func (m Metadata) FileName() string   { return m.String("file_name") }
func (m Metadata) FilePath() string   { return m.String("file_path") }
func (m Metadata) FileType() string   { return m.String("file_type") }
func (m Metadata) SourceLink() string { return strings.TrimSpace(m.String("source_link")) }
func (m Metadata) GithubLink() string { return m.String("github_link") }
func (m Metadata) Language() string   { return m.String("language") }
func (m Metadata) RepoName() string   { return m.String("repo_name") }
func (m Metadata) HasCode() bool      { return m.Bool("has_code") }

// RetrievedItem is one candidate passage.
type RetrievedItem struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
	Distance float64  `json:"distance"`
}

// RetrievalResult is the flattened, rank-ordered response.
type RetrievalResult struct {
	TotalFound      int             `json:"total_found"`
	FilteredResults int             `json:"filtered_results"`
	Items           []RetrievedItem `json:"items"`
}

type retrieveRequest struct {
	Query           string `json:"query"`
	CollectionName  string `json:"collection_name"`
	NResults        int    `json:"n_results"`
	IncludeMetadata bool   `json:"include_metadata"`
	Rerank          bool   `json:"rerank"`
}

type retrieveResponse struct {
	Documents       [][]string          `json:"documents"`
	Metadatas       [][]json.RawMessage `json:"metadatas"`
	Distances       [][]*float64        `json:"distances"`
	TotalFound      int                 `json:"total_found"`
	FilteredResults int                 `json:"filtered_results"`
}

// flatten pairs documents[g][i] with metadatas[g][i] and distances[g][i],
// preserving upstream order. Missing metadata or distance entries default to empty / 0.
func (r *retrieveResponse) flatten() []RetrievedItem {
	var items []RetrievedItem
	for g, group := range r.Documents {
		for i, doc := range group {
			item := RetrievedItem{Content: doc, Metadata: Metadata{}}

			if g < len(r.Metadatas) && i < len(r.Metadatas[g]) {
				var meta Metadata
				if err := json.Unmarshal(r.Metadatas[g][i], &meta); err == nil && meta != nil {
					item.Metadata = meta
				}
			}
			if g < len(r.Distances) && i < len(r.Distances[g]) && r.Distances[g][i] != nil {
				item.Distance = *r.Distances[g][i]
			}

			items = append(items, item)
		}
	}
	return items
}
