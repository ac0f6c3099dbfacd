package grounding

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"beaglemind-be/pkg/knowledge"
)

var imageKeys = []string{"image_links", "image_url"}

// ImageLinks extracts embeddable image URLs. Each key is read as a JSON array string,
// then a single URL string, then a decoded array; the first key yielding URLs wins.
func ImageLinks(meta knowledge.Metadata) []string {
	for _, key := range imageKeys {
		if urls := parseImageValue(meta[key]); len(urls) > 0 {
			return urls
		}
	}
	return nil
}

func parseImageValue(v any) []string {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		if strings.HasPrefix(s, "[") {
			var arr []any
			if err := json.Unmarshal([]byte(s), &arr); err == nil {
				return validURLs(arr)
			}
		}
		return validURLs([]any{s})
	case []any:
		return validURLs(val)
	case []string:
		arr := make([]any, len(val))
		for i, s := range val {
			arr[i] = s
		}
		return validURLs(arr)
	default:
		return nil
	}
}

func validURLs(values []any) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if !isHTTPURL(s) || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func isHTTPURL(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// renderImages labels each directive "Image <seq>.<k>" with k counting from 1.
func renderImages(seq int, urls []string) string {
	var sb strings.Builder
	for k, u := range urls {
		fmt.Fprintf(&sb, "\n![Image %d.%d](%s)", seq, k+1, u)
	}
	return sb.String()
}
