package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseError reports model output that is not the expected JSON object.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unparseable model output: %s: %v", e.Reason, e.Err)
	}
	return "unparseable model output: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// RawPlan is model output that passed the shape check but has not been sanitized.
type RawPlan struct {
	Fields map[string]any
	Phases []map[string]any
}

// extractObject decodes the substring from the first '{' to the last '}'.
func extractObject(text string) (map[string]any, error) {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first == -1 || last == -1 || last < first {
		return nil, &ParseError{Reason: "no JSON object found"}
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text[first:last+1]), &obj); err != nil {
		return nil, &ParseError{Reason: "invalid JSON", Err: err}
	}
	if obj == nil {
		return nil, &ParseError{Reason: "JSON is not an object"}
	}
	return obj, nil
}

// ParsePlan checks that text holds a plan object with at least one phase object.
func ParsePlan(text string) (*RawPlan, error) {
	obj, err := extractObject(text)
	if err != nil {
		return nil, err
	}

	list, ok := obj["phases"].([]any)
	if !ok {
		return nil, &ParseError{Reason: "phases is not an array"}
	}
	if len(list) == 0 {
		return nil, &ParseError{Reason: "phases is empty"}
	}

	phases := make([]map[string]any, 0, len(list))
	for i, p := range list {
		phase, ok := p.(map[string]any)
		if !ok {
			return nil, &ParseError{Reason: fmt.Sprintf("phase %d is not an object", i+1)}
		}
		phases = append(phases, phase)
	}

	return &RawPlan{Fields: obj, Phases: phases}, nil
}
