// Package wizard turns a project description into a phased execution plan, either from
// a model completion or from a fixed heuristic template.
package wizard

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Mode reports which path produced a plan.
type Mode string

const (
	ModeLLM               Mode = "llm"
	ModeHeuristicFallback Mode = "heuristic-fallback"
)

type Request struct {
	Goals      string `json:"goals"`
	Hardware   string `json:"hardware"`
	Experience string `json:"experience"` // beginner | intermediate | advanced
	Focus      string `json:"focus,omitempty"`
	Language   string `json:"language,omitempty"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
}

type Task struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Detail   string  `json:"detail"`
	EstHours float64 `json:"est_hours"`
	Code     string  `json:"code,omitempty"`
}

type Phase struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Objective    string   `json:"objective"`
	Tasks        []Task   `json:"tasks"`
	Deliverables []string `json:"deliverables"`
	Resources    []string `json:"resources"`
	Dependencies []string `json:"dependencies"`
	Prompts      []string `json:"prompts"`
}

type Plan struct {
	Summary     string   `json:"summary"`
	Phases      []Phase  `json:"phases"`
	NextActions []string `json:"next_actions"`
	RiskNotes   []string `json:"risk_notes"`
}

// ValidationError lists the required fields a request is missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (r Request) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Goals) == "" {
		missing = append(missing, "goals")
	}
	if strings.TrimSpace(r.Hardware) == "" {
		missing = append(missing, "hardware")
	}
	if strings.TrimSpace(r.Experience) == "" {
		missing = append(missing, "experience")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func (r Request) language() string {
	if l := strings.TrimSpace(r.Language); l != "" {
		return l
	}
	return "C"
}

func (r Request) focus() string {
	if f := strings.TrimSpace(r.Focus); f != "" {
		return f
	}
	return "mixed"
}

// IDFunc mints an opaque id with the given prefix.
type IDFunc func(prefix string) string

func NewID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
