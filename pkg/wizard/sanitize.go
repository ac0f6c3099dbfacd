package wizard

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	maxTitle       = 120
	maxText        = 400
	maxCode        = 1200
	maxSummary     = 500
	maxDeliverable = 120
	maxResource    = 160
	maxPrompt      = 200
	maxNextAction  = 160
	maxRiskNote    = 200

	defaultEstHours = 1
)

// Sanitize builds a Plan from untrusted model output. Every id is minted fresh and
// dependencies are rewritten to ids of earlier phases; anything unresolvable is dropped.
func Sanitize(raw *RawPlan, newID IDFunc) *Plan {
	if newID == nil {
		newID = NewID
	}

	plan := &Plan{
		Summary:     truncate(stringField(raw.Fields, "summary", "Project plan summary"), maxSummary),
		Phases:      make([]Phase, 0, len(raw.Phases)),
		NextActions: stringList(raw.Fields["next_actions"], maxNextAction),
		RiskNotes:   stringList(raw.Fields["risk_notes"], maxRiskNote),
	}

	// keys by which later phases may refer to an earlier one
	aliases := make(map[string]string)

	for i, p := range raw.Phases {
		phase := Phase{
			ID:           newID("phase"),
			Title:        truncate(stringField(p, "title", "Untitled Phase"), maxTitle),
			Objective:    truncate(stringField(p, "objective", ""), maxText),
			Tasks:        sanitizeTasks(p["tasks"], newID),
			Deliverables: stringList(p["deliverables"], maxDeliverable),
			Resources:    stringList(p["resources"], maxResource),
			Dependencies: []string{},
			Prompts:      stringList(p["prompts"], maxPrompt),
		}

		seen := make(map[string]bool)
		for _, dep := range stringList(p["dependencies"], 0) {
			id, ok := aliases[aliasKey(dep)]
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			phase.Dependencies = append(phase.Dependencies, id)
		}

		if modelID, ok := p["id"].(string); ok && strings.TrimSpace(modelID) != "" {
			aliases[aliasKey(modelID)] = phase.ID
		}
		if title, ok := p["title"].(string); ok && strings.TrimSpace(title) != "" {
			aliases[aliasKey(title)] = phase.ID
		}
		aliases[strconv.Itoa(i+1)] = phase.ID

		plan.Phases = append(plan.Phases, phase)
	}

	return plan
}

func sanitizeTasks(v any, newID IDFunc) []Task {
	list, _ := v.([]any)
	tasks := make([]Task, 0, len(list))

	for _, item := range list {
		t, ok := item.(map[string]any)
		if !ok {
			continue
		}

		hours, ok := t["est_hours"].(float64)
		if !ok || hours <= 0 {
			hours = defaultEstHours
		}

		code, _ := t["code"].(string)

		tasks = append(tasks, Task{
			ID:       newID("task"),
			Title:    truncate(stringField(t, "title", "Task"), maxTitle),
			Detail:   truncate(stringField(t, "detail", ""), maxText),
			EstHours: hours,
			Code:     truncate(code, maxCode),
		})
	}
	return tasks
}

func stringField(m map[string]any, key, fallback string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return fallback
}

// stringList keeps strings, numbers and booleans; other element types are dropped.
// max 0 means no truncation.
func stringList(v any, max int) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))

	for _, item := range list {
		var s string
		switch x := item.(type) {
		case string:
			s = x
		case float64:
			s = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(x)
		default:
			continue
		}
		if strings.TrimSpace(s) == "" {
			continue
		}
		if max > 0 {
			s = truncate(s, max)
		}
		out = append(out, s)
	}
	return out
}

func aliasKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimPrefix(s, "phase ")
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
