package wizard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlanRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"malformed", "Sure! Here's your plan: {not valid json"},
		{"no braces", "I cannot help with that."},
		{"braces reversed", "} nope {"},
		{"phases missing", `{"summary":"x"}`},
		{"phases not array", `{"phases":{"title":"x"}}`},
		{"phases empty", `{"phases":[]}`},
		{"phase not object", `{"phases":["Setup"]}`},
		{"array wrapping an empty plan", `[{"phases":[]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := ParsePlan(tt.text)

			assert.Nil(t, raw)
			assert.True(t, IsParseError(err), "got %v", err)
		})
	}
}

func TestParsePlanIgnoresSurroundingProse(t *testing.T) {
	text := "Here you go:\n```json\n{\"summary\":\"s\",\"phases\":[{\"title\":\"A\"}]}\n```\nGood luck!"

	raw, err := ParsePlan(text)

	require.NoError(t, err)
	require.Len(t, raw.Phases, 1)
	assert.Equal(t, "A", raw.Phases[0]["title"])
}

func TestSanitize(t *testing.T) {
	long := strings.Repeat("x", 2000)
	text := `{
		"summary": "` + long + `",
		"phases": [
			{
				"id": "p-setup",
				"title": "Setup",
				"objective": "` + long + `",
				"tasks": [
					{"id": "model-task", "title": "Flash", "detail": "d", "est_hours": 2.5, "code": "` + long + `"},
					{"title": "No hours"},
					{"title": "Zero hours", "est_hours": 0},
					"not a task"
				],
				"deliverables": "not a list",
				"dependencies": ["Later phase"]
			},
			{
				"title": "Build",
				"dependencies": ["p-setup", "setup", "1", "Phase 1", "unknown", "Build"],
				"resources": ["r", 3, {"x": 1}, "", true],
				"prompts": ["` + long + `"]
			},
			{
				"dependencies": ["2", "3"]
			}
		],
		"next_actions": ["` + long + `"],
		"risk_notes": null
	}`

	raw, err := ParsePlan(text)
	require.NoError(t, err)

	plan := Sanitize(raw, sequentialIDs())

	assert.Len(t, []rune(plan.Summary), maxSummary)
	require.Len(t, plan.Phases, 3)

	setup := plan.Phases[0]
	assert.Equal(t, "phase-1", setup.ID)
	assert.Len(t, []rune(setup.Objective), maxText)
	require.Len(t, setup.Tasks, 3)
	assert.Equal(t, "task-2", setup.Tasks[0].ID)
	assert.Equal(t, 2.5, setup.Tasks[0].EstHours)
	assert.Len(t, []rune(setup.Tasks[0].Code), maxCode)
	assert.Equal(t, 1.0, setup.Tasks[1].EstHours)
	assert.Equal(t, 1.0, setup.Tasks[2].EstHours)
	assert.Empty(t, setup.Deliverables)
	assert.NotNil(t, setup.Deliverables)
	assert.Empty(t, setup.Dependencies, "forward references are dropped")

	build := plan.Phases[1]
	assert.Equal(t, []string{setup.ID}, build.Dependencies)
	assert.Equal(t, []string{"r", "3", "true"}, build.Resources)
	assert.Len(t, []rune(build.Prompts[0]), maxPrompt)

	untitled := plan.Phases[2]
	assert.Equal(t, "Untitled Phase", untitled.Title)
	assert.Equal(t, []string{build.ID}, untitled.Dependencies)

	assert.Len(t, []rune(plan.NextActions[0]), maxNextAction)
	assert.Empty(t, plan.RiskNotes)
	assert.NotNil(t, plan.RiskNotes)
}

func TestSanitizeDefaults(t *testing.T) {
	raw, err := ParsePlan(`{"phases":[{"tasks":[{}]}]}`)
	require.NoError(t, err)

	plan := Sanitize(raw, sequentialIDs())

	assert.Equal(t, "Project plan summary", plan.Summary)
	assert.Equal(t, "Task", plan.Phases[0].Tasks[0].Title)
	assert.Equal(t, "", plan.Phases[0].Objective)
}
