package events

import "time"

// ChatUsage summarises one chat turn once its stream has ended.
type ChatUsage struct {
	Transport    string
	Provider     string
	Model        string
	Fallback     bool
	Retrieval    string
	Included     int
	PromptTokens int
	OutputTokens int
	Duration     time.Duration
	Failed       bool
}

func ChatCompleted(u ChatUsage) BaseEvent {
	return New(TypeChatCompleted, map[string]interface{}{
		"transport":     u.Transport,
		"provider":      u.Provider,
		"model":         u.Model,
		"fallback":      u.Fallback,
		"retrieval":     u.Retrieval,
		"included":      u.Included,
		"prompt_tokens": u.PromptTokens,
		"output_tokens": u.OutputTokens,
		"duration_ms":   u.Duration.Milliseconds(),
		"failed":        u.Failed,
	})
}

type PlanUsage struct {
	Mode       string
	Reason     string
	Provider   string
	Model      string
	Experience string
	Phases     int
	Included   int
}

func PlanGenerated(u PlanUsage) BaseEvent {
	return New(TypePlanGenerated, map[string]interface{}{
		"mode":       u.Mode,
		"reason":     u.Reason,
		"provider":   u.Provider,
		"model":      u.Model,
		"experience": u.Experience,
		"phases":     u.Phases,
		"included":   u.Included,
	})
}

func CommandsSuggested(provider, model string, commands int, parseFailed bool) BaseEvent {
	return New(TypeCommandsSuggested, map[string]interface{}{
		"provider":     provider,
		"model":        model,
		"commands":     commands,
		"parse_failed": parseFailed,
	})
}
