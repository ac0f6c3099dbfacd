package wizard

import (
	"regexp"
	"strings"
)

const (
	maxCommands     = 8
	maxCmd          = 160
	maxExplanation  = 240
	maxCommandsCode = 4000
)

type CommandRequest struct {
	TaskTitle  string `json:"taskTitle"`
	Detail     string `json:"detail"`
	Hardware   string `json:"hardware"`
	Language   string `json:"language,omitempty"`
	Goals      string `json:"goals,omitempty"`
	Focus      string `json:"focus,omitempty"`
	Experience string `json:"experience,omitempty"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
}

func (r CommandRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.TaskTitle) == "" {
		missing = append(missing, "taskTitle")
	}
	if strings.TrimSpace(r.Detail) == "" {
		missing = append(missing, "detail")
	}
	if strings.TrimSpace(r.Hardware) == "" {
		missing = append(missing, "hardware")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func (r CommandRequest) language() string {
	if l := strings.TrimSpace(r.Language); l != "" {
		return l
	}
	return "C"
}

type Command struct {
	Cmd         string `json:"cmd"`
	Explanation string `json:"explanation"`
}

type CommandSuggestion struct {
	Commands []Command `json:"commands"`
	Code     string    `json:"code,omitempty"`
}

var destructive = []*regexp.Regexp{
	regexp.MustCompile(`\brm\s+(-\S*\s+)*-\S*[rR]\S*\s+(-\S+\s+)*(/|/\*|\*|~/?)(\s|;|&|$)`),
	regexp.MustCompile(`\bmkfs(\.\w+)?\b`),
	regexp.MustCompile(`\bdd\b.*\bof=/dev/`),
	regexp.MustCompile(`:\(\)\s*\{\s*:\s*\|\s*:\s*&\s*\}\s*;\s*:`),
	regexp.MustCompile(`\bchmod\s+(-\S+\s+)*-R\s+(-\S+\s+)*0?777\s+/(\s|$)`),
}

// IsDestructive reports whether cmd matches the deny list.
func IsDestructive(cmd string) bool {
	for _, re := range destructive {
		if re.MatchString(cmd) {
			return true
		}
	}
	return false
}

// ParseCommands extracts the command object from model output. A missing or non-array
// commands field is a ParseError.
func ParseCommands(text string) (*CommandSuggestion, error) {
	obj, err := extractObject(strings.TrimSpace(text))
	if err != nil {
		return nil, err
	}

	list, ok := obj["commands"].([]any)
	if !ok {
		return nil, &ParseError{Reason: "commands is not an array"}
	}

	out := &CommandSuggestion{Commands: make([]Command, 0, len(list))}
	for _, item := range list {
		if len(out.Commands) == maxCommands {
			break
		}
		c, ok := item.(map[string]any)
		if !ok {
			continue
		}
		cmd := truncate(strings.TrimSpace(stringField(c, "cmd", "")), maxCmd)
		if cmd == "" || IsDestructive(cmd) {
			continue
		}
		out.Commands = append(out.Commands, Command{
			Cmd:         cmd,
			Explanation: truncate(stringField(c, "explanation", ""), maxExplanation),
		})
	}

	if code, ok := obj["code"].(string); ok {
		out.Code = truncate(code, maxCommandsCode)
	}
	return out, nil
}
