package dto

import (
	"beaglemind-be/pkg/llm/factory"
	"beaglemind-be/pkg/wizard"
)

type WizardRequest struct {
	Goals      string `json:"goals" validate:"required,max=4000"`
	Hardware   string `json:"hardware" validate:"required,max=500"`
	Experience string `json:"experience" validate:"required,max=100"`
	Focus      string `json:"focus,omitempty" validate:"max=100"`
	Language   string `json:"language,omitempty" validate:"max=50"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
}

func (r *WizardRequest) ToPlanRequest() wizard.Request {
	return wizard.Request{
		Goals:      r.Goals,
		Hardware:   r.Hardware,
		Experience: r.Experience,
		Focus:      r.Focus,
		Language:   r.Language,
		Provider:   r.Provider,
		Model:      r.Model,
	}
}

type WizardResponse struct {
	Plan     *wizard.Plan `json:"plan"`
	Mode     wizard.Mode  `json:"mode"`
	Reason   string       `json:"reason,omitempty"`
	Provider string       `json:"provider,omitempty"`
	Model    string       `json:"model,omitempty"`
	Included int          `json:"included"`
}

type CommandsRequest struct {
	TaskTitle  string `json:"taskTitle" validate:"required,max=300"`
	Detail     string `json:"detail" validate:"required,max=4000"`
	Hardware   string `json:"hardware" validate:"required,max=500"`
	Language   string `json:"language,omitempty" validate:"max=50"`
	Goals      string `json:"goals,omitempty" validate:"max=4000"`
	Focus      string `json:"focus,omitempty" validate:"max=100"`
	Experience string `json:"experience,omitempty" validate:"max=100"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
}

func (r *CommandsRequest) ToCommandRequest() wizard.CommandRequest {
	return wizard.CommandRequest{
		TaskTitle:  r.TaskTitle,
		Detail:     r.Detail,
		Hardware:   r.Hardware,
		Language:   r.Language,
		Goals:      r.Goals,
		Focus:      r.Focus,
		Experience: r.Experience,
		Provider:   r.Provider,
		Model:      r.Model,
	}
}

type CommandsResponse struct {
	*wizard.CommandSuggestion
	factory.Resolution
}
