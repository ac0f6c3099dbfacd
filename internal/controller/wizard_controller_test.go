package controller

import (
	"context"
	"encoding/json"
	"testing"

	"beaglemind-be/internal/dto"
	"beaglemind-be/pkg/llm/factory"
	"beaglemind-be/pkg/wizard"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWizardService struct {
	mode       wizard.Mode
	commands   *wizard.CommandSuggestion
	commandErr error
}

func (f *fakeWizardService) Plan(ctx context.Context, req *dto.WizardRequest) (*dto.WizardResponse, error) {
	return &dto.WizardResponse{
		Plan:     &wizard.Plan{Summary: "Blink an LED on " + req.Hardware},
		Mode:     f.mode,
		Provider: "openai",
		Model:    "gpt-4o",
	}, nil
}

func (f *fakeWizardService) SuggestCommands(ctx context.Context, req *dto.CommandsRequest) (*dto.CommandsResponse, error) {
	if f.commandErr != nil {
		return nil, f.commandErr
	}
	return &dto.CommandsResponse{
		CommandSuggestion: f.commands,
		Resolution:        factory.Resolution{Provider: "openai", Model: "gpt-4o"},
	}, nil
}

func newWizardApp(svc *fakeWizardService) *fiber.App {
	app := newTestApp()
	NewWizardController(svc).RegisterRoutes(app)
	return app
}

func TestWizardPlanSetsModeHeader(t *testing.T) {
	tests := []struct {
		name string
		mode wizard.Mode
	}{
		{name: "model", mode: wizard.ModeLLM},
		{name: "fallback", mode: wizard.ModeHeuristicFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, header := postJSON(t, newWizardApp(&fakeWizardService{mode: tt.mode}), "/wizard", dto.WizardRequest{
				Goals:      "blink an LED",
				Hardware:   "BeagleY-AI",
				Experience: "beginner",
			})

			require.Equal(t, fiber.StatusOK, status)
			assert.Equal(t, string(tt.mode), header[HeaderPlanMode][0])

			var envelope struct {
				Data dto.WizardResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &envelope))
			assert.Equal(t, "Blink an LED on BeagleY-AI", envelope.Data.Plan.Summary)
			assert.Equal(t, tt.mode, envelope.Data.Mode)
		})
	}
}

func TestWizardPlanRequiresFields(t *testing.T) {
	status, body, _ := postJSON(t, newWizardApp(&fakeWizardService{}), "/wizard", dto.WizardRequest{Goals: "blink"})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body, "hardware")
	assert.Contains(t, body, "experience")
}

func TestWizardCommands(t *testing.T) {
	valid := dto.CommandsRequest{TaskTitle: "Flash image", Detail: "Write the SD card", Hardware: "BeagleBone Black"}

	tests := []struct {
		name     string
		svc      *fakeWizardService
		body     dto.CommandsRequest
		wantCode int
		wantBody string
	}{
		{
			name:     "ok",
			svc:      &fakeWizardService{commands: &wizard.CommandSuggestion{Commands: []wizard.Command{{Cmd: "lsblk", Explanation: "find the card"}}}},
			body:     valid,
			wantCode: fiber.StatusOK,
			wantBody: `"cmd":"lsblk"`,
		},
		{
			name:     "missing task title",
			svc:      &fakeWizardService{},
			body:     dto.CommandsRequest{Detail: "x", Hardware: "y"},
			wantCode: fiber.StatusBadRequest,
			wantBody: "taskTitle",
		},
		{
			name:     "unparseable model output",
			svc:      &fakeWizardService{commandErr: &wizard.ParseError{Reason: "no JSON object"}},
			body:     valid,
			wantCode: fiber.StatusBadGateway,
			wantBody: "Model output not parseable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := postJSON(t, newWizardApp(tt.svc), "/wizard/commands", tt.body)
			assert.Equal(t, tt.wantCode, status)
			assert.Contains(t, body, tt.wantBody)
		})
	}
}
