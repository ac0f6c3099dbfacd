package service

import (
	"context"

	"beaglemind-be/internal/dto"
	"beaglemind-be/internal/pkg/logger"
	"beaglemind-be/pkg/events"
	"beaglemind-be/pkg/wizard"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const wizardTracerName = "beaglemind/service/wizard"

type IWizardService interface {
	Plan(ctx context.Context, req *dto.WizardRequest) (*dto.WizardResponse, error)
	SuggestCommands(ctx context.Context, req *dto.CommandsRequest) (*dto.CommandsResponse, error)
}

type wizardService struct {
	synthesizer *wizard.Synthesizer
	publisher   IPublisherService
	log         logger.ILogger
}

func NewWizardService(synthesizer *wizard.Synthesizer, publisher IPublisherService, log logger.ILogger) IWizardService {
	return &wizardService{
		synthesizer: synthesizer,
		publisher:   publisher,
		log:         log,
	}
}

func (s *wizardService) Plan(ctx context.Context, req *dto.WizardRequest) (*dto.WizardResponse, error) {
	ctx, span := otel.Tracer(wizardTracerName).Start(ctx, "wizard.plan")
	defer span.End()

	planReq := req.ToPlanRequest()
	result, err := s.synthesizer.Plan(ctx, planReq)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("wizard.mode", string(result.Mode)),
		attribute.Int("wizard.phases", len(result.Plan.Phases)),
	)

	s.publisher.Publish(ctx, events.PlanGenerated(events.PlanUsage{
		Mode:       string(result.Mode),
		Reason:     result.Reason,
		Provider:   result.Resolution.Provider,
		Model:      result.Resolution.Model,
		Experience: planReq.Experience,
		Phases:     len(result.Plan.Phases),
		Included:   result.Included,
	}))

	return &dto.WizardResponse{
		Plan:     result.Plan,
		Mode:     result.Mode,
		Reason:   result.Reason,
		Provider: result.Resolution.Provider,
		Model:    result.Resolution.Model,
		Included: result.Included,
	}, nil
}

func (s *wizardService) SuggestCommands(ctx context.Context, req *dto.CommandsRequest) (*dto.CommandsResponse, error) {
	ctx, span := otel.Tracer(wizardTracerName).Start(ctx, "wizard.commands")
	defer span.End()

	suggestion, res, err := s.synthesizer.SuggestCommands(ctx, req.ToCommandRequest())
	if err != nil {
		if wizard.IsParseError(err) {
			s.publisher.Publish(ctx, events.CommandsSuggested(res.Provider, res.Model, 0, true))
		}
		return nil, err
	}

	s.publisher.Publish(ctx, events.CommandsSuggested(res.Provider, res.Model, len(suggestion.Commands), false))
	return &dto.CommandsResponse{CommandSuggestion: suggestion, Resolution: res}, nil
}
