package wizard

import (
	"context"
	"strings"

	"beaglemind-be/internal/pkg/logger"
	"beaglemind-be/pkg/knowledge"
	"beaglemind-be/pkg/llm"
	"beaglemind-be/pkg/llm/factory"
	"beaglemind-be/pkg/rag/grounding"
)

const logModule = "Wizard"

const (
	planTemperature    = 0.4
	planMaxTokens      = 1800
	commandTemperature = 0
	commandMaxTokens   = 800
)

// Completer performs a single non-streaming completion.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []llm.Message, provider, model string, opts ...llm.Option) (string, factory.Resolution, error)
}

type Options struct {
	ContextResults int
	CharBudget     int
}

// Result is a plan together with how it was produced.
type Result struct {
	Plan       *Plan
	Mode       Mode
	Reason     string // why the heuristic path was taken
	Resolution factory.Resolution
	Included   int
}

type Synthesizer struct {
	retriever knowledge.Retriever
	completer Completer
	opts      Options
	newID     IDFunc
	log       logger.ILogger
}

func NewSynthesizer(retriever knowledge.Retriever, completer Completer, opts Options, log logger.ILogger) *Synthesizer {
	return &Synthesizer{
		retriever: retriever,
		completer: completer,
		opts:      opts,
		newID:     NewID,
		log:       log,
	}
}

// Plan runs the model path and falls back to the heuristic template on any failure.
// Only a request missing required fields returns an error.
func (s *Synthesizer) Plan(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan, res, included, err := s.planWithModel(ctx, req)
	if err == nil {
		return &Result{Plan: plan, Mode: ModeLLM, Resolution: res, Included: included}, nil
	}

	s.log.Warn(logModule, "LLM plan generation failed, falling back to heuristic", map[string]interface{}{
		"error":    err.Error(),
		"provider": res.Provider,
		"model":    res.Model,
	})

	return &Result{
		Plan:       HeuristicPlan(req, s.newID),
		Mode:       ModeHeuristicFallback,
		Reason:     err.Error(),
		Resolution: res,
		Included:   included,
	}, nil
}

func (s *Synthesizer) planWithModel(ctx context.Context, req Request) (*Plan, factory.Resolution, int, error) {
	contextBlock, included := s.retrieveContext(ctx, strings.TrimSpace(req.Goals+" "+req.Hardware))

	history := []llm.Message{{Role: llm.RoleUser, Content: planUserPrompt(req, contextBlock)}}
	text, res, err := s.completer.Complete(ctx, planSystemPrompt(req.language()), history, req.Provider, req.Model,
		llm.WithTemperature(planTemperature), llm.WithMaxTokens(planMaxTokens))
	if err != nil {
		return nil, res, included, err
	}

	raw, err := ParsePlan(text)
	if err != nil {
		return nil, res, included, err
	}

	return Sanitize(raw, s.newID), res, included, nil
}

// retrieveContext returns the planning context block. Retrieval failures yield an empty
// block; planning continues without context.
func (s *Synthesizer) retrieveContext(ctx context.Context, query string) (string, int) {
	result, err := s.retriever.Retrieve(ctx, query, s.opts.ContextResults)
	if err != nil {
		s.log.Warn(logModule, "Wizard retrieval error", map[string]interface{}{
			"error": err.Error(),
		})
		return "", 0
	}

	built := grounding.BuildWithStyle(result.Items, result.TotalFound, s.opts.CharBudget, grounding.PlanningStyle)
	return built.Text, built.Included
}

// SuggestCommands asks the model for shell commands for one task. Unparseable output is
// returned as a *ParseError; there is no fallback.
func (s *Synthesizer) SuggestCommands(ctx context.Context, req CommandRequest) (*CommandSuggestion, factory.Resolution, error) {
	if err := req.Validate(); err != nil {
		return nil, factory.Resolution{}, err
	}

	history := []llm.Message{{Role: llm.RoleUser, Content: commandUserPrompt(req)}}
	text, res, err := s.completer.Complete(ctx, commandSystemPrompt, history, req.Provider, req.Model,
		llm.WithTemperature(commandTemperature), llm.WithMaxTokens(commandMaxTokens))
	if err != nil {
		return nil, res, err
	}

	suggestion, err := ParseCommands(text)
	if err != nil {
		s.log.Warn(logModule, "Model output not parseable", map[string]interface{}{
			"error":    err.Error(),
			"provider": res.Provider,
		})
		return nil, res, err
	}
	return suggestion, res, nil
}
