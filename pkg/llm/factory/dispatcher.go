package factory

import (
	"context"
	"fmt"
	"iter"

	"beaglemind-be/internal/pkg/logger"
	"beaglemind-be/pkg/llm"
)

// Dispatcher resolves a provider for each request and invokes it.
type Dispatcher struct {
	registry *Registry
	log      logger.ILogger
}

func NewDispatcher(registry *Registry, log logger.ILogger) *Dispatcher {
	return &Dispatcher{registry: registry, log: log}
}

func (d *Dispatcher) Resolve(provider, model string) Resolution {
	return d.registry.Resolve(provider, model)
}

// Dispatch returns the lazy completion stream for systemPrompt followed by history.
// Nothing is sent until the caller starts iterating.
func (d *Dispatcher) Dispatch(ctx context.Context, systemPrompt string, history []llm.Message, provider, model string, opts ...llm.Option) (iter.Seq2[string, error], Resolution) {
	res := d.registry.Resolve(provider, model)
	if res.Fallback {
		d.log.Warn("Dispatcher", "Unknown provider requested, using default", map[string]interface{}{
			"requested": provider,
			"provider":  res.Provider,
		})
	}

	p, ok := d.registry.Provider(res.Provider)
	if !ok {
		err := &llm.DispatchError{Provider: res.Provider, Model: res.Model, Err: fmt.Errorf("provider not configured")}
		return func(yield func(string, error) bool) { yield("", err) }, res
	}

	opts = append(opts, llm.WithModel(res.Model))
	stream := p.Stream(ctx, llm.WithSystem(systemPrompt, history), opts...)

	return func(yield func(string, error) bool) {
		for chunk, err := range stream {
			if err != nil {
				yield("", asDispatchError(res, err))
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}, res
}

// Complete performs one non-streaming completion.
func (d *Dispatcher) Complete(ctx context.Context, systemPrompt string, history []llm.Message, provider, model string, opts ...llm.Option) (string, Resolution, error) {
	res := d.registry.Resolve(provider, model)

	p, ok := d.registry.Provider(res.Provider)
	if !ok {
		return "", res, &llm.DispatchError{Provider: res.Provider, Model: res.Model, Err: fmt.Errorf("provider not configured")}
	}

	opts = append(opts, llm.WithModel(res.Model))
	out, err := p.Chat(ctx, llm.WithSystem(systemPrompt, history), opts...)
	if err != nil {
		d.log.Error("Dispatcher", "Completion failed", map[string]interface{}{
			"provider": res.Provider,
			"model":    res.Model,
			"error":    err.Error(),
		})
		return "", res, asDispatchError(res, err)
	}
	return out, res, nil
}

func asDispatchError(res Resolution, err error) error {
	if llm.IsDispatchError(err) {
		return err
	}
	return &llm.DispatchError{Provider: res.Provider, Model: res.Model, Err: err}
}
