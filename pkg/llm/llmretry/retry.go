// Package llmretry decorates an llm.LLMProvider with bounded exponential backoff.
// A stream is only retried while it has produced no fragment.
package llmretry

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"time"

	"beaglemind-be/pkg/llm"

	"github.com/cenkalti/backoff/v5"
)

type Provider struct {
	next       llm.LLMProvider
	maxRetries uint
	initial    time.Duration
}

var _ llm.LLMProvider = (*Provider)(nil)

// New returns next unchanged when maxRetries is not positive.
func New(next llm.LLMProvider, maxRetries int) llm.LLMProvider {
	if maxRetries <= 0 {
		return next
	}
	return &Provider{next: next, maxRetries: uint(maxRetries), initial: 500 * time.Millisecond}
}

func (p *Provider) Name() string { return p.next.Name() }

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = p.initial

	return backoff.Retry(ctx, func() (string, error) {
		out, err := p.next.Chat(ctx, history, options...)
		if err != nil && !retryable(ctx, err) {
			return "", backoff.Permanent(err)
		}
		return out, err
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(p.maxRetries+1))
}

func (p *Provider) Stream(ctx context.Context, history []llm.Message, options ...llm.Option) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = p.initial

		for attempt := uint(0); ; attempt++ {
			next, stop := iter.Pull2(p.next.Stream(ctx, history, options...))

			chunk, err, ok := next()
			if ok && err != nil && attempt < p.maxRetries && retryable(ctx, err) {
				stop()
				timer := time.NewTimer(policy.NextBackOff())
				select {
				case <-ctx.Done():
					timer.Stop()
					yield("", err)
					return
				case <-timer.C:
				}
				continue
			}

			forward(yield, next, chunk, err, ok)
			stop()
			return
		}
	}
}

func forward(yield func(string, error) bool, next func() (string, error, bool), chunk string, err error, ok bool) {
	for ok {
		if !yield(chunk, err) || err != nil {
			return
		}
		chunk, err, ok = next()
	}
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var de *llm.DispatchError
	if errors.As(err, &de) && de.StatusCode != 0 {
		return de.StatusCode == http.StatusTooManyRequests || de.StatusCode >= 500
	}
	return true
}
