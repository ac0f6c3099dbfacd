package knowledge

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryingRetriever retries transport failures and 5xx responses with exponential backoff.
// Empty queries and 4xx responses are permanent.
type RetryingRetriever struct {
	next       Retriever
	maxRetries uint
	initial    time.Duration
}

var _ Retriever = (*RetryingRetriever)(nil)

func WithRetry(next Retriever, maxRetries int) Retriever {
	if maxRetries <= 0 {
		return next
	}
	return &RetryingRetriever{next: next, maxRetries: uint(maxRetries), initial: 200 * time.Millisecond}
}

func (r *RetryingRetriever) Retrieve(ctx context.Context, query string, desiredCount int) (*RetrievalResult, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initial

	return backoff.Retry(ctx, func() (*RetrievalResult, error) {
		res, err := r.next.Retrieve(ctx, query, desiredCount)
		if err == nil {
			return res, nil
		}
		var re *RetrievalError
		if errors.As(err, &re) && !retryable(re) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(r.maxRetries+1))
}

func retryable(e *RetrievalError) bool {
	if errors.Is(e, ErrEmptyQuery) {
		return false
	}
	return e.StatusCode == 0 || e.StatusCode >= 500
}
