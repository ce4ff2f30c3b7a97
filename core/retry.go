package core

import (
	"context"

	"github.com/cenkalti/backoff/v4"
)

// Retry calls fn until it succeeds, retryable(err) reports false, attempts are exhausted or ctx is done.
// The delay before the n-th retry is base * 2^(n-1). The last error of fn is returned.
func Retry(ctx context.Context, conf RetryConfig, retryable func(error) bool, fn func() error) error {
	attempts := conf.Attempts
	if attempts < 1 {
		attempts = 1
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = conf.BaseDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)

	var last error
	err := backoff.Retry(func() error {
		if last = fn(); last != nil && !retryable(last) {
			return backoff.Permanent(last)
		}
		return last
	}, policy)
	if err != nil && last != nil {
		// ctx.Err() otherwise
		return last
	}
	return err
}
