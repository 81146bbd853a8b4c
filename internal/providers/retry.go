// Package providers implements the ProviderEndpoint tagged union: adapters
// that normalize OpenAI-compatible, OpenAI-hosted, Anthropic, and
// HF-Inference-Toolkit wire protocols behind agent.LLMAdapter.
package providers

import (
	"context"
	"math/rand"
	"time"

	"github.com/nvlabs/deepwatch/internal/errs"
)

// maxRetries is the number of retries after the first attempt (4 attempts
// total).
const maxRetries = 3

// baseDelay is the exponential backoff base: 0.5s * 2^attempt.
const baseDelay = 500 * time.Millisecond

// Do runs fn, retrying up to maxRetries additional times on errors for
// which errs.IsRetryable returns true. Backoff is exponential with ±20% jitter.
// On exhaustion the last error is returned unwrapped.
func Do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !errs.IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == maxRetries {
			break
		}

		delay := backoffDelay(attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func backoffDelay(attempt int) time.Duration {
	base := float64(baseDelay) * float64(uint(1)<<uint(attempt))
	jitter := base * 0.2
	delta := (rand.Float64()*2 - 1) * jitter // uniform in [-jitter, +jitter]
	d := base + delta
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}
