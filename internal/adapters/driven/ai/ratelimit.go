package ai

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
)

// Cloud request pacing.
const (
	DefaultCloudRate  = rate.Limit(2)
	DefaultCloudBurst = 2
)

// Ensure RateLimitedLLM implements the interface.
var _ driven.LLMService = (*RateLimitedLLM)(nil)

// RateLimitedLLM paces requests to a hosted answer model.
type RateLimitedLLM struct {
	inner   driven.LLMService
	limiter *rate.Limiter
}

// NewRateLimitedLLM wraps inner with a token bucket of r requests per
// second and the given burst.
func NewRateLimitedLLM(inner driven.LLMService, r rate.Limit, burst int) *RateLimitedLLM {
	return &RateLimitedLLM{
		inner:   inner,
		limiter: rate.NewLimiter(r, burst),
	}
}

// Generate waits for a token, then delegates.
func (l *RateLimitedLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := l.wait(ctx); err != nil {
		return "", err
	}
	return l.inner.Generate(ctx, prompt, opts)
}

// wait blocks until a request may be sent. Running out of time while
// queued counts as the provider being unavailable.
func (l *RateLimitedLLM) wait(ctx context.Context) error {
	err := l.limiter.Wait(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: rate limit: %w", domain.ErrProviderUnavailable, err)
}

// ModelName returns the wrapped model name.
func (l *RateLimitedLLM) ModelName() string { return l.inner.ModelName() }

// Ping delegates without consuming a token.
func (l *RateLimitedLLM) Ping(ctx context.Context) error { return l.inner.Ping(ctx) }

// Close releases the wrapped service.
func (l *RateLimitedLLM) Close() error { return l.inner.Close() }
