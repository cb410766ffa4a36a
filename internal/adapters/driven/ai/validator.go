package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
)

// DefaultPingTimeout bounds each backend reachability check.
const DefaultPingTimeout = 5 * time.Second

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks settings by building the backend and pinging it.
// The backend is closed again whether or not the ping succeeds.
type ConfigValidator struct {
	timeout time.Duration
}

// ValidatorOption configures a ConfigValidator.
type ValidatorOption func(*ConfigValidator)

// WithPingTimeout overrides DefaultPingTimeout.
func WithPingTimeout(d time.Duration) ValidatorOption {
	return func(v *ConfigValidator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// NewConfigValidator creates a validator.
func NewConfigValidator(opts ...ValidatorOption) *ConfigValidator {
	v := &ConfigValidator{timeout: DefaultPingTimeout}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// pinger is the part of a backend the validator needs.
type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

func (v *ConfigValidator) ping(what string, svc pinger) error {
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

// ValidateEmbedding pings the embedding backend described by config.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(config)
	if err != nil {
		return err
	}
	return v.ping("embedding backend "+string(config.Provider), svc)
}

// ValidateLLM pings the answer model described by config.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	svc, err := CreateLLMService(config)
	if err != nil {
		return err
	}
	return v.ping("answer model "+string(config.Provider), svc)
}
