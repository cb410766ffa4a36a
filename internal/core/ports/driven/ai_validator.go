package driven

import "github.com/custodia-labs/brahma/internal/core/domain"

// AIConfigValidator validates AI provider configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying AI services.
type AIConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging the provider.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM validates an answer model configuration by pinging the provider.
	// A hosted provider without a key fails with domain.ErrMissingCredential.
	ValidateLLM(config *domain.LLMSettings) error
}
