// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"fmt"

	ollamaembed "github.com/custodia-labs/brahma/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/brahma/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/brahma/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/brahma/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/brahma/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
	"github.com/custodia-labs/brahma/internal/logger"
)

// NewEmbedder builds the embedding backend for cfg, memoised by text.
func NewEmbedder(cfg domain.EngineConfig) (driven.EmbeddingService, error) {
	settings := cfg.EmbeddingSettings()
	embedder, err := CreateEmbeddingService(&settings)
	if err != nil {
		return nil, err
	}
	logger.Debug("Embedding with %s (%s)", settings.Provider, embedder.ModelName())
	return NewCachedEmbedder(embedder, DefaultCacheSize), nil
}

// NewLLM builds the answer model for cfg. Cloud models are rate limited.
// A cloud provider without a credential returns domain.ErrMissingCredential.
func NewLLM(cfg domain.EngineConfig) (driven.LLMService, error) {
	settings := cfg.LLM()
	llm, err := CreateLLMService(&settings)
	if err != nil {
		return nil, err
	}
	logger.Debug("Answering with %s (%s)", settings.Provider, llm.ModelName())
	if settings.Provider.RequiresAPIKey() {
		return NewRateLimitedLLM(llm, DefaultCloudRate, DefaultCloudBurst), nil
	}
	return llm, nil
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding provider is not configured", domain.ErrConfiguration)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("%w: anthropic does not support embeddings, use ollama or openai",
			domain.ErrConfiguration)

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", domain.ErrConfiguration, settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Hosted providers without an API key fail with domain.ErrMissingCredential.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: answer model is not configured", domain.ErrConfiguration)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", domain.ErrConfiguration, settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    settings.Timeout,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    settings.Timeout,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: settings.Timeout,
	})
}

// createOpenAILLM creates an OpenAI LLM service.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: settings.Timeout,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: settings.Timeout,
	})
}
