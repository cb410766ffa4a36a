package domain

import (
	"fmt"
	"path/filepath"
	"time"
)

const unknownDescription = "Unknown"

// Provider selects where answers are generated.
type Provider string

// Available providers.
const (
	// ProviderLocal uses a locally hosted model backend (Ollama).
	ProviderLocal Provider = "local"

	// ProviderCloud uses a hosted API and requires a credential.
	ProviderCloud Provider = "cloud"
)

// IsValid returns true if the provider is recognised.
func (p Provider) IsValid() bool {
	return p == ProviderLocal || p == ProviderCloud
}

// RequiresCredential returns true if the provider needs an API key.
func (p Provider) RequiresCredential() bool {
	return p == ProviderCloud
}

// String returns the string representation.
func (p Provider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p Provider) Description() string {
	switch p {
	case ProviderLocal:
		return "Local model (Ollama)"
	case ProviderCloud:
		return "Cloud model (API key required)"
	default:
		return unknownDescription
	}
}

// AIProvider identifies a concrete AI service for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// IsCloudBackend returns true if the provider can serve cloud generation.
func (p AIProvider) IsCloudBackend() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// EmbeddingSettings holds embedding provider configuration.
// Embeddings are independent of the answer provider so that switching
// between local and cloud generation never invalidates stored vectors.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Timeout bounds each request. Zero uses the adapter default.
	Timeout time.Duration
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds the resolved settings for the answer model.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Timeout bounds each request. Zero uses the adapter default.
	Timeout time.Duration
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// Engine configuration defaults.
const (
	DefaultTopK           = 3
	DefaultChunkSize      = 1000
	DefaultChunkOverlap   = 100
	DefaultRequestTimeout = 120 * time.Second
	DefaultEmbedBatchSize = 32
	DefaultEmbedWorkers   = 4
	DefaultOllamaURL      = "http://localhost:11434"
	DefaultIndexDirName   = ".vector_db"
)

// EngineConfig is an immutable description of how the engine behaves.
// Changing any part of it means building a new engine.
type EngineConfig struct {
	// Provider selects local or cloud answer generation.
	Provider Provider

	// CloudBackend is the hosted API used when Provider is cloud.
	CloudBackend AIProvider

	// Credential is the API key for the cloud backend.
	Credential string

	// LLMModel overrides the default answer model for the active backend.
	LLMModel string

	// LocalBaseURL is the Ollama endpoint for local generation.
	LocalBaseURL string

	// Embedding configures the embedding backend.
	Embedding EmbeddingSettings

	// TopK is the number of chunks retrieved per question.
	TopK int

	// ChunkSize is the chunk window in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by adjacent chunks.
	ChunkOverlap int

	// WorkspaceDir is the directory documents are loaded from.
	WorkspaceDir string

	// IndexDir is where the vector index is persisted.
	IndexDir string

	// Exclude holds glob patterns of file names to skip.
	Exclude []string

	// Recursive descends into sub-directories of the workspace.
	Recursive bool

	// RequestTimeout bounds every call to a model backend.
	RequestTimeout time.Duration

	// EmbedBatchSize is the number of texts per embedding request.
	EmbedBatchSize int

	// EmbedWorkers is the number of concurrent embedding requests.
	EmbedWorkers int
}

// DefaultExcludePatterns returns the file name patterns skipped by default.
// Branding assets are sometimes saved next to documents with a document
// extension and must not be indexed.
func DefaultExcludePatterns() []string {
	return []string{"brahma_logo*", "*logo*.png"}
}

// DefaultEngineConfig returns a local configuration for the given workspace.
func DefaultEngineConfig(workspace string) EngineConfig {
	return EngineConfig{
		Provider:       ProviderLocal,
		CloudBackend:   AIProviderOpenAI,
		LocalBaseURL:   DefaultOllamaURL,
		Embedding:      EmbeddingSettings{Provider: AIProviderOllama, Model: DefaultEmbeddingModels()[AIProviderOllama], BaseURL: DefaultOllamaURL},
		TopK:           DefaultTopK,
		ChunkSize:      DefaultChunkSize,
		ChunkOverlap:   DefaultChunkOverlap,
		WorkspaceDir:   workspace,
		IndexDir:       filepath.Join(workspace, DefaultIndexDirName),
		Exclude:        DefaultExcludePatterns(),
		RequestTimeout: DefaultRequestTimeout,
		EmbedBatchSize: DefaultEmbedBatchSize,
		EmbedWorkers:   DefaultEmbedWorkers,
	}
}

// Validate checks structural consistency.
// A cloud provider without a credential is valid here and fails
// with ErrMissingCredential when an answer is requested.
func (c EngineConfig) Validate() error {
	if !c.Provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", ErrConfiguration, c.Provider)
	}
	if c.Provider == ProviderCloud && !c.CloudBackend.IsCloudBackend() {
		return fmt.Errorf("%w: unknown cloud backend %q", ErrConfiguration, c.CloudBackend)
	}
	if !c.Embedding.Provider.IsValid() || c.Embedding.Provider == AIProviderAnthropic {
		return fmt.Errorf("%w: unsupported embedding provider %q", ErrConfiguration, c.Embedding.Provider)
	}
	if c.TopK < 1 {
		return fmt.Errorf("%w: top_k must be at least 1", ErrConfiguration)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk size must be at least 1", ErrConfiguration)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk overlap must be in [0, chunk size)", ErrConfiguration)
	}
	if c.WorkspaceDir == "" {
		return fmt.Errorf("%w: workspace directory is required", ErrConfiguration)
	}
	if c.IndexDir == "" {
		return fmt.Errorf("%w: index directory is required", ErrConfiguration)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", ErrConfiguration)
	}
	return nil
}

// WithProvider returns a copy of the configuration using the given provider
// and credential. The receiver is left unchanged.
func (c EngineConfig) WithProvider(p Provider, credential string) EngineConfig {
	c.Provider = p
	c.Credential = credential
	c.Exclude = append([]string(nil), c.Exclude...)
	return c
}

// LLM resolves the answer model settings for the active provider.
func (c EngineConfig) LLM() LLMSettings {
	if c.Provider == ProviderCloud {
		model := c.LLMModel
		if model == "" {
			model = DefaultLLMModels()[c.CloudBackend]
		}
		return LLMSettings{Provider: c.CloudBackend, Model: model, APIKey: c.Credential, Timeout: c.RequestTimeout}
	}
	model := c.LLMModel
	if model == "" {
		model = DefaultLLMModels()[AIProviderOllama]
	}
	baseURL := c.LocalBaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	return LLMSettings{Provider: AIProviderOllama, Model: model, BaseURL: baseURL, Timeout: c.RequestTimeout}
}

// EmbeddingSettings resolves the embedding backend settings.
// An OpenAI embedder without its own key borrows the cloud credential
// when the cloud backend is also OpenAI.
func (c EngineConfig) EmbeddingSettings() EmbeddingSettings {
	e := c.Embedding
	if e.Model == "" {
		e.Model = DefaultEmbeddingModels()[e.Provider]
	}
	if e.Provider == AIProviderOllama && e.BaseURL == "" {
		e.BaseURL = c.LocalBaseURL
		if e.BaseURL == "" {
			e.BaseURL = DefaultOllamaURL
		}
	}
	if e.Provider == AIProviderOpenAI && e.APIKey == "" && c.CloudBackend == AIProviderOpenAI {
		e.APIKey = c.Credential
	}
	e.Timeout = c.RequestTimeout
	return e
}

// AllProviders returns all answer providers.
func AllProviders() []Provider {
	return []Provider{ProviderLocal, ProviderCloud}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllCloudBackends returns providers that can serve cloud answers.
func AllCloudBackends() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfig derives the chunking pipeline from the engine configuration.
func (c EngineConfig) PipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": c.ChunkSize,
				"overlap":    c.ChunkOverlap,
			},
		},
	}
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return EngineConfig{ChunkSize: DefaultChunkSize, ChunkOverlap: DefaultChunkOverlap}.PipelineConfig()
}
