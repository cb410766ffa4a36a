package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
	"github.com/custodia-labs/brahma/internal/core/ports/driving"
	"github.com/custodia-labs/brahma/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider     = "llm.provider"
	keyLLMCloudBackend = "llm.cloud_backend"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyTopK            = "index.top_k"
	keyChunkSize       = "index.chunk_size"
	keyChunkOverlap    = "index.chunk_overlap"
	keyIndexDir        = "index.dir"
	keyExclude         = "index.exclude"
	keyRecursive       = "index.recursive"
	keyBatchSize       = "index.batch_size"
	keyWorkers         = "index.workers"
	keyWorkspace       = "workspace.dir"
	keyRequestTimeout  = "request.timeout"
)

// Environment variables that override persisted settings.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvWorkspace      = "BRAHMA_WORKSPACE"
	EnvIndexDir       = "BRAHMA_INDEX_DIR"
	EnvProvider       = "BRAHMA_PROVIDER"
	EnvAPIKey         = "BRAHMA_API_KEY"
	EnvCloudBackend   = "BRAHMA_CLOUD_BACKEND"
	EnvLLMModel       = "BRAHMA_LLM_MODEL"
	EnvEmbeddingModel = "BRAHMA_EMBEDDING_MODEL"
	EnvOllamaURL      = "BRAHMA_OLLAMA_URL"
)

// settingKind describes how a string value is parsed for a key.
type settingKind int

const (
	kindString settingKind = iota
	kindSecret
	kindInt
	kindBool
	kindList
	kindDuration
	kindProvider
	kindAIProvider
)

var settingKinds = map[string]settingKind{
	keyLLMProvider:     kindProvider,
	keyLLMCloudBackend: kindAIProvider,
	keyLLMAPIKey:       kindSecret,
	keyLLMModel:        kindString,
	keyLLMBaseURL:      kindString,
	keyEmbedProvider:   kindAIProvider,
	keyEmbedModel:      kindString,
	keyEmbedBaseURL:    kindString,
	keyEmbedAPIKey:     kindSecret,
	keyTopK:            kindInt,
	keyChunkSize:       kindInt,
	keyChunkOverlap:    kindInt,
	keyIndexDir:        kindString,
	keyExclude:         kindList,
	keyRecursive:       kindBool,
	keyBatchSize:       kindInt,
	keyWorkers:         kindInt,
	keyWorkspace:       kindString,
	keyRequestTimeout:  kindDuration,
}

// SettingsService resolves and persists the engine configuration.
// Precedence is environment, then the settings file, then defaults.
type SettingsService struct {
	configStore driven.ConfigStore
	factory     driving.EngineFactory
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithEnvLookup replaces os.LookupEnv. Useful for testing.
func WithEnvLookup(lookup func(string) (string, bool)) SettingsOption {
	return func(s *SettingsService) {
		s.lookupEnv = lookup
	}
}

// WithAIValidator sets the validator used by Check.
func WithAIValidator(v driven.AIConfigValidator) SettingsOption {
	return func(s *SettingsService) {
		s.aiValidator = v
	}
}

// NewSettingsService creates a new settings service.
// The factory is used by Reconfigure and may be nil otherwise.
func NewSettingsService(configStore driven.ConfigStore, factory driving.EngineFactory, opts ...SettingsOption) *SettingsService {
	s := &SettingsService{
		configStore: configStore,
		factory:     factory,
		lookupEnv:   os.LookupEnv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load resolves the effective configuration.
func (s *SettingsService) Load() (domain.EngineConfig, error) {
	workspace := s.getString(keyWorkspace, ".")
	if v, ok := s.env(EnvWorkspace); ok {
		workspace = v
	}
	absWorkspace, err := filepath.Abs(workspace)
	if err != nil {
		return domain.EngineConfig{}, fmt.Errorf("%w: workspace %s: %w", domain.ErrConfiguration, workspace, err)
	}

	cfg := domain.DefaultEngineConfig(absWorkspace)

	cfg.Provider = domain.Provider(s.getString(keyLLMProvider, cfg.Provider.String()))
	cfg.CloudBackend = domain.AIProvider(s.getString(keyLLMCloudBackend, cfg.CloudBackend.String()))
	cfg.Credential = s.configStore.GetString(keyLLMAPIKey)
	cfg.LLMModel = s.configStore.GetString(keyLLMModel)
	cfg.LocalBaseURL = s.getString(keyLLMBaseURL, cfg.LocalBaseURL)

	embedProvider := domain.AIProvider(s.getString(keyEmbedProvider, cfg.Embedding.Provider.String()))
	cfg.Embedding = domain.EmbeddingSettings{
		Provider: embedProvider,
		Model:    s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider]),
		BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // Empty follows the local base URL
		APIKey:   s.configStore.GetString(keyEmbedAPIKey),
	}

	cfg.TopK = s.getInt(keyTopK, cfg.TopK)
	cfg.ChunkSize = s.getInt(keyChunkSize, cfg.ChunkSize)
	cfg.ChunkOverlap = s.getInt(keyChunkOverlap, cfg.ChunkOverlap)
	cfg.EmbedBatchSize = s.getInt(keyBatchSize, cfg.EmbedBatchSize)
	cfg.EmbedWorkers = s.getInt(keyWorkers, cfg.EmbedWorkers)
	cfg.Recursive = s.configStore.GetBool(keyRecursive)
	if _, ok := s.configStore.Get(keyExclude); ok {
		cfg.Exclude = s.configStore.GetStringSlice(keyExclude)
	}
	if v := s.configStore.GetString(keyRequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return domain.EngineConfig{}, fmt.Errorf("%w: %s: %w", domain.ErrConfiguration, keyRequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}

	indexDir := s.configStore.GetString(keyIndexDir)

	if v, ok := s.env(EnvIndexDir); ok {
		indexDir = v
	}
	if v, ok := s.env(EnvProvider); ok {
		cfg.Provider = domain.Provider(strings.ToLower(v))
	}
	if v, ok := s.env(EnvAPIKey); ok {
		cfg.Credential = v
	}
	if v, ok := s.env(EnvCloudBackend); ok {
		cfg.CloudBackend = domain.AIProvider(strings.ToLower(v))
	}
	if v, ok := s.env(EnvLLMModel); ok {
		cfg.LLMModel = v
	}
	if v, ok := s.env(EnvEmbeddingModel); ok {
		cfg.Embedding.Model = v
	}
	if v, ok := s.env(EnvOllamaURL); ok {
		cfg.LocalBaseURL = v
	}

	if cfg.Embedding.BaseURL == "" && embedProvider == domain.AIProviderOllama {
		cfg.Embedding.BaseURL = cfg.LocalBaseURL
	}

	if indexDir != "" {
		if !filepath.IsAbs(indexDir) {
			indexDir = filepath.Join(absWorkspace, indexDir)
		}
		cfg.IndexDir = indexDir
	}

	if err := cfg.Validate(); err != nil {
		return domain.EngineConfig{}, err
	}
	return cfg, nil
}

// Save persists the configurable parts of cfg.
// An empty credential leaves any stored credential in place.
func (s *SettingsService) Save(cfg domain.EngineConfig) error {
	values := []struct {
		key   string
		value any
	}{
		{keyLLMProvider, cfg.Provider.String()},
		{keyLLMCloudBackend, cfg.CloudBackend.String()},
		{keyLLMModel, cfg.LLMModel},
		{keyLLMBaseURL, cfg.LocalBaseURL},
		{keyEmbedProvider, cfg.Embedding.Provider.String()},
		{keyEmbedModel, cfg.Embedding.Model},
		{keyEmbedBaseURL, cfg.Embedding.BaseURL},
		{keyTopK, cfg.TopK},
		{keyChunkSize, cfg.ChunkSize},
		{keyChunkOverlap, cfg.ChunkOverlap},
		{keyExclude, cfg.Exclude},
		{keyRecursive, cfg.Recursive},
		{keyBatchSize, cfg.EmbedBatchSize},
		{keyWorkers, cfg.EmbedWorkers},
		{keyWorkspace, cfg.WorkspaceDir},
		{keyIndexDir, cfg.IndexDir},
		{keyRequestTimeout, cfg.RequestTimeout.String()},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	if cfg.Credential != "" {
		if err := s.configStore.Set(keyLLMAPIKey, cfg.Credential); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	}
	if cfg.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, cfg.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}
	return s.configStore.Save()
}

// Set parses value for key and persists it. An empty value removes the
// key so the default applies again.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		if err := s.configStore.Set(key, nil); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
		return s.configStore.Save()
	}

	parsed, err := parseSetting(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	previous, hadPrevious := s.configStore.Get(key)
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if _, err := s.Load(); err != nil {
		s.restore(key, previous, hadPrevious)
		return err
	}
	return s.configStore.Save()
}

// restore puts back the value a rejected Set replaced.
func (s *SettingsService) restore(key string, previous any, hadPrevious bool) {
	if !hadPrevious {
		previous = nil
	}
	if err := s.configStore.Set(key, previous); err != nil {
		logger.Warn("Failed to restore %s: %v", key, err)
	}
}

// Reconfigure switches the answer provider. The new engine is built before
// anything is persisted, so a failed switch leaves both the settings and
// current untouched. credential is used exactly as given: switching to
// cloud with an empty credential succeeds, and questions then fail with
// domain.ErrMissingCredential. On success current is closed.
func (s *SettingsService) Reconfigure(
	ctx context.Context, current driving.Engine, provider domain.Provider, credential string,
) (driving.Engine, error) {
	if !provider.IsValid() {
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
	}
	if s.factory == nil {
		return nil, fmt.Errorf("%w: no engine factory", domain.ErrConfiguration)
	}

	var cfg domain.EngineConfig
	if current != nil {
		cfg = current.Config()
	} else {
		loaded, err := s.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	next := cfg.WithProvider(provider, strings.TrimSpace(credential))
	if err := next.Validate(); err != nil {
		return nil, err
	}

	logger.Section("Reconfigure")
	logger.Debug("Switching provider %s -> %s", cfg.Provider, next.Provider)

	engine, err := s.factory.Build(ctx, next)
	if err != nil {
		return nil, err
	}

	if err := s.persistProvider(next); err != nil {
		_ = engine.Close()
		return nil, err
	}

	if current != nil {
		if err := current.Close(); err != nil {
			logger.Warn("Failed to close previous engine: %v", err)
		}
	}
	logger.Info("Provider set to %s", next.Provider)
	return engine, nil
}

func (s *SettingsService) persistProvider(cfg domain.EngineConfig) error {
	if err := s.configStore.Set(keyLLMProvider, cfg.Provider.String()); err != nil {
		return fmt.Errorf("save %s: %w", keyLLMProvider, err)
	}
	// A local switch leaves any stored cloud key alone; a cloud switch
	// stores exactly the credential it was given.
	switch {
	case cfg.Credential != "":
		if err := s.configStore.Set(keyLLMAPIKey, cfg.Credential); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	case cfg.Provider.RequiresCredential():
		if err := s.configStore.Set(keyLLMAPIKey, nil); err != nil {
			return fmt.Errorf("clear %s: %w", keyLLMAPIKey, err)
		}
	}
	return s.configStore.Save()
}

// Check pings the embedding backend and, when one is configured, the
// answer model of cfg.
func (s *SettingsService) Check(cfg domain.EngineConfig) error {
	if s.aiValidator == nil {
		return nil
	}
	embedding := cfg.EmbeddingSettings()
	if err := s.aiValidator.ValidateEmbedding(&embedding); err != nil {
		return err
	}
	llm := cfg.LLM()
	if !llm.IsConfigured() {
		return fmt.Errorf("%w: %s requires an API key", domain.ErrMissingCredential, llm.Provider)
	}
	return s.aiValidator.ValidateLLM(&llm)
}

// Keys returns the settable keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// IsSecret reports whether key holds a credential that must not be displayed.
func IsSecret(key string) bool {
	return settingKinds[key] == kindSecret
}

// Path returns the settings file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// env returns a non-empty environment override.
func (s *SettingsService) env(name string) (string, bool) {
	v, ok := s.lookupEnv(name)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// getString retrieves a string config value with a default.
func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

// getInt retrieves an int config value with a default.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func parseSetting(kind settingKind, value string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindBool:
		return strconv.ParseBool(value)
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, err
		}
		return d.String(), nil
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	case kindProvider:
		p := domain.Provider(strings.ToLower(value))
		if !p.IsValid() {
			return nil, errors.New("must be one of local, cloud")
		}
		return p.String(), nil
	case kindAIProvider:
		p := domain.AIProvider(strings.ToLower(value))
		if !p.IsValid() {
			return nil, fmt.Errorf("unknown provider %q", value)
		}
		return p.String(), nil
	default:
		return value, nil
	}
}
