// Package ollama provides an embedding service adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/brahma/internal/adapters/driven/apierr"
	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
	"github.com/custodia-labs/brahma/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = domain.DefaultOllamaURL
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = domain.DefaultRequestTimeout
	DefaultDimensions = 768 // nomic-embed-text default
)

const providerName = "ollama"

// Config holds configuration for the Ollama embedding service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model to use (default: nomic-embed-text).
	Model string

	// Timeout is the request timeout.
	Timeout time.Duration

	// Dimensions is the embedding vector size (model-dependent).
	Dimensions int

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// EmbeddingService generates embeddings using Ollama.
type EmbeddingService struct {
	client     *http.Client
	baseURL    string
	model      string
	dimensions int

	// legacy is set once the server has rejected /api/embed.
	legacy atomic.Bool
}

// embedRequest is the batched /api/embed request format.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse is the batched /api/embed response format.
type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// legacyRequest is the single-text /api/embeddings request format.
type legacyRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// legacyResponse is the single-text /api/embeddings response format.
type legacyResponse struct {
	Embedding []float64 `json:"embedding"`
}

// errEndpointMissing means the server predates /api/embed.
var errEndpointMissing = errors.New("endpoint not found")

// NewEmbeddingService creates a new Ollama embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &EmbeddingService{
		client:     client,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
// Servers without /api/embed are served one text at a time.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	if !s.legacy.Load() {
		vectors, err := s.embedBatch(ctx, texts)
		if !errors.Is(err, errEndpointMissing) {
			return vectors, err
		}
		logger.Debug("ollama: /api/embed not available, using /api/embeddings")
		s.legacy.Store(true)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := s.embedLegacy(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (s *EmbeddingService) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var resp embedResponse
	if err := s.post(ctx, "/api/embed", embedRequest{Model: s.model, Input: texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, apierr.Model(providerName, "expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	vectors := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		if len(e) == 0 {
			return nil, apierr.Model(providerName, "empty embedding for text %d", i)
		}
		vectors[i] = toFloat32(e)
	}
	return vectors, nil
}

func (s *EmbeddingService) embedLegacy(ctx context.Context, text string) ([]float32, error) {
	var resp legacyResponse
	if err := s.post(ctx, "/api/embeddings", legacyRequest{Model: s.model, Prompt: text}, &resp); err != nil {
		if errors.Is(err, errEndpointMissing) {
			return nil, apierr.Status(providerName, http.StatusNotFound, nil)
		}
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, apierr.Model(providerName, "empty embedding")
	}
	return toFloat32(resp.Embedding), nil
}

// post sends a JSON request and decodes the JSON response into out.
func (s *EmbeddingService) post(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return apierr.Transport(providerName, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierr.Transport(providerName, err)
	}

	// A 404 that is not about the model means the route is missing.
	if resp.StatusCode == http.StatusNotFound && !strings.Contains(strings.ToLower(string(data)), "model") {
		return errEndpointMissing
	}
	if !apierr.IsSuccess(resp.StatusCode) {
		return apierr.Status(providerName, resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return apierr.Model(providerName, "decode response: %v", err)
	}
	return nil
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return apierr.Transport(providerName, err)
	}
	defer resp.Body.Close()

	if !apierr.IsSuccess(resp.StatusCode) {
		body, _ := io.ReadAll(resp.Body)
		return apierr.Status(providerName, resp.StatusCode, body)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
