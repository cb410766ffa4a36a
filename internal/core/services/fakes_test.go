package services

import (
	"context"
	"hash/fnv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
	"github.com/custodia-labs/brahma/internal/core/ports/driving"
)

// --- Mock implementations ---

const testDimensions = 64

// hashEmbedder is a deterministic bag-of-words embedder.
// Texts sharing words have a small cosine distance.
type hashEmbedder struct {
	model string
	err   error

	// started is signalled on the first batch, then the batch waits on release.
	started chan struct{}
	release chan struct{}
	once    sync.Once

	batches atomic.Int32
	texts   atomic.Int32
	closed  atomic.Bool
}

func newHashEmbedder() *hashEmbedder {
	return &hashEmbedder{model: "hash-embed"}
}

func (e *hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *hashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.batches.Add(1)
	e.texts.Add(int32(len(texts)))

	if e.started != nil {
		e.once.Do(func() { close(e.started) })
		select {
		case <-e.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if e.err != nil {
		return nil, e.err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = hashVector(text)
	}
	return vectors, nil
}

func (e *hashEmbedder) Dimensions() int   { return testDimensions }
func (e *hashEmbedder) ModelName() string { return e.model }
func (e *hashEmbedder) Ping(_ context.Context) error {
	return e.err
}
func (e *hashEmbedder) Close() error {
	e.closed.Store(true)
	return nil
}

func hashVector(text string) []float32 {
	v := make([]float32, testDimensions)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%testDimensions]++
	}
	var norm float64
	for _, x := range v {
		norm += float64(x * x)
	}
	if norm == 0 {
		v[0] = 1
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

// stubLLM returns a fixed answer and records what it was asked.
type stubLLM struct {
	mu     sync.Mutex
	answer string
	err    error
	block  bool
	prompt string
	system string
	calls  int
	closed bool
}

func (l *stubLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	l.mu.Lock()
	l.prompt = prompt
	l.system = opts.System
	l.calls++
	l.mu.Unlock()

	if l.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if l.err != nil {
		return "", l.err
	}
	return l.answer, nil
}

func (l *stubLLM) ModelName() string            { return "stub-llm" }
func (l *stubLLM) Ping(_ context.Context) error { return nil }
func (l *stubLLM) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

func (l *stubLLM) lastPrompt() (string, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.prompt, l.system
}

// stubPromptStore serves prompts from a map.
type stubPromptStore struct {
	prompts map[string]string
}

func (s *stubPromptStore) Load(name string) (string, error) {
	p, ok := s.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (s *stubPromptStore) Reload() {}

// mapConfigStore implements driven.ConfigStore in memory.
type mapConfigStore struct {
	mu    sync.Mutex
	data  map[string]any
	saves int
}

func newMapConfigStore() *mapConfigStore {
	return &mapConfigStore{data: map[string]any{}}
}

func (s *mapConfigStore) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *mapConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

func (s *mapConfigStore) GetInt(key string) int {
	v, _ := s.Get(key)
	i, _ := v.(int)
	return i
}

func (s *mapConfigStore) GetBool(key string) bool {
	v, _ := s.Get(key)
	b, _ := v.(bool)
	return b
}

func (s *mapConfigStore) GetStringSlice(key string) []string {
	v, _ := s.Get(key)
	sl, _ := v.([]string)
	return sl
}

func (s *mapConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == nil {
		delete(s.data, key)
		return nil
	}
	s.data[key] = value
	return nil
}

func (s *mapConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return nil
}

func (s *mapConfigStore) Load() error  { return nil }
func (s *mapConfigStore) Path() string { return "/tmp/brahma/config.toml" }

// stubFactory builds engines or fails, recording configurations.
type stubFactory struct {
	err   error
	built []domain.EngineConfig
}

func (f *stubFactory) Build(_ context.Context, cfg domain.EngineConfig) (driving.Engine, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.built = append(f.built, cfg)
	return &stubEngine{cfg: cfg}, nil
}

// stubEngine is a driving.Engine that only tracks Close.
type stubEngine struct {
	cfg    domain.EngineConfig
	closed bool
}

func (e *stubEngine) Reindex(_ context.Context) (*domain.IndexReport, error) {
	return &domain.IndexReport{}, nil
}

func (e *stubEngine) AnswerQuestion(_ context.Context, _ string) (*domain.QueryResult, error) {
	return &domain.QueryResult{}, nil
}

func (e *stubEngine) Status(_ context.Context) (*domain.IndexStatus, error) {
	return &domain.IndexStatus{Config: e.cfg}, nil
}

func (e *stubEngine) Config() domain.EngineConfig { return e.cfg }

func (e *stubEngine) Close() error {
	e.closed = true
	return nil
}

// --- Helpers ---

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func chunkAt(source string, page *int, content string) domain.Chunk {
	return domain.Chunk{ID: source + content, Source: source, Page: page, Content: content}
}
