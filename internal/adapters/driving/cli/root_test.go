package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driving"
	"github.com/custodia-labs/brahma/internal/logger"
)

// mockEngine is a configurable driving.Engine.
type mockEngine struct {
	cfg       domain.EngineConfig
	reindexFn func() (*domain.IndexReport, error)
	answerFn  func(question string) (*domain.QueryResult, error)
	statusFn  func() (*domain.IndexStatus, error)

	questions []string
	lastK     int
	reindexes int
	closed    int
}

func (m *mockEngine) Reindex(context.Context) (*domain.IndexReport, error) {
	m.reindexes++
	if m.reindexFn != nil {
		return m.reindexFn()
	}
	return &domain.IndexReport{}, nil
}

func (m *mockEngine) AnswerQuestion(_ context.Context, question string) (*domain.QueryResult, error) {
	m.questions = append(m.questions, question)
	if m.answerFn != nil {
		return m.answerFn(question)
	}
	return &domain.QueryResult{Answer: "answer"}, nil
}

func (m *mockEngine) Answer(ctx context.Context, question string, k int) (*domain.QueryResult, error) {
	m.lastK = k
	return m.AnswerQuestion(ctx, question)
}

func (m *mockEngine) Status(context.Context) (*domain.IndexStatus, error) {
	if m.statusFn != nil {
		return m.statusFn()
	}
	return &domain.IndexStatus{Config: m.cfg}, nil
}

func (m *mockEngine) Config() domain.EngineConfig {
	return m.cfg
}

func (m *mockEngine) Close() error {
	m.closed++
	return nil
}

// mockFactory hands out a fixed engine.
type mockFactory struct {
	engine *mockEngine
	err    error
	built  []domain.EngineConfig
}

func (f *mockFactory) Build(_ context.Context, cfg domain.EngineConfig) (driving.Engine, error) {
	f.built = append(f.built, cfg)
	if f.err != nil {
		return nil, f.err
	}
	f.engine.cfg = cfg
	return f.engine, nil
}

// mockSettings is an in-memory driving.SettingsService.
type mockSettings struct {
	cfg      domain.EngineConfig
	loadErr  error
	setErr   error
	checkErr error
	path     string

	set         map[string]string
	reconfigure func(provider domain.Provider, credential string) (driving.Engine, error)
	checked     int
}

func newMockSettings(workspace string) *mockSettings {
	return &mockSettings{
		cfg:  domain.DefaultEngineConfig(workspace),
		path: "/home/user/.brahma/config.toml",
		set:  map[string]string{},
	}
}

func (s *mockSettings) Load() (domain.EngineConfig, error) {
	return s.cfg, s.loadErr
}

func (s *mockSettings) Save(cfg domain.EngineConfig) error {
	s.cfg = cfg
	return nil
}

func (s *mockSettings) Set(key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.set[key] = value
	return nil
}

func (s *mockSettings) Reconfigure(
	_ context.Context, _ driving.Engine, provider domain.Provider, credential string,
) (driving.Engine, error) {
	if s.reconfigure != nil {
		return s.reconfigure(provider, credential)
	}
	return &mockEngine{cfg: s.cfg.WithProvider(provider, credential)}, nil
}

func (s *mockSettings) Check(domain.EngineConfig) error {
	s.checked++
	return s.checkErr
}

func (s *mockSettings) Keys() []string {
	return []string{"index.top_k", "llm.api_key", "llm.provider"}
}

func (s *mockSettings) Path() string {
	return s.path
}

// setupTestServices wires mocks into the commands and resets flag state.
func setupTestServices(t *testing.T) (*mockSettings, *mockFactory) {
	t.Helper()
	settings := newMockSettings(t.TempDir())
	factory := &mockFactory{engine: &mockEngine{}}
	SetServices(Services{Settings: settings, Engines: factory})

	indexJSON = false
	askJSON = false
	askTopK = 0
	statusJSON = false
	statusCheck = false
	providerAPIKey = ""
	providerKeepKey = false
	watchSkipInitial = false
	watchDebounce = 50 * time.Millisecond
	verbose = false

	originalTerminal := stdinIsTerminal
	stdinIsTerminal = func() bool { return false }

	t.Cleanup(func() {
		SetServices(Services{})
		stdinIsTerminal = originalTerminal
		rootCmd.SetArgs(nil)
		logger.SetVerbose(false)
	})
	return settings, factory
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "brahma", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"ask", "chat", "index", "mcp", "settings", "status", "version", "watch"} {
		assert.Contains(t, names, want)
	}
}

func TestExecute_PrintsErrorAndHint(t *testing.T) {
	_, factory := setupTestServices(t)
	factory.engine.answerFn = func(string) (*domain.QueryResult, error) {
		return nil, fmt.Errorf("query: %w", domain.ErrIndexNotReady)
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "anything"})

	err := Execute(context.Background())

	require.ErrorIs(t, err, domain.ErrIndexNotReady)
	assert.Contains(t, buf.String(), "Error: query: index not ready")
	assert.Contains(t, buf.String(), "Hint: build the index first: brahma index")
}

func TestOpenEngine_NotConfigured(t *testing.T) {
	SetServices(Services{})

	_, err := openEngine(context.Background())

	assert.ErrorIs(t, err, errNotConfigured)
}

func TestOpenEngine_LoadError(t *testing.T) {
	settings, factory := setupTestServices(t)
	settings.loadErr = domain.ErrConfiguration

	_, err := openEngine(context.Background())

	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Empty(t, factory.built)
}

func TestOpenEngine_BuildsFromLoadedConfig(t *testing.T) {
	settings, factory := setupTestServices(t)

	engine, err := openEngine(context.Background())

	require.NoError(t, err)
	assert.Equal(t, settings.cfg.WorkspaceDir, engine.Config().WorkspaceDir)
	assert.Len(t, factory.built, 1)
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("")
	assert.Equal(t, original, version)

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}

func TestEnvEnabled(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{" yes ", true},
		{"on", true},
		{"", false},
		{"0", false},
		{"false", false},
		{"nope", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, envEnabled(tt.value))
		})
	}
}

func TestGuidance(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"missing credential", domain.ErrMissingCredential, "--api-key"},
		{"provider unavailable", domain.ErrProviderUnavailable, "ollama serve"},
		{"index not ready", domain.ErrIndexNotReady, "brahma index"},
		{"indexing in progress", domain.ErrIndexingInProgress, "wait"},
		{"model error", domain.ErrModelError, "model name"},
		{"indexing failed", domain.ErrIndexingFailed, "previous index was kept"},
		{"configuration", domain.ErrConfiguration, "brahma settings show"},
		{"invalid input", domain.ErrInvalidInput, "--help"},
		{"wrapped", fmt.Errorf("answer: %w", domain.ErrMissingCredential), "BRAHMA_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, Guidance(tt.err), tt.contains)
		})
	}
}

func TestGuidance_NoHint(t *testing.T) {
	assert.Empty(t, Guidance(nil))
	assert.Empty(t, Guidance(errors.New("something else")))
}

func TestGuidance_MissingCredentialWinsOverConfiguration(t *testing.T) {
	err := errors.Join(domain.ErrConfiguration, domain.ErrMissingCredential)

	assert.Contains(t, Guidance(err), "--api-key")
}
