package mcp

import (
	"context"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driving"
)

// mockEngine is a mock implementation of driving.Engine.
type mockEngine struct {
	result    *domain.QueryResult
	report    *domain.IndexReport
	status    *domain.IndexStatus
	err       error
	questions []string
}

func (m *mockEngine) Reindex(_ context.Context) (*domain.IndexReport, error) {
	return m.report, m.err
}

func (m *mockEngine) AnswerQuestion(_ context.Context, question string) (*domain.QueryResult, error) {
	m.questions = append(m.questions, question)
	return m.result, m.err
}

func (m *mockEngine) Status(_ context.Context) (*domain.IndexStatus, error) {
	return m.status, m.err
}

func (m *mockEngine) Config() domain.EngineConfig {
	if m.status != nil {
		return m.status.Config
	}
	return domain.EngineConfig{}
}

func (m *mockEngine) Close() error {
	return nil
}

// mockTopKEngine also accepts a retrieval depth.
type mockTopKEngine struct {
	mockEngine
	k int
}

func (m *mockTopKEngine) Answer(ctx context.Context, question string, k int) (*domain.QueryResult, error) {
	m.k = k
	return m.AnswerQuestion(ctx, question)
}

// Verify interface compliance.
var (
	_ driving.Engine = (*mockEngine)(nil)
	_ topKAnswerer   = (*mockTopKEngine)(nil)
)
