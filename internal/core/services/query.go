package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/logger"
)

// QueryService answers questions by retrieving context and composing an answer.
type QueryService struct {
	retriever *Retriever
	composer  *AnswerComposer

	// swapMu is shared with the index service. Queries only read.
	swapMu *sync.RWMutex
}

// NewQueryService creates a query service. swapMu may be nil when no
// reindex shares the index.
func NewQueryService(retriever *Retriever, composer *AnswerComposer, swapMu *sync.RWMutex) *QueryService {
	if swapMu == nil {
		swapMu = &sync.RWMutex{}
	}
	return &QueryService{
		retriever: retriever,
		composer:  composer,
		swapMu:    swapMu,
	}
}

// AnswerQuestion answers question from the indexed documents.
func (s *QueryService) AnswerQuestion(ctx context.Context, question string) (*domain.QueryResult, error) {
	return s.Answer(ctx, question, 0)
}

// Answer answers question using k retrieved chunks. k <= 0 uses the
// configured default.
func (s *QueryService) Answer(ctx context.Context, question string, k int) (*domain.QueryResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	logger.Section("Answer")
	logger.Debug("Question: %q", question)
	start := time.Now()

	done := logger.Timed("retrieve")
	s.swapMu.RLock()
	chunks, err := s.retriever.Retrieve(ctx, question, k)
	s.swapMu.RUnlock()
	done()
	if err != nil {
		return nil, err
	}
	logger.Debug("Retrieved %d chunks", len(chunks))

	done = logger.Timed("compose")
	result, err := s.composer.Compose(ctx, question, chunks)
	done()
	if err != nil {
		return nil, err
	}

	result.Elapsed = time.Since(start)
	logger.Info("Answered in %s from %d sources", result.Elapsed.Round(time.Millisecond), len(result.Sources))
	return result, nil
}
