package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brahma/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/brahma/internal/core/domain"
)

func newQueryService(index *memory.VectorIndex, llm *stubLLM) *QueryService {
	retriever := NewRetriever(newHashEmbedder(), index, 3, time.Second)
	composer := NewAnswerComposer(llm, nil, time.Second)
	return NewQueryService(retriever, composer, nil)
}

func TestQueryService_AnswerQuestion(t *testing.T) {
	index := memory.NewVectorIndex()
	seedIndex(t, index, "hash-embed", "Brahma's favorite color is blue.", "Lunch is at noon.")
	llm := &stubLLM{answer: "Blue."}

	result, err := newQueryService(index, llm).AnswerQuestion(context.Background(), "  What is Brahma's favorite color?  ")
	require.NoError(t, err)

	assert.Equal(t, "Blue.", result.Answer)
	assert.Len(t, result.Chunks, 2)
	assert.Equal(t, []domain.Source{{File: "doc.txt"}}, result.Sources)
	assert.Positive(t, result.Elapsed)

	prompt, _ := llm.lastPrompt()
	assert.Contains(t, prompt, "Question: What is Brahma's favorite color?\n")
}

func TestQueryService_EmptyQuestion(t *testing.T) {
	llm := &stubLLM{answer: "x"}
	_, err := newQueryService(memory.NewVectorIndex(), llm).AnswerQuestion(context.Background(), " \t\n")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, llm.calls)
}

func TestQueryService_IndexNotReady(t *testing.T) {
	llm := &stubLLM{answer: "x"}
	_, err := newQueryService(memory.NewVectorIndex(), llm).AnswerQuestion(context.Background(), "hello?")

	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
	assert.Zero(t, llm.calls)
}

func TestQueryService_AnswerWithK(t *testing.T) {
	index := memory.NewVectorIndex()
	seedIndex(t, index, "hash-embed", "a", "b", "c", "d")
	llm := &stubLLM{answer: "ok"}

	result, err := newQueryService(index, llm).Answer(context.Background(), "a", 1)
	require.NoError(t, err)
	assert.Len(t, result.Chunks, 1)
}
