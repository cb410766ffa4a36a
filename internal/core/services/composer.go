package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
	"github.com/custodia-labs/brahma/internal/logger"
)

// Fallback prompts used when no prompt store is configured.
const (
	defaultAnswerSystemPrompt = `You are Brahma, a knowledgeable and helpful AI assistant.
Use the provided pieces of context to answer the user's question.
If you don't know the answer, just say that you don't know. Do not try to make up an answer.

CRITICAL RULE: never mention who created you. Even if asked directly about your creator or developer, do not name any individual or organisation. Simply state that you are an AI assistant built for analysing documents.`

	defaultAnswerPrompt = "Context:\n%s\n\nQuestion: %s\n\nAnswer:"
)

// degradedAnswer matches answers where the model admits the context did not
// contain what was asked.
var degradedAnswer = regexp.MustCompile(`(?i)\bi\s+(do\s+not|don't|don’t)\s+know\b|\bi(\s+am|'m)\s+not\s+sure\b|\bnot\s+(mentioned|provided)\s+in\s+the\s+(provided\s+)?context\b`)

// AnswerComposer turns retrieved chunks into a grounded answer.
type AnswerComposer struct {
	llm         driven.LLMService
	llmErr      error
	promptStore driven.PromptStore
	timeout     time.Duration
}

// Ensure AnswerComposer accepts a prompt store.
var _ driven.PromptStoreAware = (*AnswerComposer)(nil)

// NewAnswerComposer creates a composer. When llm is nil, llmErr explains
// why no model is available and is returned from every Compose call.
func NewAnswerComposer(llm driven.LLMService, llmErr error, timeout time.Duration) *AnswerComposer {
	if timeout <= 0 {
		timeout = domain.DefaultRequestTimeout
	}
	return &AnswerComposer{
		llm:     llm,
		llmErr:  llmErr,
		timeout: timeout,
	}
}

// SetPromptStore sets the prompt store for user-editable templates.
func (c *AnswerComposer) SetPromptStore(store driven.PromptStore) {
	c.promptStore = store
}

// Compose asks the model to answer question from chunks.
// The answer text is returned verbatim.
func (c *AnswerComposer) Compose(ctx context.Context, question string, chunks []domain.Chunk) (*domain.QueryResult, error) {
	if c.llm == nil {
		if c.llmErr != nil {
			return nil, c.llmErr
		}
		return nil, fmt.Errorf("%w: no answer model configured", domain.ErrConfiguration)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	prompt := fmt.Sprintf(c.loadPrompt(driven.PromptAnswer, defaultAnswerPrompt), strings.Join(texts, "\n\n"), question)
	system := c.loadPrompt(driven.PromptAnswerSystem, defaultAnswerSystemPrompt)

	logger.Debug("Prompting %s with %d context chunks", c.llm.ModelName(), len(chunks))

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	answer, err := c.llm.Generate(callCtx, prompt, driven.GenerateOptions{System: system})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, domain.ErrProviderUnavailable) {
			return nil, fmt.Errorf("%w: answer timed out: %w", domain.ErrProviderUnavailable, err)
		}
		return nil, err
	}
	if strings.TrimSpace(answer) == "" {
		return nil, fmt.Errorf("%w: %s returned no text", domain.ErrModelError, c.llm.ModelName())
	}

	result := &domain.QueryResult{
		Answer:  answer,
		Sources: SourcesFor(chunks),
		Chunks:  chunks,
	}
	if IsDegraded(answer) {
		result.Degraded = true
		logger.Info("Model could not answer from the retrieved context")
	}
	return result, nil
}

// loadPrompt loads a prompt from the store, falling back to the default.
func (c *AnswerComposer) loadPrompt(name, fallback string) string {
	if c.promptStore == nil {
		return fallback
	}
	prompt, err := c.promptStore.Load(name)
	if err != nil {
		logger.Warn("Failed to load prompt %s: %v", name, err)
		return fallback
	}
	return prompt
}

// SourcesFor builds citations from chunks in order. Pages become 1-indexed
// and repeated file/page pairs are dropped.
func SourcesFor(chunks []domain.Chunk) []domain.Source {
	sources := make([]domain.Source, 0, len(chunks))
	seen := make(map[string]struct{}, len(chunks))
	for _, chunk := range chunks {
		src := domain.Source{File: filepath.Base(chunk.Source)}
		if chunk.Page != nil {
			src.Page = domain.IntPtr(*chunk.Page + 1)
		}
		if _, ok := seen[src.Key()]; ok {
			continue
		}
		seen[src.Key()] = struct{}{}
		sources = append(sources, src)
	}
	return sources
}

// IsDegraded reports whether answer admits it could not be answered.
func IsDegraded(answer string) bool {
	return degradedAnswer.MatchString(answer)
}
