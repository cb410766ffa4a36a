package ai

import (
	"context"
	"sync"

	"github.com/custodia-labs/brahma/internal/core/ports/driven"
)

// countingEmbedder records every text it is asked to embed.
type countingEmbedder struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (e *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, append([]string(nil), texts...))
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), float32(len(e.calls))}
	}
	return out, nil
}

func (e *countingEmbedder) Dimensions() int              { return 2 }
func (e *countingEmbedder) ModelName() string            { return "counting" }
func (e *countingEmbedder) Ping(_ context.Context) error { return nil }
func (e *countingEmbedder) Close() error                 { return nil }

// echoLLM returns the prompt.
type echoLLM struct {
	calls int
}

func (l *echoLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	l.calls++
	return prompt, nil
}

func (l *echoLLM) ModelName() string            { return "echo" }
func (l *echoLLM) Ping(_ context.Context) error { return nil }
func (l *echoLLM) Close() error                 { return nil }
