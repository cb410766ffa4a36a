package domain

import (
	"fmt"
	"time"
)

// Source is a citation shown alongside an answer.
type Source struct {
	// File is the base name of the source file.
	File string `json:"file"`

	// Page is the 1-indexed page, or nil when the format has no pages.
	Page *int `json:"page,omitempty"`
}

// Key returns the display identity used to de-duplicate sources.
func (s Source) Key() string {
	if s.Page == nil {
		return s.File
	}
	return fmt.Sprintf("%s (page %d)", s.File, *s.Page)
}

// String returns the display form of the source.
func (s Source) String() string {
	return s.Key()
}

// QueryResult is the outcome of answering a question.
type QueryResult struct {
	// Answer is the model output, verbatim.
	Answer string

	// Sources lists the de-duplicated citations in retrieval order.
	Sources []Source

	// Chunks are the retrieved passages the answer was grounded in.
	Chunks []Chunk

	// Elapsed is the wall time spent answering.
	Elapsed time.Duration

	// Degraded is set when the model reported it could not answer
	// from the retrieved context.
	Degraded bool
}
