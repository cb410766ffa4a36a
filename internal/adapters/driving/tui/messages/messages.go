// Package messages defines Bubbletea message types for the chat TUI.
// Messages carry the results of engine calls back into the Elm loop.
package messages

import (
	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driving"
)

// AnswerReceived carries the outcome of a question.
type AnswerReceived struct {
	Question string
	Result   *domain.QueryResult
	Err      error
}

// ReindexCompleted carries the outcome of a reindex run.
type ReindexCompleted struct {
	Report *domain.IndexReport
	Err    error
}

// StatusLoaded carries the index status shown in the status bar.
type StatusLoaded struct {
	Status *domain.IndexStatus
	Err    error
}

// ProviderChanged carries the engine built after a provider switch.
// On error the previous engine stays in use.
type ProviderChanged struct {
	Engine driving.Engine
	Err    error
}

// ErrorOccurred signals that an error happened outside an engine call.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
