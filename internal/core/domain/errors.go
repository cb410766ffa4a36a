package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors. Adapters translate transport
// and status failures into one of these kinds so callers can use errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file format no loader can read.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrConfiguration indicates the engine configuration is invalid.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrIndexNotReady indicates no persisted vector index exists yet.
	// The workspace must be indexed before questions can be answered.
	ErrIndexNotReady = errors.New("index not ready")

	// ErrIndexingFailed indicates a reindex run aborted.
	// It always wraps the underlying cause.
	ErrIndexingFailed = errors.New("indexing failed")

	// ErrIndexingInProgress indicates another reindex is already running.
	ErrIndexingInProgress = errors.New("indexing in progress")

	// ErrMissingCredential indicates the cloud provider is selected
	// but no API key is configured.
	ErrMissingCredential = errors.New("missing credential")

	// ErrProviderUnavailable indicates a model backend could not be reached
	// or did not answer within the request timeout.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrModelError indicates a model backend was reached but returned
	// an error or an unusable response.
	ErrModelError = errors.New("model error")
)

// LoadError records a single file that could not be read during loading.
// Load errors are collected and reported, they never abort a reindex.
type LoadError struct {
	// Path is the file that failed.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}
