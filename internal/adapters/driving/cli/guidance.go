package cli

import (
	"errors"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

// Guidance returns a one-line suggestion for resolving err, or "" when
// there is nothing specific to suggest.
func Guidance(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrMissingCredential):
		return "set an API key: brahma settings provider cloud --api-key <key> (or BRAHMA_API_KEY)"
	case errors.Is(err, domain.ErrProviderUnavailable):
		return "start your local model backend (ollama serve) or check your network connection"
	case errors.Is(err, domain.ErrIndexNotReady):
		return "build the index first: brahma index"
	case errors.Is(err, domain.ErrIndexingInProgress):
		return "wait for the running reindex to finish and try again"
	case errors.Is(err, domain.ErrModelError):
		return "check the model name with: brahma settings show"
	case errors.Is(err, domain.ErrIndexingFailed):
		return "the previous index was kept; run with --verbose for details"
	case errors.Is(err, domain.ErrConfiguration):
		return "review your settings: brahma settings show"
	case errors.Is(err, domain.ErrInvalidInput):
		return "run with --help for usage"
	case errors.Is(err, errNotConfigured):
		return "this build of brahma is missing its services"
	}
	return ""
}
