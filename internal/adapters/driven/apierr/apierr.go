// Package apierr translates HTTP backend failures into domain error kinds.
// Embedding and LLM adapters share it so callers can match failures with
// errors.Is regardless of which backend produced them.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

const (
	// maxBody bounds how much of an error body is echoed into messages.
	maxBody = 512

	// statusOverloaded is returned by Anthropic when it sheds load.
	statusOverloaded = 529
)

// Transport wraps a failure to reach a backend.
// Transport errors, timeouts and deadlines are all ErrProviderUnavailable.
// A caller-cancelled context is returned unchanged.
func Transport(provider string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrProviderUnavailable, provider, err)
}

// Status converts a non-2xx response into an error.
// Gateway failures mean the model is not serving and map to
// ErrProviderUnavailable. Everything else is ErrModelError.
func Status(provider string, code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxBody {
		msg = msg[:maxBody] + "..."
	}
	kind := domain.ErrModelError
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, statusOverloaded:
		kind = domain.ErrProviderUnavailable
	}
	if msg == "" {
		return fmt.Errorf("%w: %s returned status %d", kind, provider, code)
	}
	return fmt.Errorf("%w: %s returned status %d: %s", kind, provider, code, msg)
}

// Model wraps a response that arrived but cannot be used.
func Model(provider string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", domain.ErrModelError, provider, fmt.Sprintf(format, args...))
}

// IsSuccess reports whether code is 2xx.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}
