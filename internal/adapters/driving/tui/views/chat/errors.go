package chat

import "errors"

// Error definitions for the chat view.
var (
	// ErrNoEngine indicates that no engine was provided.
	ErrNoEngine = errors.New("engine is required")

	// ErrNoSettings indicates a provider switch without a settings service.
	ErrNoSettings = errors.New("settings are not available in this session")

	// ErrBusy indicates a request while another engine call is running.
	ErrBusy = errors.New("still working on the previous request")
)
