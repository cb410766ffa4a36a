// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the Brahma config directory.
//
// Adapters:
//   - ConfigStore: TOML-based settings storage
//   - PromptStore: user-editable prompt templates
package file
