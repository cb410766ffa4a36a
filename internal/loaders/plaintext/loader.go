// Package plaintext loads plain text and Markdown files.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// Loader reads a whole text file as a single segment without a page.
type Loader struct{}

// New creates a new plain text loader.
func New() *Loader {
	return &Loader{}
}

// Format returns the document format.
func (l *Loader) Format() domain.Format {
	return domain.FormatText
}

// Extensions returns the handled file extensions.
func (l *Loader) Extensions() []string {
	return []string{".txt", ".md"}
}

// Load reads the file. Content that is not valid UTF-8 is rejected.
func (l *Loader) Load(_ context.Context, path string) ([]domain.Segment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: not valid UTF-8 text", domain.ErrInvalidInput)
	}

	text := strings.TrimPrefix(string(content), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	return []domain.Segment{{Text: text}}, nil
}
