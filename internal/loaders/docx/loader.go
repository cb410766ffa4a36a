// Package docx loads Word documents section by section.
package docx

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
	"github.com/custodia-labs/brahma/internal/loaders/ooxml"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

const documentPart = "word/document.xml"

// Loader reads word/document.xml and starts a new segment at every heading.
// Word has no stable page boundaries in the file, so Page is always nil.
type Loader struct{}

// New creates a new Word loader.
func New() *Loader {
	return &Loader{}
}

// Format returns the document format.
func (l *Loader) Format() domain.Format {
	return domain.FormatWord
}

// Extensions returns the handled file extensions.
// Legacy .doc files are accepted only when they are actually OOXML packages.
func (l *Loader) Extensions() []string {
	return []string{".docx", ".doc"}
}

// Load extracts the document's sections.
func (l *Loader) Load(_ context.Context, path string) ([]domain.Segment, error) {
	rc, err := ooxml.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, ok, err := ooxml.ReadPart(&rc.Reader, documentPart)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrInvalidInput, documentPart)
	}

	paragraphs, err := ooxml.Paragraphs(data)
	if err != nil {
		return nil, err
	}

	return sections(paragraphs), nil
}

// sections groups paragraphs into one segment per heading.
// Text before the first heading forms its own section.
func sections(paragraphs []ooxml.Paragraph) []domain.Segment {
	var (
		segments []domain.Segment
		current  []string
	)

	flush := func() {
		if len(current) > 0 {
			segments = append(segments, domain.Segment{Text: strings.Join(current, "\n")})
			current = nil
		}
	}

	for _, p := range paragraphs {
		if isHeading(p.Style) {
			flush()
		}
		current = append(current, p.Text)
	}
	flush()

	return segments
}

// isHeading reports whether a paragraph style starts a new section.
func isHeading(style string) bool {
	s := strings.ToLower(style)
	return strings.HasPrefix(s, "heading") || s == "title"
}
