// Package html loads HTML pages as a single block of visible text.
package html

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// blockSelector lists the elements whose text is kept, one line each.
const blockSelector = "h1,h2,h3,h4,h5,h6,p,li,td,th,pre,blockquote"

// Loader extracts the title and block-level text of a page.
type Loader struct{}

// New creates a new HTML loader.
func New() *Loader {
	return &Loader{}
}

// Format returns the document format.
func (l *Loader) Format() domain.Format {
	return domain.FormatHTML
}

// Extensions returns the handled file extensions.
func (l *Loader) Extensions() []string {
	return []string{".html", ".htm"}
}

// Load parses the page and returns its text as one segment.
func (l *Loader) Load(_ context.Context, path string) ([]domain.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	doc.Find("script, style, noscript, template").Remove()

	var parts []string
	if title := collapse(doc.Find("title").First().Text()); title != "" {
		parts = append(parts, title)
	}

	sel := doc.Find("main, article")
	if sel.Length() == 0 {
		sel = doc.Find("body")
	}
	blocks := sel.Find(blockSelector)
	if blocks.Length() == 0 {
		if text := collapse(sel.Text()); text != "" {
			parts = append(parts, text)
		}
	}
	blocks.Each(func(_ int, s *goquery.Selection) {
		// Nested blocks are reported by their innermost element.
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		if text := collapse(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	return []domain.Segment{{Text: strings.Join(parts, "\n")}}, nil
}

// collapse folds runs of whitespace into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
