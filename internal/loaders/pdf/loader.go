// Package pdf loads PDF files one page at a time.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
	"github.com/custodia-labs/brahma/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// Loader emits one segment per page with extractable text.
// Page is the 0-indexed page number.
type Loader struct{}

// New creates a new PDF loader.
func New() *Loader {
	return &Loader{}
}

// Format returns the document format.
func (l *Loader) Format() domain.Format {
	return domain.FormatPDF
}

// Extensions returns the handled file extensions.
func (l *Loader) Extensions() []string {
	return []string{".pdf"}
}

// Load extracts the plain text of every page.
// The parser panics on some malformed files; those panics become errors.
func (l *Loader) Load(ctx context.Context, path string) (segments []domain.Segment, err error) {
	defer func() {
		if r := recover(); r != nil {
			segments = nil
			err = fmt.Errorf("%w: malformed PDF: %v", domain.ErrInvalidInput, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Debug("pdf: skipping page %d of %s: %v", i, path, err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		segments = append(segments, domain.Segment{
			Text: text,
			Page: domain.IntPtr(i - 1),
		})
	}

	return segments, nil
}
