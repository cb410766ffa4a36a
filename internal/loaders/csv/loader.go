// Package csv loads comma-separated files one row at a time.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// Loader emits one indivisible segment per data row.
// Each row is rendered as "header: value" lines so a chunk carries its
// column names. Rows are not pages, so segments carry no page.
type Loader struct{}

// New creates a new CSV loader.
func New() *Loader {
	return &Loader{}
}

// Format returns the document format.
func (l *Loader) Format() domain.Format {
	return domain.FormatCSV
}

// Extensions returns the handled file extensions.
func (l *Loader) Extensions() []string {
	return []string{".csv"}
}

// Load reads the file and renders each data row.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var segments []domain.Segment
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}

		text := RenderRow(header, record)
		if text == "" {
			continue
		}
		segments = append(segments, domain.Segment{Text: text, Indivisible: true})
	}

	return segments, nil
}

// RenderRow formats a record against its header as "header: value" lines.
// Empty cells are skipped. Cells beyond the header use their column number.
func RenderRow(header, record []string) string {
	var b strings.Builder
	for i, value := range record {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("column %d", i+1)
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
	}
	return b.String()
}
