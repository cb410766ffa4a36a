// Package xlsx loads Excel workbooks one row at a time.
package xlsx

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
	"github.com/custodia-labs/brahma/internal/loaders/csv"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// Loader emits one indivisible segment per non-empty data row of every sheet.
// The first row of each sheet is its header. Rows are not pages, so
// segments carry no page; the sheet name leads each segment instead.
type Loader struct{}

// New creates a new workbook loader.
func New() *Loader {
	return &Loader{}
}

// Format returns the document format.
func (l *Loader) Format() domain.Format {
	return domain.FormatSpreadsheet
}

// Extensions returns the handled file extensions.
func (l *Loader) Extensions() []string {
	return []string{".xlsx"}
}

// Load reads all sheets in workbook order.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.Segment, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	var segments []domain.Segment
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %s: %w", domain.ErrInvalidInput, sheet, err)
		}
		if len(rows) < 2 {
			continue
		}

		header := rows[0]
		for _, record := range rows[1:] {
			text := csv.RenderRow(header, record)
			if text == "" {
				continue
			}
			segments = append(segments, domain.Segment{
				Text:        "sheet: " + sheet + "\n" + text,
				Indivisible: true,
			})
		}
	}

	return segments, nil
}
