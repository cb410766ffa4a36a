// Package pptx loads PowerPoint presentations one slide at a time.
package pptx

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
	"github.com/custodia-labs/brahma/internal/loaders/ooxml"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

var slidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Loader emits one segment per slide. Page is the 0-indexed slide position.
type Loader struct{}

// New creates a new presentation loader.
func New() *Loader {
	return &Loader{}
}

// Format returns the document format.
func (l *Loader) Format() domain.Format {
	return domain.FormatSlides
}

// Extensions returns the handled file extensions.
func (l *Loader) Extensions() []string {
	return []string{".pptx"}
}

type slide struct {
	number int
	name   string
}

// Load extracts slide text in slide order. Slides without text are skipped
// but still count towards the page number of later slides.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.Segment, error) {
	rc, err := ooxml.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var slides []slide
	for _, f := range rc.File {
		m := slidePart.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slide{number: n, name: f.Name})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })

	var segments []domain.Segment
	for i, s := range slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, _, err := ooxml.ReadPart(&rc.Reader, s.name)
		if err != nil {
			return nil, err
		}
		paragraphs, err := ooxml.Paragraphs(data)
		if err != nil {
			return nil, err
		}

		lines := make([]string, 0, len(paragraphs))
		for _, p := range paragraphs {
			lines = append(lines, p.Text)
		}
		text := strings.Join(lines, "\n")
		if text == "" {
			continue
		}
		segments = append(segments, domain.Segment{Text: text, Page: domain.IntPtr(i)})
	}

	return segments, nil
}
