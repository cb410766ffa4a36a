// Package ooxml reads the zip-packaged XML parts shared by Office Open XML
// formats such as DOCX and PPTX.
package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

// maxPartSize bounds how much of a single package part is read.
const maxPartSize = 64 << 20

// Paragraph is a run of text with its paragraph style, if any.
type Paragraph struct {
	Style string
	Text  string
}

// Open opens a package. Files that are not zip archives, such as legacy
// binary Word documents, report domain.ErrUnsupportedType.
func Open(path string) (*zip.ReadCloser, error) {
	rc, err := zip.OpenReader(path)
	if errors.Is(err, zip.ErrFormat) {
		return nil, fmt.Errorf("%w: not an Office Open XML package", domain.ErrUnsupportedType)
	}
	if err != nil {
		return nil, err
	}
	return rc, nil
}

// ReadPart returns the contents of a named part.
// The boolean is false when the part is absent.
func ReadPart(r *zip.Reader, name string) ([]byte, bool, error) {
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, true, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(io.LimitReader(rc, maxPartSize))
		if err != nil {
			return nil, true, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		return data, true, nil
	}
	return nil, false, nil
}

// Paragraphs extracts the paragraphs of a WordprocessingML or DrawingML part.
// Both dialects use the local names p, t and pStyle, so namespaces are ignored.
// Empty paragraphs are dropped.
func Paragraphs(data []byte) ([]Paragraph, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		paragraphs []Paragraph
		current    strings.Builder
		style      string
		depth      int
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					current.Reset()
					style = ""
				}
				depth++
			case "t":
				inText = depth > 0
			case "pStyle":
				for _, a := range t.Attr {
					if a.Name.Local == "val" {
						style = a.Value
					}
				}
			case "tab":
				if depth > 0 {
					current.WriteString("\t")
				}
			case "br", "cr":
				if depth > 0 {
					current.WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if depth == 0 {
					continue
				}
				depth--
				if depth == 0 {
					if text := strings.TrimSpace(current.String()); text != "" {
						paragraphs = append(paragraphs, Paragraph{Style: style, Text: text})
					}
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
