package domain

import (
	"path/filepath"
	"strings"
)

// Format identifies the kind of file a document was loaded from.
type Format string

// Supported document formats.
const (
	FormatPDF         Format = "pdf"
	FormatText        Format = "text"
	FormatWord        Format = "word"
	FormatSlides      Format = "slides"
	FormatCSV         Format = "csv"
	FormatSpreadsheet Format = "spreadsheet"
	FormatHTML        Format = "html"
)

// extensionFormats maps lower-case file extensions to formats.
var extensionFormats = map[string]Format{
	".pdf":  FormatPDF,
	".txt":  FormatText,
	".md":   FormatText,
	".docx": FormatWord,
	".doc":  FormatWord,
	".pptx": FormatSlides,
	".csv":  FormatCSV,
	".xlsx": FormatSpreadsheet,
	".html": FormatHTML,
	".htm":  FormatHTML,
}

// FormatForExtension returns the format for a file extension such as ".pdf".
// The lookup is case-insensitive.
func FormatForExtension(ext string) (Format, bool) {
	f, ok := extensionFormats[strings.ToLower(ext)]
	return f, ok
}

// FormatForPath returns the format for a file path based on its extension.
func FormatForPath(path string) (Format, bool) {
	return FormatForExtension(filepath.Ext(path))
}

// String returns the string representation.
func (f Format) String() string {
	return string(f)
}

// Segment is a unit of text extracted by a loader.
type Segment struct {
	// Text is the extracted content.
	Text string

	// Page is the loader's native 0-indexed page or slide ordinal.
	// Nil when the format has no notion of pages.
	Page *int

	// Indivisible marks segments that must never be split by the chunker,
	// such as a single CSV row.
	Indivisible bool
}

// Document is a loaded file. It is produced by a loader, consumed by the
// chunker and never persisted.
type Document struct {
	// Path is the file the document was read from.
	Path string

	// Format is the format the file was read as.
	Format Format

	// Segments holds the extracted text in document order.
	Segments []Segment
}

// Chunk represents a retrievable unit of text.
// Chunks never span documents and carry their origin for citation.
type Chunk struct {
	// ID is derived from source, page, position and content.
	// Identical input always produces the identical ID.
	ID string

	// Source is the path of the originating file.
	Source string

	// Page is the originating segment's page, copied verbatim (0-indexed).
	Page *int

	// Position is the ordinal of the chunk within its document.
	Position int

	// Content is the text content of this chunk.
	Content string

	// ContentHash is the hex SHA-256 of Content.
	ContentHash string

	// Embedding is the vector representation for semantic search.
	Embedding []float32
}

// IndexEntry is a chunk as persisted in the vector index.
type IndexEntry struct {
	Chunk

	// Model is the embedding model that produced the vector.
	Model string

	// Seq is the insertion order, used to break distance ties.
	Seq int64
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
