package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFormatForExtension tests extension lookup
func TestFormatForExtension(t *testing.T) {
	tests := []struct {
		ext      string
		expected Format
		ok       bool
	}{
		{".pdf", FormatPDF, true},
		{".PDF", FormatPDF, true},
		{".txt", FormatText, true},
		{".md", FormatText, true},
		{".docx", FormatWord, true},
		{".doc", FormatWord, true},
		{".pptx", FormatSlides, true},
		{".csv", FormatCSV, true},
		{".xlsx", FormatSpreadsheet, true},
		{".htm", FormatHTML, true},
		{".png", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			f, ok := FormatForExtension(tt.ext)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, f)
		})
	}
}

// TestFormatForPath tests path-based lookup
func TestFormatForPath(t *testing.T) {
	f, ok := FormatForPath("/docs/Report.Final.PPTX")
	require.True(t, ok)
	assert.Equal(t, FormatSlides, f)

	_, ok = FormatForPath("/docs/README")
	assert.False(t, ok)
}

// TestChunk_EmbeddedInIndexEntry tests that entries expose chunk fields
func TestChunk_EmbeddedInIndexEntry(t *testing.T) {
	entry := IndexEntry{
		Chunk: Chunk{ID: "c1", Source: "a.pdf", Page: IntPtr(2), Content: "hello"},
		Model: "nomic-embed-text",
		Seq:   7,
	}

	assert.Equal(t, "c1", entry.ID)
	require.NotNil(t, entry.Page)
	assert.Equal(t, 2, *entry.Page)
	assert.Equal(t, int64(7), entry.Seq)
}

// TestSource_Key tests citation display identity
func TestSource_Key(t *testing.T) {
	assert.Equal(t, "notes.txt", Source{File: "notes.txt"}.Key())
	assert.Equal(t, "report.pdf (page 3)", Source{File: "report.pdf", Page: IntPtr(3)}.Key())
	assert.NotEqual(t,
		Source{File: "report.pdf", Page: IntPtr(1)}.Key(),
		Source{File: "report.pdf", Page: IntPtr(2)}.Key())
}
