package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

// buildPDF assembles a minimal PDF with one page per text and a valid xref table.
func buildPDF(pages ...string) []byte {
	n := len(pages)
	fontID := 3 + 2*n

	objects := make([]string, 0, 2+2*n+1)
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := ""
	for i := 0; i < n; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, n))

	for i := 0; i < n; i++ {
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 %d 0 R >> >> >>",
			3+n+i, fontID))
	}
	for _, text := range pages {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func writePDF(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoader_Metadata(t *testing.T) {
	l := New()
	assert.Equal(t, domain.FormatPDF, l.Format())
	assert.Equal(t, []string{".pdf"}, l.Extensions())
}

func TestLoader_Load_Pages(t *testing.T) {
	path := writePDF(t, buildPDF("Hello first page", "Second page text"))

	segments, err := New().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Contains(t, segments[0].Text, "Hello first page")
	require.NotNil(t, segments[0].Page)
	assert.Equal(t, 0, *segments[0].Page)

	assert.Contains(t, segments[1].Text, "Second page text")
	assert.Equal(t, 1, *segments[1].Page)
}

func TestLoader_Load_NotPDF(t *testing.T) {
	path := writePDF(t, []byte("this is not a pdf"))

	_, err := New().Load(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoader_Load_Missing(t *testing.T) {
	_, err := New().Load(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
