package pptx

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

func slideXML(lines ...string) string {
	body := ""
	for _, l := range lines {
		body += fmt.Sprintf(`<a:p><a:r><a:t>%s</a:t></a:r></a:p>`, l)
	}
	return `<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" ` +
		`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">` +
		`<p:cSld><p:spTree><p:sp><p:txBody>` + body + `</p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
}

// createTestPPTX writes slides in the given order of part names.
func createTestPPTX(t *testing.T, parts map[string]string, order []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.pptx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for _, name := range order {
		pw, err := w.Create(name)
		require.NoError(t, err)
		_, err = pw.Write([]byte(parts[name]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestLoader_Metadata(t *testing.T) {
	l := New()
	assert.Equal(t, domain.FormatSlides, l.Format())
	assert.Equal(t, []string{".pptx"}, l.Extensions())
}

func TestLoader_Load_SlideOrder(t *testing.T) {
	parts := map[string]string{
		"ppt/slides/slide10.xml":            slideXML("Ten"),
		"ppt/slides/slide2.xml":             slideXML("Two", "More"),
		"ppt/slides/slide1.xml":             slideXML("One"),
		"ppt/slides/_rels/slide1.xml.rels":  "<Relationships/>",
		"ppt/slideLayouts/slideLayout1.xml": slideXML("Layout text"),
	}
	order := []string{
		"ppt/slides/slide10.xml", "ppt/slides/slide2.xml", "ppt/slides/slide1.xml",
		"ppt/slides/_rels/slide1.xml.rels", "ppt/slideLayouts/slideLayout1.xml",
	}

	segments, err := New().Load(context.Background(), createTestPPTX(t, parts, order))
	require.NoError(t, err)
	require.Len(t, segments, 3)

	assert.Equal(t, "One", segments[0].Text)
	assert.Equal(t, "Two\nMore", segments[1].Text)
	assert.Equal(t, "Ten", segments[2].Text)
	for i, s := range segments {
		require.NotNil(t, s.Page)
		assert.Equal(t, i, *s.Page)
	}
}

func TestLoader_Load_EmptySlideKeepsNumbering(t *testing.T) {
	parts := map[string]string{
		"ppt/slides/slide1.xml": slideXML(),
		"ppt/slides/slide2.xml": slideXML("Second"),
	}

	segments, err := New().Load(context.Background(),
		createTestPPTX(t, parts, []string{"ppt/slides/slide1.xml", "ppt/slides/slide2.xml"}))
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, 1, *segments[0].Page)
}

func TestLoader_Load_NotZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pptx")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o600))

	_, err := New().Load(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
