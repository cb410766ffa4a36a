package html

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

func writeHTML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Metadata(t *testing.T) {
	l := New()
	assert.Equal(t, domain.FormatHTML, l.Format())
	assert.ElementsMatch(t, []string{".html", ".htm"}, l.Extensions())
}

func TestLoader_Load(t *testing.T) {
	page := `<html><head><title> Team   Facts </title><style>p{color:red}</style></head>
<body>
<nav>Home | About</nav>
<main>
  <h1>Favourites</h1>
  <p>Brahma's favorite
     color is blue.</p>
  <ul><li>One</li><li><p>Nested</p></li></ul>
  <script>var secret = "hidden";</script>
</main>
</body></html>`

	segments, err := New().Load(context.Background(), writeHTML(t, page))
	require.NoError(t, err)
	require.Len(t, segments, 1)

	assert.Equal(t, "Team Facts\nFavourites\nBrahma's favorite color is blue.\nOne\nNested", segments[0].Text)
	assert.NotContains(t, segments[0].Text, "hidden")
	assert.NotContains(t, segments[0].Text, "Home")
	assert.Nil(t, segments[0].Page)
}

func TestLoader_Load_BareBody(t *testing.T) {
	segments, err := New().Load(context.Background(), writeHTML(t, "<body>just   text</body>"))
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "just text", segments[0].Text)
}
