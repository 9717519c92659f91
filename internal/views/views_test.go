package views_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"local-library/internal/views"
)

func TestNewParsesEveryPage(t *testing.T) {
	templates, err := views.New()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"index", "error",
		"author_list", "author_detail", "author_form", "author_delete",
		"book_list", "book_detail", "book_form", "book_delete",
		"bookinstance_list", "bookinstance_detail", "bookinstance_form", "bookinstance_delete",
		"genre_list", "genre_detail", "genre_form", "genre_delete",
	}, templates.Pages())
}

func TestRenderUnknownPage(t *testing.T) {
	templates, err := views.New()
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.Error(t, templates.Render(&buf, "missing", nil))
}

func TestRenderEscapesContent(t *testing.T) {
	templates, err := views.New()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = templates.Render(&buf, "error", struct {
		Title     string
		Message   string
		RequestID string
	}{Title: "Oops", Message: "<script>alert(1)</script>"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "<title>Oops | Local Library</title>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
	assert.NotContains(t, buf.String(), "<script>")
}
