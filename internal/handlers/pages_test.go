package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap/zaptest"

	"local-library/internal/handlers"
	"local-library/internal/models"
	"local-library/internal/store"
	"local-library/internal/views"
)

// TestPagesRender drives every page through the embedded templates.
func TestPagesRender(t *testing.T) {
	templates, err := views.New()
	require.NoError(t, err)

	catalog := store.NewMemoryCatalog()
	router := handlers.NewRouter(&handlers.Base{
		Catalog: catalog,
		Views:   templates,
		Logger:  zaptest.NewLogger(t),
	}, nil, nil)

	ctx := context.Background()
	born := time.Date(1892, time.January, 3, 0, 0, 0, 0, time.UTC)
	author, err := catalog.Authors.Insert(ctx, models.Author{FirstName: "John", FamilyName: "Tolkien", DateOfBirth: &born})
	require.NoError(t, err)
	genre, err := catalog.Genres.Insert(ctx, models.Genre{Name: "Fantasy"})
	require.NoError(t, err)
	book, err := catalog.Books.Insert(ctx, models.Book{
		Title:    "The Hobbit",
		AuthorID: author.ID,
		Summary:  "There and back again.",
		ISBN:     "9780261102217",
		GenreIDs: []primitive.ObjectID{genre.ID},
	})
	require.NoError(t, err)
	instance := models.NewBookInstance(book.ID, "Allen & Unwin, 1937", time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC))
	instance.Status = models.StatusLoaned
	instance, err = catalog.Instances.Insert(ctx, instance)
	require.NoError(t, err)

	pages := []struct {
		path string
		want []string
	}{
		{"/catalog", []string{"Local Library Home", "<strong>Books:</strong> 1"}},
		{"/catalog/authors", []string{"Tolkien, John", "January 3rd, 1892"}},
		{author.URL(), []string{"The Hobbit", "There and back again."}},
		{author.URL() + "/delete", []string{"Delete the following books"}},
		{author.URL() + "/update", []string{`value="1892-01-03"`}},
		{"/catalog/author/create", []string{"Create Author"}},
		{"/catalog/books", []string{"The Hobbit", "(Tolkien, John)"}},
		{book.URL(), []string{"9780261102217", "Fantasy", "Loaned", "October 18th, 2026"}},
		{book.URL() + "/delete", []string{"Delete the following copies"}},
		{book.URL() + "/update", []string{"checked", "selected"}},
		{"/catalog/book/create", []string{"Create Book", "Fantasy"}},
		{"/catalog/bookinstances", []string{"The Hobbit : Allen &amp; Unwin, 1937", "text-warning"}},
		{instance.URL(), []string{"Copy: The Hobbit", "Due back"}},
		{instance.URL() + "/delete", []string{"Do you really want to delete this book instance?"}},
		{instance.URL() + "/update", []string{`value="2026-10-18"`, "Maintenance"}},
		{"/catalog/bookinstance/create", []string{"Create Book Instance"}},
		{"/catalog/genres", []string{"Fantasy"}},
		{genre.URL(), []string{"Genre: Fantasy", "The Hobbit"}},
		{genre.URL() + "/delete", []string{"Delete the following books"}},
		{genre.URL() + "/update", []string{`value="Fantasy"`}},
		{"/catalog/genre/create", []string{"Create Genre"}},
	}

	for _, page := range pages {
		t.Run(page.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, page.path, nil))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
			for _, want := range page.want {
				assert.Contains(t, w.Body.String(), want)
			}
		})
	}

	t.Run("unparsed date is shown again", func(t *testing.T) {
		form := url.Values{"first_name": {"Jane"}, "family_name": {"Austen"}, "date_of_birth": {"not a date"}}
		req := httptest.NewRequest(http.MethodPost, "/catalog/author/create", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `value="not a date"`)
		assert.Contains(t, w.Body.String(), "Invalid date of birth.")
	})

	t.Run("error page", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog/nowhere", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "does not exist")
	})

	t.Run("static", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
