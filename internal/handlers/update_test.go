package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap/zaptest"

	"local-library/internal/handlers"
	"local-library/internal/middleware"
	"local-library/internal/models"
	"local-library/internal/store"
)

// updateCase describes one kind's update flow against a record it stores.
type updateCase struct {
	name    string
	kind    string
	page    string
	setup   func(t *testing.T, app *testApp) (id primitive.ObjectID, valid, invalid url.Values)
	field   func(t *testing.T, app *testApp, id primitive.ObjectID) string
	initial string
	updated string
}

func TestUpdate(t *testing.T) {
	tests := []updateCase{
		{
			name: "author",
			kind: "author",
			page: "author_form",
			setup: func(t *testing.T, app *testApp) (primitive.ObjectID, url.Values, url.Values) {
				a := insert(t, app.catalog.Authors, models.Author{FirstName: "Isaac", FamilyName: "Asimov"})
				return a.ID,
					url.Values{"first_name": {"Isaac"}, "family_name": {"Azimov"}, "date_of_birth": {"1920-01-02"}},
					url.Values{"family_name": {"Azimov"}}
			},
			field: func(t *testing.T, app *testApp, id primitive.ObjectID) string {
				a, err := app.catalog.Authors.FindByID(context.Background(), id)
				require.NoError(t, err)
				return a.FamilyName
			},
			initial: "Asimov",
			updated: "Azimov",
		},
		{
			name: "genre",
			kind: "genre",
			page: "genre_form",
			setup: func(t *testing.T, app *testApp) (primitive.ObjectID, url.Values, url.Values) {
				g := insert(t, app.catalog.Genres, models.Genre{Name: "Poetry"})
				return g.ID, url.Values{"name": {"Verse"}}, url.Values{"name": {"ab"}}
			},
			field: func(t *testing.T, app *testApp, id primitive.ObjectID) string {
				g, err := app.catalog.Genres.FindByID(context.Background(), id)
				require.NoError(t, err)
				return g.Name
			},
			initial: "Poetry",
			updated: "Verse",
		},
		{
			name: "book",
			kind: "book",
			page: "book_form",
			setup: func(t *testing.T, app *testApp) (primitive.ObjectID, url.Values, url.Values) {
				a := insert(t, app.catalog.Authors, models.Author{FirstName: "Isaac", FamilyName: "Asimov"})
				g := insert(t, app.catalog.Genres, models.Genre{Name: "Science Fiction"})
				b := insert(t, app.catalog.Books, models.Book{Title: "Foundation", AuthorID: a.ID, Summary: "Psychohistory.", ISBN: "1"})
				valid := url.Values{
					"title":   {"Foundation and Empire"},
					"author":  {a.ID.Hex()},
					"summary": {"The Mule."},
					"isbn":    {"2"},
					"genre":   {g.ID.Hex()},
				}
				invalid := url.Values{"author": {a.ID.Hex()}, "summary": {"The Mule."}, "isbn": {"2"}}
				return b.ID, valid, invalid
			},
			field: func(t *testing.T, app *testApp, id primitive.ObjectID) string {
				b, err := app.catalog.Books.FindByID(context.Background(), id)
				require.NoError(t, err)
				return b.Title
			},
			initial: "Foundation",
			updated: "Foundation and Empire",
		},
		{
			name: "book instance",
			kind: "bookinstance",
			page: "bookinstance_form",
			setup: func(t *testing.T, app *testApp) (primitive.ObjectID, url.Values, url.Values) {
				a := insert(t, app.catalog.Authors, models.Author{FirstName: "Isaac", FamilyName: "Asimov"})
				b := insert(t, app.catalog.Books, models.Book{Title: "Foundation", AuthorID: a.ID})
				bi := insert(t, app.catalog.Instances, models.NewBookInstance(b.ID, "Gnome Press, 1951", time.Now()))
				valid := url.Values{
					"book":     {b.ID.Hex()},
					"imprint":  {"Gnome Press, 1952"},
					"status":   {string(models.StatusAvailable)},
					"due_back": {"2026-11-01"},
				}
				invalid := url.Values{"book": {b.ID.Hex()}, "status": {string(models.StatusAvailable)}}
				return bi.ID, valid, invalid
			},
			field: func(t *testing.T, app *testApp, id primitive.ObjectID) string {
				bi, err := app.catalog.Instances.FindByID(context.Background(), id)
				require.NoError(t, err)
				return bi.Imprint
			},
			initial: "Gnome Press, 1951",
			updated: "Gnome Press, 1952",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			id, valid, invalid := tt.setup(t, app)
			path := "/catalog/" + tt.kind + "/" + id.Hex() + "/update"

			w := app.post(path, invalid)
			require.Equal(t, http.StatusOK, w.Code)
			app.view(t, tt.page)
			assert.Equal(t, tt.initial, tt.field(t, app, id))

			w = app.post("/catalog/"+tt.kind+"/"+primitive.NewObjectID().Hex()+"/update", invalid)
			assert.Equal(t, http.StatusNotFound, w.Code)

			w = app.post(path, valid)
			require.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/catalog/"+tt.kind+"/"+id.Hex(), w.Header().Get("Location"))
			assert.Equal(t, tt.updated, tt.field(t, app, id))
			assert.EqualValues(t, 1, count(t, app.catalog.AuditLogs, store.Filter{"entity": tt.kind, "action": "update"}))
		})
	}
}

func TestFormsKeepUnparsedDates(t *testing.T) {
	app := newTestApp(t)

	w := app.post("/catalog/author/create", url.Values{
		"first_name":    {"Jane"},
		"family_name":   {"Austen"},
		"date_of_birth": {"not a date"},
		"date_of_death": {"1817-07-18"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	author := app.view(t, "author_form").(handlers.AuthorFormView)
	assert.True(t, author.Errors.Has("date_of_birth"))
	assert.Equal(t, "not a date", author.DateOfBirth)
	assert.Equal(t, "1817-07-18", author.DateOfDeath)

	a := insert(t, app.catalog.Authors, models.Author{FirstName: "Mary", FamilyName: "Shelley"})
	book := insert(t, app.catalog.Books, models.Book{Title: "Frankenstein", AuthorID: a.ID})

	w = app.post("/catalog/bookinstance/create", url.Values{
		"book":     {book.ID.Hex()},
		"imprint":  {"Lackington, 1818"},
		"due_back": {"not a date"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	instance := app.view(t, "bookinstance_form").(handlers.BookInstanceFormView)
	assert.True(t, instance.Errors.Has("due_back"))
	assert.Equal(t, "not a date", instance.DueBack)
}

func TestGenreDeleteWithoutBooks(t *testing.T) {
	app := newTestApp(t)
	genre := insert(t, app.catalog.Genres, models.Genre{Name: "French Poetry"})

	w := app.post(genre.URL()+"/delete", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/catalog/genres", w.Header().Get("Location"))

	w = app.get(genre.URL())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnmatchedRequestsAreTaggedAndCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	app := newTestApp(t)
	router := handlers.NewRouter(&handlers.Base{
		Catalog: app.catalog,
		Views:   app.views,
		Logger:  zaptest.NewLogger(t),
	}, middleware.NewMetrics(reg), reg)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/catalog/nowhere", nil),
		httptest.NewRequest(http.MethodDelete, "/catalog/genres", nil),
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Contains(t, []int{http.StatusNotFound, http.StatusMethodNotAllowed}, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		view := app.view(t, "error").(handlers.ErrorView)
		assert.NotEmpty(t, view.RequestID)
	}

	n, err := testutil.GatherAndCount(reg, "library_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
