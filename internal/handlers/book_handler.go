package handlers

import (
	"context"
	"net/http"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/aggregate"
	"local-library/internal/constants"
	"local-library/internal/models"
	"local-library/internal/store"
	"local-library/internal/validation"
)

type BookHandler struct {
	*Base
}

var bookRules = []validation.Rule{
	{Field: "title", Label: "Title", Required: true},
	{Field: "author", Label: "Author", Required: true},
	{Field: "summary", Label: "Summary", Required: true},
	{Field: "isbn", Label: "ISBN", Required: true},
	{Field: "genre", Label: "Genre", Multi: true},
}

// bookFromForm builds the submitted book. Reference ids that are not
// well-formed are reported on the form.
func bookFromForm(form *validation.Form) models.Book {
	book := models.Book{
		Title:    form.Get("title"),
		Summary:  form.Get("summary"),
		ISBN:     form.Get("isbn"),
		GenreIDs: []primitive.ObjectID{},
	}

	if hex := form.Get("author"); hex != "" {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			form.AddError("author", "Invalid author.")
		}
		book.AuthorID = id
	}

	for _, hex := range form.List("genre") {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			form.AddError("genre", "Invalid genre.")
			continue
		}
		book.GenreIDs = append(book.GenreIDs, id)
	}
	book.GenreIDs = lo.Uniq(book.GenreIDs)
	return book
}

// checkReferences reports references to authors or genres that are not
// among the stored options.
func checkReferences(form *validation.Form, book models.Book, authors []models.Author, genres []models.Genre) {
	if !book.AuthorID.IsZero() && !lo.ContainsBy(authors, func(a models.Author) bool { return a.ID == book.AuthorID }) {
		form.AddError("author", "Invalid author.")
	}
	known := lo.Map(genres, func(g models.Genre, _ int) primitive.ObjectID { return g.ID })
	if len(lo.Without(book.GenreIDs, known...)) > 0 {
		form.AddError("genre", "Invalid genre.")
	}
}

// genreOptions marks the genres already on book.
func genreOptions(genres []models.Genre, book models.Book) []GenreOption {
	return lo.Map(genres, func(g models.Genre, _ int) GenreOption {
		return GenreOption{Genre: g, Checked: book.HasGenre(g.ID)}
	})
}

// loadBook fetches a book with its author and genres resolved.
func (h *BookHandler) loadBook(ctx context.Context, id primitive.ObjectID) (models.Book, error) {
	book, err := h.Catalog.Books.FindByID(ctx, id)
	if err != nil {
		return book, err
	}

	books := []models.Book{book}
	if err := h.Catalog.ResolveBookAuthors(ctx, books); err != nil {
		return book, err
	}
	if err := h.Catalog.ResolveBookGenres(ctx, books); err != nil {
		return book, err
	}
	return books[0], nil
}

func (h *BookHandler) bookWithInstances(ctx context.Context, id primitive.ObjectID) (models.Book, []models.BookInstance, error) {
	results, err := aggregate.Run(ctx, aggregate.Tasks{
		"book": aggregate.Query(func(ctx context.Context) (models.Book, error) {
			return h.loadBook(ctx, id)
		}),
		"instances": aggregate.Query(func(ctx context.Context) ([]models.BookInstance, error) {
			return h.Catalog.Instances.Find(ctx, store.Filter{"book": id})
		}),
	})
	if err != nil {
		return models.Book{}, nil, err
	}
	return aggregate.Get[models.Book](results, "book"), aggregate.Get[[]models.BookInstance](results, "instances"), nil
}

// formOptions loads every author and genre the book form offers.
func (h *BookHandler) formOptions(ctx context.Context) ([]models.Author, []models.Genre, error) {
	results, err := aggregate.Run(ctx, aggregate.Tasks{
		"authors": aggregate.Query(func(ctx context.Context) ([]models.Author, error) {
			return h.Catalog.Authors.Find(ctx, nil, store.Asc("family_name"))
		}),
		"genres": aggregate.Query(func(ctx context.Context) ([]models.Genre, error) {
			return h.Catalog.Genres.Find(ctx, nil, store.Asc("name"))
		}),
	})
	if err != nil {
		return nil, nil, err
	}
	return aggregate.Get[[]models.Author](results, "authors"), aggregate.Get[[]models.Genre](results, "genres"), nil
}

// GET /catalog/books
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	books, err := h.Catalog.Books.Find(ctx, nil, store.Select("title", "author"), store.Asc("title"))
	if err != nil {
		h.ServerError(w, r, err)
		return
	}
	if err := h.Catalog.ResolveBookAuthors(ctx, books); err != nil {
		h.ServerError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "book_list", BookListView{Title: "Book List", Books: books})
}

// GET /catalog/book/{id}
func (h *BookHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	book, instances, err := h.bookWithInstances(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "book_detail", BookDetailView{
		Title:     book.Title,
		Book:      book,
		Instances: instances,
	})
}

// GET /catalog/book/create
func (h *BookHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	authors, genres, err := h.formOptions(ctx)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "book_form", BookFormView{
		Title:   "Create Book",
		Authors: authors,
		Genres:  genreOptions(genres, models.Book{}),
	})
}

// POST /catalog/book/create
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	form := validation.Check(r.PostForm, bookRules...)
	book := bookFromForm(form)

	authors, genres, err := h.formOptions(ctx)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}
	checkReferences(form, book, authors, genres)

	if !form.Valid() {
		h.render(w, r, http.StatusOK, "book_form", BookFormView{
			Title:   "Create Book",
			Book:    book,
			Authors: authors,
			Genres:  genreOptions(genres, book),
			Errors:  form.Errors,
		})
		return
	}

	created, err := h.Catalog.Books.Insert(ctx, book)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}
	h.audit(ctx, models.BookEntity, constants.Create, created)

	redirect(w, r, created.URL())
}

// GET /catalog/book/{id}/delete
func (h *BookHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	book, instances, err := h.bookWithInstances(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "book_delete", BookDeleteView{
		Title:     "Delete Book",
		Book:      book,
		Instances: instances,
	})
}

// POST /catalog/book/{id}/delete
//
// Copies of the book block the delete, the same way books block deleting
// their author or genre.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	book, instances, err := h.bookWithInstances(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if len(instances) > 0 {
		h.render(w, r, http.StatusOK, "book_delete", BookDeleteView{
			Title:     "Delete Book",
			Book:      book,
			Instances: instances,
		})
		return
	}

	if err := h.Catalog.Books.DeleteByID(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(ctx, models.BookEntity, constants.Delete, book)

	redirect(w, r, "/catalog/books")
}

// GET /catalog/book/{id}/update
func (h *BookHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	results, err := aggregate.Run(ctx, aggregate.Tasks{
		"book": aggregate.Query(func(ctx context.Context) (models.Book, error) {
			return h.Catalog.Books.FindByID(ctx, id)
		}),
		"authors": aggregate.Query(func(ctx context.Context) ([]models.Author, error) {
			return h.Catalog.Authors.Find(ctx, nil, store.Asc("family_name"))
		}),
		"genres": aggregate.Query(func(ctx context.Context) ([]models.Genre, error) {
			return h.Catalog.Genres.Find(ctx, nil, store.Asc("name"))
		}),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	book := aggregate.Get[models.Book](results, "book")
	h.render(w, r, http.StatusOK, "book_form", BookFormView{
		Title:   "Update Book",
		Book:    book,
		Authors: aggregate.Get[[]models.Author](results, "authors"),
		Genres:  genreOptions(aggregate.Get[[]models.Genre](results, "genres"), book),
	})
}

// POST /catalog/book/{id}/update
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	if !h.parseForm(w, r) {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	form := validation.Check(r.PostForm, bookRules...)
	book := bookFromForm(form)
	book.ID = id

	authors, genres, err := h.formOptions(ctx)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}
	checkReferences(form, book, authors, genres)

	if !form.Valid() {
		if _, err := h.Catalog.Books.FindByID(ctx, id); err != nil {
			h.fail(w, r, err)
			return
		}
		h.render(w, r, http.StatusOK, "book_form", BookFormView{
			Title:   "Update Book",
			Book:    book,
			Authors: authors,
			Genres:  genreOptions(genres, book),
			Errors:  form.Errors,
		})
		return
	}

	updated, err := h.Catalog.Books.UpdateByID(ctx, id, book)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(ctx, models.BookEntity, constants.Update, updated)

	redirect(w, r, updated.URL())
}
