package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/aggregate"
	"local-library/internal/constants"
	"local-library/internal/models"
	"local-library/internal/store"
	"local-library/internal/validation"
)

type GenreHandler struct {
	*Base
}

var genreRules = []validation.Rule{
	{Field: "name", Label: "Genre name", Required: true, Min: models.GenreNameMin, Max: models.GenreNameMax},
}

func (h *GenreHandler) genreWithBooks(ctx context.Context, id primitive.ObjectID) (models.Genre, []models.Book, error) {
	results, err := aggregate.Run(ctx, aggregate.Tasks{
		"genre": aggregate.Query(func(ctx context.Context) (models.Genre, error) {
			return h.Catalog.Genres.FindByID(ctx, id)
		}),
		"books": aggregate.Query(func(ctx context.Context) ([]models.Book, error) {
			return h.Catalog.Books.Find(ctx, store.Filter{"genre": id}, store.Select("title", "summary"))
		}),
	})
	if err != nil {
		return models.Genre{}, nil, err
	}
	return aggregate.Get[models.Genre](results, "genre"), aggregate.Get[[]models.Book](results, "books"), nil
}

// findByName returns the genre stored under name, if any.
func (h *GenreHandler) findByName(ctx context.Context, name string) (models.Genre, bool, error) {
	genres, err := h.Catalog.Genres.Find(ctx, store.Filter{"name": name})
	if err != nil || len(genres) == 0 {
		return models.Genre{}, false, err
	}
	return genres[0], true, nil
}

// GET /catalog/genres
func (h *GenreHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	genres, err := h.Catalog.Genres.Find(ctx, nil, store.Asc("name"))
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "genre_list", GenreListView{Title: "Genre List", Genres: genres})
}

// GET /catalog/genre/{id}
func (h *GenreHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	genre, books, err := h.genreWithBooks(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "genre_detail", GenreDetailView{
		Title: "Genre: " + genre.Name,
		Genre: genre,
		Books: books,
	})
}

// GET /catalog/genre/create
func (h *GenreHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "genre_form", GenreFormView{Title: "Create Genre"})
}

// POST /catalog/genre/create
//
// A name that is already stored redirects to the existing genre instead of
// inserting a second one.
func (h *GenreHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	form := validation.Check(r.PostForm, genreRules...)
	genre := models.Genre{Name: form.Get("name")}
	if !form.Valid() {
		h.render(w, r, http.StatusOK, "genre_form", GenreFormView{
			Title:  "Create Genre",
			Genre:  genre,
			Errors: form.Errors,
		})
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	existing, found, err := h.findByName(ctx, genre.Name)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}
	if found {
		redirect(w, r, existing.URL())
		return
	}

	created, err := h.Catalog.Genres.Insert(ctx, genre)
	if errors.Is(err, store.ErrDuplicate) {
		// Another request stored the same name after our lookup.
		existing, found, err = h.findByName(ctx, genre.Name)
		if err == nil && !found {
			err = store.ErrNotFound
		}
		if err != nil {
			h.ServerError(w, r, err)
			return
		}
		redirect(w, r, existing.URL())
		return
	}
	if err != nil {
		h.ServerError(w, r, err)
		return
	}
	h.audit(ctx, models.GenreEntity, constants.Create, created)

	redirect(w, r, created.URL())
}

// GET /catalog/genre/{id}/delete
func (h *GenreHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	genre, books, err := h.genreWithBooks(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "genre_delete", GenreDeleteView{
		Title: "Delete Genre",
		Genre: genre,
		Books: books,
	})
}

// POST /catalog/genre/{id}/delete
func (h *GenreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	genre, books, err := h.genreWithBooks(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if len(books) > 0 {
		h.render(w, r, http.StatusOK, "genre_delete", GenreDeleteView{
			Title: "Delete Genre",
			Genre: genre,
			Books: books,
		})
		return
	}

	if err := h.Catalog.Genres.DeleteByID(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(ctx, models.GenreEntity, constants.Delete, genre)

	redirect(w, r, "/catalog/genres")
}

// GET /catalog/genre/{id}/update
func (h *GenreHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	genre, err := h.Catalog.Genres.FindByID(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "genre_form", GenreFormView{Title: "Update Genre", Genre: genre})
}

// POST /catalog/genre/{id}/update
func (h *GenreHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	if !h.parseForm(w, r) {
		return
	}

	form := validation.Check(r.PostForm, genreRules...)
	genre := models.Genre{Name: form.Get("name")}
	genre.ID = id

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if !form.Valid() {
		if _, err := h.Catalog.Genres.FindByID(ctx, id); err != nil {
			h.fail(w, r, err)
			return
		}
	} else {
		updated, err := h.Catalog.Genres.UpdateByID(ctx, id, genre)
		switch {
		case err == nil:
			h.audit(ctx, models.GenreEntity, constants.Update, updated)
			redirect(w, r, updated.URL())
			return
		case errors.Is(err, store.ErrDuplicate):
			form.AddError("name", "Genre already exists.")
		default:
			h.fail(w, r, err)
			return
		}
	}

	h.render(w, r, http.StatusOK, "genre_form", GenreFormView{
		Title:  "Update Genre",
		Genre:  genre,
		Errors: form.Errors,
	})
}
