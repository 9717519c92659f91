package handlers

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/aggregate"
	"local-library/internal/constants"
	"local-library/internal/models"
	"local-library/internal/store"
	"local-library/internal/validation"
)

type AuthorHandler struct {
	*Base
}

var authorRules = []validation.Rule{
	{Field: "first_name", Label: "First name", Required: true, Max: 100},
	{Field: "family_name", Label: "Family name", Required: true, Max: 100},
	{Field: "date_of_birth", Label: "Date of birth", Date: true},
	{Field: "date_of_death", Label: "Date of death", Date: true},
}

func authorFromForm(f *validation.Form) models.Author {
	return models.Author{
		FirstName:   f.Get("first_name"),
		FamilyName:  f.Get("family_name"),
		DateOfBirth: f.Date("date_of_birth"),
		DateOfDeath: f.Date("date_of_death"),
	}
}

// renderForm shows the author form; form is nil when nothing was submitted.
func (h *AuthorHandler) renderForm(w http.ResponseWriter, r *http.Request, title string, author models.Author, form *validation.Form) {
	view := AuthorFormView{
		Title:       title,
		Author:      author,
		DateOfBirth: dateInput(form, "date_of_birth", author.DateOfBirthInput()),
		DateOfDeath: dateInput(form, "date_of_death", author.DateOfDeathInput()),
	}
	if form != nil {
		view.Errors = form.Errors
	}
	h.render(w, r, http.StatusOK, "author_form", view)
}

// authorWithBooks loads an author and the books written by them in parallel.
func (h *AuthorHandler) authorWithBooks(ctx context.Context, id primitive.ObjectID) (models.Author, []models.Book, error) {
	results, err := aggregate.Run(ctx, aggregate.Tasks{
		"author": aggregate.Query(func(ctx context.Context) (models.Author, error) {
			return h.Catalog.Authors.FindByID(ctx, id)
		}),
		"books": aggregate.Query(func(ctx context.Context) ([]models.Book, error) {
			return h.Catalog.Books.Find(ctx, store.Filter{"author": id}, store.Select("title", "summary"))
		}),
	})
	if err != nil {
		return models.Author{}, nil, err
	}
	return aggregate.Get[models.Author](results, "author"), aggregate.Get[[]models.Book](results, "books"), nil
}

// GET /catalog/authors
func (h *AuthorHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	authors, err := h.Catalog.Authors.Find(ctx, nil, store.Asc("family_name"))
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "author_list", AuthorListView{Title: "Author List", Authors: authors})
}

// GET /catalog/author/{id}
func (h *AuthorHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	author, books, err := h.authorWithBooks(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "author_detail", AuthorDetailView{
		Title:  "Author Detail",
		Author: author,
		Books:  books,
	})
}

// GET /catalog/author/create
func (h *AuthorHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "Create Author", models.Author{}, nil)
}

// POST /catalog/author/create
func (h *AuthorHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	form := validation.Check(r.PostForm, authorRules...)
	author := authorFromForm(form)
	if !form.Valid() {
		h.renderForm(w, r, "Create Author", author, form)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	created, err := h.Catalog.Authors.Insert(ctx, author)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}
	h.audit(ctx, models.AuthorEntity, constants.Create, created)

	redirect(w, r, created.URL())
}

// GET /catalog/author/{id}/delete
func (h *AuthorHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	author, books, err := h.authorWithBooks(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "author_delete", AuthorDeleteView{
		Title:  "Delete Author",
		Author: author,
		Books:  books,
	})
}

// POST /catalog/author/{id}/delete
//
// An author who still has books is not deleted; the confirmation page is
// shown again listing them.
func (h *AuthorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	author, books, err := h.authorWithBooks(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if len(books) > 0 {
		h.render(w, r, http.StatusOK, "author_delete", AuthorDeleteView{
			Title:  "Delete Author",
			Author: author,
			Books:  books,
		})
		return
	}

	if err := h.Catalog.Authors.DeleteByID(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(ctx, models.AuthorEntity, constants.Delete, author)

	redirect(w, r, "/catalog/authors")
}

// GET /catalog/author/{id}/update
func (h *AuthorHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	author, err := h.Catalog.Authors.FindByID(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.renderForm(w, r, "Update Author", author, nil)
}

// POST /catalog/author/{id}/update
func (h *AuthorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	if !h.parseForm(w, r) {
		return
	}

	form := validation.Check(r.PostForm, authorRules...)
	author := authorFromForm(form)
	author.ID = id

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if !form.Valid() {
		if _, err := h.Catalog.Authors.FindByID(ctx, id); err != nil {
			h.fail(w, r, err)
			return
		}
		h.renderForm(w, r, "Update Author", author, form)
		return
	}

	updated, err := h.Catalog.Authors.UpdateByID(ctx, id, author)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(ctx, models.AuthorEntity, constants.Update, updated)

	redirect(w, r, updated.URL())
}
