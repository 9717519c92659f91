package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/aggregate"
	"local-library/internal/constants"
	"local-library/internal/models"
	"local-library/internal/store"
	"local-library/internal/validation"
)

type BookInstanceHandler struct {
	*Base
	// Now stamps the default due-back date; time.Now when nil.
	Now func() time.Time
}

var bookInstanceRules = []validation.Rule{
	{Field: "book", Label: "Book", Required: true},
	{Field: "imprint", Label: "Imprint", Required: true},
	{Field: "due_back", Label: "Date", Date: true},
	{Field: "status", Label: "Status", OneOf: lo.Map(models.InstanceStatuses, func(s models.InstanceStatus, _ int) string {
		return string(s)
	})},
}

func (h *BookInstanceHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// instanceFromForm applies the submitted values over the defaults.
func (h *BookInstanceHandler) instanceFromForm(form *validation.Form, books []models.Book) models.BookInstance {
	var bookID primitive.ObjectID
	if hex := form.Get("book"); hex != "" {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil || !lo.ContainsBy(books, func(b models.Book) bool { return b.ID == id }) {
			form.AddError("book", "Invalid book.")
		}
		bookID = id
	}

	instance := models.NewBookInstance(bookID, form.Get("imprint"), h.now())
	if status := form.Get("status"); models.IsValidInstanceStatus(status) {
		instance.Status = models.InstanceStatus(status)
	}
	if due := form.Date("due_back"); due != nil {
		instance.DueBack = *due
	}
	return instance
}

func (h *BookInstanceHandler) bookOptions(ctx context.Context) ([]models.Book, error) {
	return h.Catalog.Books.Find(ctx, nil, store.Select("title"), store.Asc("title"))
}

// loadInstance fetches a book instance with its book resolved.
func (h *BookInstanceHandler) loadInstance(ctx context.Context, id primitive.ObjectID) (models.BookInstance, error) {
	instance, err := h.Catalog.Instances.FindByID(ctx, id)
	if err != nil {
		return instance, err
	}

	instances := []models.BookInstance{instance}
	if err := h.Catalog.ResolveInstanceBooks(ctx, instances); err != nil {
		return instance, err
	}
	return instances[0], nil
}

// renderForm shows the book instance form; form is nil when nothing was submitted.
func (h *BookInstanceHandler) renderForm(w http.ResponseWriter, r *http.Request, title string, instance models.BookInstance, books []models.Book, form *validation.Form) {
	view := BookInstanceFormView{
		Title:    title,
		Instance: instance,
		DueBack:  dateInput(form, "due_back", instance.DueBackInput()),
		Books:    books,
		Statuses: models.InstanceStatuses,
	}
	if form != nil {
		view.Errors = form.Errors
	}
	h.render(w, r, http.StatusOK, "bookinstance_form", view)
}

// GET /catalog/bookinstances
func (h *BookInstanceHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	instances, err := h.Catalog.Instances.Find(ctx, nil)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}
	if err := h.Catalog.ResolveInstanceBooks(ctx, instances); err != nil {
		h.ServerError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "bookinstance_list", BookInstanceListView{
		Title:     "Book Instance List",
		Instances: instances,
	})
}

// GET /catalog/bookinstance/{id}
func (h *BookInstanceHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	instance, err := h.loadInstance(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	title := "Book Instance"
	if instance.Book != nil {
		title = "Copy: " + instance.Book.Title
	}
	h.render(w, r, http.StatusOK, "bookinstance_detail", BookInstanceDetailView{Title: title, Instance: instance})
}

// GET /catalog/bookinstance/create
func (h *BookInstanceHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	books, err := h.bookOptions(ctx)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	instance := models.NewBookInstance(primitive.NilObjectID, "", h.now())
	h.renderForm(w, r, "Create Book Instance", instance, books, nil)
}

// POST /catalog/bookinstance/create
func (h *BookInstanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	books, err := h.bookOptions(ctx)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	form := validation.Check(r.PostForm, bookInstanceRules...)
	instance := h.instanceFromForm(form, books)
	if !form.Valid() {
		h.renderForm(w, r, "Create Book Instance", instance, books, form)
		return
	}

	created, err := h.Catalog.Instances.Insert(ctx, instance)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}
	h.audit(ctx, models.BookInstanceEntity, constants.Create, created)

	redirect(w, r, created.URL())
}

// GET /catalog/bookinstance/{id}/delete
func (h *BookInstanceHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	instance, err := h.loadInstance(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "bookinstance_delete", BookInstanceDeleteView{
		Title:    "Delete Book Instance",
		Instance: instance,
	})
}

// POST /catalog/bookinstance/{id}/delete
func (h *BookInstanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	instance, err := h.Catalog.Instances.FindByID(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Catalog.Instances.DeleteByID(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(ctx, models.BookInstanceEntity, constants.Delete, instance)

	redirect(w, r, "/catalog/bookinstances")
}

// GET /catalog/bookinstance/{id}/update
func (h *BookInstanceHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.NotFound(w, r)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	results, err := aggregate.Run(ctx, aggregate.Tasks{
		"instance": aggregate.Query(func(ctx context.Context) (models.BookInstance, error) {
			return h.Catalog.Instances.FindByID(ctx, id)
		}),
		"books": aggregate.Query(h.bookOptions),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.renderForm(w, r, "Update Book Instance",
		aggregate.Get[models.BookInstance](results, "instance"),
		aggregate.Get[[]models.Book](results, "books"),
		nil,
	)
}

// POST /catalog/bookinstance/{id}/update
func (h *BookInstanceHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	books, err := h.bookOptions(ctx)
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	form := validation.Check(r.PostForm, bookInstanceRules...)
	instance := h.instanceFromForm(form, books)
	instance.ID = id
	if !form.Valid() {
		if _, err := h.Catalog.Instances.FindByID(ctx, id); err != nil {
			h.fail(w, r, err)
			return
		}
		h.renderForm(w, r, "Update Book Instance", instance, books, form)
		return
	}

	updated, err := h.Catalog.Instances.UpdateByID(ctx, id, instance)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(ctx, models.BookInstanceEntity, constants.Update, updated)

	redirect(w, r, updated.URL())
}
