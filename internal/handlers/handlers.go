// Package handlers implements the catalog pages: list, detail, create,
// delete and update flows for authors, books, book instances and genres.
package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"local-library/internal/middleware"
	"local-library/internal/store"
	"local-library/internal/utils"
	"local-library/internal/validation"
	"local-library/internal/views"
)

// Base holds what every catalog handler needs.
type Base struct {
	Catalog     *store.Catalog
	Views       views.Renderer
	AuditLogger *utils.AuditLogger
	Logger      *zap.Logger
	Timeout     time.Duration
}

func (b *Base) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if b.Timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), b.Timeout)
}

// render buffers the page so a template failure can still become a 500.
func (b *Base) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	var buf bytes.Buffer
	if err := b.Views.Render(&buf, page, data); err != nil {
		b.ServerError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (b *Base) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := ErrorView{
		Title:     http.StatusText(status),
		Status:    status,
		Message:   message,
		RequestID: middleware.RequestID(r.Context()),
	}

	var buf bytes.Buffer
	if err := b.Views.Render(&buf, "error", data); err != nil {
		b.Logger.Error("render error page", zap.Error(err))
		http.Error(w, message, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// ServerError is the error boundary: log and answer 500 with a generic page.
func (b *Base) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	b.Logger.Error("request failed",
		zap.String("request_id", middleware.RequestID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	b.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

func (b *Base) NotFound(w http.ResponseWriter, r *http.Request) {
	b.renderError(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
}

func (b *Base) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	b.renderError(w, r, http.StatusMethodNotAllowed, "That action is not supported here.")
}

// fail answers 404 when the primary record is missing and 500 otherwise.
func (b *Base) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		b.NotFound(w, r)
		return
	}
	b.ServerError(w, r, err)
}

func (b *Base) audit(ctx context.Context, entity, action string, data any) {
	if b.AuditLogger == nil {
		return
	}
	if err := b.AuditLogger.Log(ctx, entity, action, data); err != nil {
		b.Logger.Warn("audit log failed",
			zap.String("entity", entity),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func (b *Base) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		b.renderError(w, r, http.StatusBadRequest, "The submitted form could not be read.")
		return false
	}
	return true
}

// dateInput is the text for a date input: what was submitted when it did not
// parse, otherwise stored.
func dateInput(form *validation.Form, field, stored string) string {
	if form != nil && form.Errors.Has(field) {
		return form.Get(field)
	}
	return stored
}

func redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func pathID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	return id, err == nil
}
