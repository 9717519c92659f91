package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"local-library/internal/middleware"
	"local-library/internal/views"
)

const idPattern = "{id:[0-9a-fA-F]{24}}"

// kindRoutes is the handler set registered for one record kind.
type kindRoutes interface {
	List(http.ResponseWriter, *http.Request)
	Detail(http.ResponseWriter, *http.Request)
	CreateForm(http.ResponseWriter, *http.Request)
	Create(http.ResponseWriter, *http.Request)
	DeleteForm(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
	UpdateForm(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
}

// registerKind wires the list, detail, create, delete and update routes of
// one kind under /catalog. Create routes come first so "create" is never
// taken for an id.
func registerKind(r *mux.Router, kind string, h kindRoutes) {
	r.HandleFunc(fmt.Sprintf("/%ss", kind), h.List).Methods(http.MethodGet)

	r.HandleFunc(fmt.Sprintf("/%s/create", kind), h.CreateForm).Methods(http.MethodGet)
	r.HandleFunc(fmt.Sprintf("/%s/create", kind), h.Create).Methods(http.MethodPost)

	item := fmt.Sprintf("/%s/%s", kind, idPattern)
	r.HandleFunc(item, h.Detail).Methods(http.MethodGet)
	r.HandleFunc(item+"/delete", h.DeleteForm).Methods(http.MethodGet)
	r.HandleFunc(item+"/delete", h.Delete).Methods(http.MethodPost)
	r.HandleFunc(item+"/update", h.UpdateForm).Methods(http.MethodGet)
	r.HandleFunc(item+"/update", h.Update).Methods(http.MethodPost)
}

func wrap(chain []mux.MiddlewareFunc, h http.Handler) http.Handler {
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

// NewRouter builds the complete HTTP surface. metrics and gatherer may be
// nil, in which case requests are not measured and /metrics is not served.
func NewRouter(base *Base, metrics *middleware.Metrics, gatherer prometheus.Gatherer) *mux.Router {
	chain := []mux.MiddlewareFunc{middleware.RequestLogger(base.Logger)}
	if metrics != nil {
		chain = append(chain, metrics.Middleware)
	}
	chain = append(chain, middleware.Recover(base.Logger, base.ServerError))

	r := mux.NewRouter()
	r.Use(chain...)

	// mux skips middleware when no route matches.
	r.NotFoundHandler = wrap(chain, http.HandlerFunc(base.NotFound))
	r.MethodNotAllowedHandler = wrap(chain, http.HandlerFunc(base.MethodNotAllowed))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "OK")
	}).Methods(http.MethodGet)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", views.Static()))

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		redirect(w, r, "/catalog")
	}).Methods(http.MethodGet)

	catalog := r.PathPrefix("/catalog").Subrouter()
	catalog.HandleFunc("", (&CatalogHandler{Base: base}).Index).Methods(http.MethodGet)
	catalog.HandleFunc("/", (&CatalogHandler{Base: base}).Index).Methods(http.MethodGet)

	registerKind(catalog, "author", &AuthorHandler{Base: base})
	registerKind(catalog, "book", &BookHandler{Base: base})
	registerKind(catalog, "bookinstance", &BookInstanceHandler{Base: base})
	registerKind(catalog, "genre", &GenreHandler{Base: base})

	return r
}
