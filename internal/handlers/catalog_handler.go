package handlers

import (
	"context"
	"net/http"

	"local-library/internal/aggregate"
	"local-library/internal/models"
	"local-library/internal/store"
)

type CatalogHandler struct {
	*Base
}

func counter[T any](coll store.Collection[T], filter store.Filter) aggregate.Task {
	return aggregate.Query(func(ctx context.Context) (int64, error) {
		return coll.Count(ctx, filter)
	})
}

// GET /catalog
func (h *CatalogHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	results, err := aggregate.Run(ctx, aggregate.Tasks{
		"books":              counter(h.Catalog.Books, nil),
		"bookInstances":      counter(h.Catalog.Instances, nil),
		"bookInstancesAvail": counter(h.Catalog.Instances, store.Filter{"status": models.StatusAvailable}),
		"authors":            counter(h.Catalog.Authors, nil),
		"genres":             counter(h.Catalog.Genres, nil),
	})
	if err != nil {
		h.ServerError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "index", IndexView{
		Title:                      "Local Library Home",
		BookCount:                  aggregate.Get[int64](results, "books"),
		BookInstanceCount:          aggregate.Get[int64](results, "bookInstances"),
		BookInstanceAvailableCount: aggregate.Get[int64](results, "bookInstancesAvail"),
		AuthorCount:                aggregate.Get[int64](results, "authors"),
		GenreCount:                 aggregate.Get[int64](results, "genres"),
	})
}
