package seed_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"local-library/internal/models"
	"local-library/internal/seed"
	"local-library/internal/store"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	catalog := store.NewMemoryCatalog()
	now := time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC)

	summary, err := seed.Run(ctx, catalog, now)
	require.NoError(t, err)
	assert.Equal(t, seed.Summary{Authors: 5, Genres: 3, Books: 7, Instances: 11}, summary)

	books, err := catalog.Books.Find(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, catalog.ResolveBookAuthors(ctx, books))
	require.NoError(t, catalog.ResolveBookGenres(ctx, books))

	instances, err := catalog.Instances.Find(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, catalog.ResolveInstanceBooks(ctx, instances))

	available, err := catalog.Instances.Count(ctx, store.Filter{"status": models.StatusAvailable})
	require.NoError(t, err)
	assert.EqualValues(t, 5, available)

	fantasy, err := catalog.Genres.Find(ctx, store.Filter{"name": "Fantasy"})
	require.NoError(t, err)
	require.Len(t, fantasy, 1)
	n, err := catalog.Books.Count(ctx, store.Filter{"genre": fantasy[0].ID})
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}

func TestRunRefusesNonEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	catalog := store.NewMemoryCatalog()
	_, err := catalog.Genres.Insert(ctx, models.Genre{Name: "Fantasy"})
	require.NoError(t, err)

	_, err = seed.Run(ctx, catalog, time.Now())
	assert.ErrorIs(t, err, seed.ErrNotEmpty)
	assert.Empty(t, mustFind(t, catalog.Authors))
}

func mustFind[T any](t *testing.T, coll store.Collection[T]) []T {
	t.Helper()
	recs, err := coll.Find(context.Background(), nil)
	require.NoError(t, err)
	return recs
}
