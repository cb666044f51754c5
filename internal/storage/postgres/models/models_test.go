package models

import (
	"context"
	"os"
	"testing"
	"time"

	"moviecatalog/proj/internal/domain/fields"
	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"
	"moviecatalog/proj/internal/storage/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestModels connects to CATALOG_TEST_DB_DSN and empties the catalog.
func newTestModels(t *testing.T) *Models {
	t.Helper()
	dsn := os.Getenv("CATALOG_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("CATALOG_TEST_DB_DSN is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, dsn, 4, time.Minute)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	_, err = db.Conn.Exec(ctx, "TRUNCATE movies RESTART IDENTITY CASCADE")
	require.NoError(t, err)
	return New(db)
}

func insert(t *testing.T, m *Models, title, genre string, released fields.Date) *models.Movie {
	t.Helper()
	movie, err := m.Movie.Insert(context.Background(), models.MovieInput{
		Title: title, Genre: genre, ReleaseDate: released, Rating: 5,
	})
	require.NoError(t, err)
	return movie
}

func reviewsOf(t *testing.T, m *Models, movieID int64) []models.Review {
	t.Helper()
	byMovie, err := m.Review.ForMovies(context.Background(), []int64{movieID})
	require.NoError(t, err)
	return byMovie[movieID]
}

func TestMovieLifecycle(t *testing.T) {
	m := newTestModels(t)
	ctx := context.Background()
	parasite := insert(t, m, "Parasite", "Thriller", fields.NewDate(2019, time.May, 30))
	insert(t, m, "Memories of Murder", "Crime", fields.NewDate(2003, time.May, 2))

	for _, rating := range []int{9, 7} {
		_, err := m.Review.Insert(ctx, parasite.ID, models.ReviewInput{ReviewerName: "a", ReviewText: "b", Rating: rating})
		require.NoError(t, err)
	}
	got, err := m.Movie.Get(ctx, parasite.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AverageRating)
	assert.InDelta(t, 8.0, *got.AverageRating, 1e-9)
	assert.Len(t, got.Reviews, 2)
	assert.Equal(t, "2019-05-30", got.ReleaseDate.String())

	page, err := m.Movie.List(ctx, filters.MovieQuery{
		Title:   "PARA",
		Filters: filters.Filters{Page: 1, PageSize: 10, Sort: filters.SortTitle, Order: filters.AscSort},
	})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, parasite.ID, page[0].ID)

	top, err := m.Movie.List(ctx, filters.TopRated(1))
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, parasite.ID, top[0].ID)

	got.Title = "Parasite (2019)"
	updated, err := m.Movie.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, got.Version+1, updated.Version)
	_, err = m.Movie.Update(ctx, got)
	assert.ErrorIs(t, err, storage.ErrEditConflict)

	require.NoError(t, m.Movie.Delete(ctx, parasite.ID))
	assert.ErrorIs(t, m.Movie.Delete(ctx, parasite.ID), storage.ErrNotFound)
	assert.Empty(t, reviewsOf(t, m, parasite.ID))
}

func TestReviewsMatchBothIDs(t *testing.T) {
	m := newTestModels(t)
	ctx := context.Background()
	a := insert(t, m, "A", "Drama", fields.NewDate(2001, time.January, 1))
	b := insert(t, m, "B", "Drama", fields.NewDate(2002, time.January, 1))
	r, err := m.Review.Insert(ctx, a.ID, models.ReviewInput{ReviewerName: "a", ReviewText: "b", Rating: 6})
	require.NoError(t, err)

	assert.ErrorIs(t, m.Review.Delete(ctx, b.ID, r.ID), storage.ErrNotFound)
	_, err = m.Review.Update(ctx, &models.Review{ID: r.ID, MovieID: b.ID, ReviewerName: "x", ReviewText: "y", Rating: 1})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Len(t, reviewsOf(t, m, a.ID), 1)

	_, err = m.Review.Insert(ctx, 9999, models.ReviewInput{ReviewerName: "a", ReviewText: "b", Rating: 6})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRandom(t *testing.T) {
	m := newTestModels(t)
	ctx := context.Background()
	_, err := m.Movie.Random(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	a := insert(t, m, "A", "Drama", fields.NewDate(2001, time.January, 1))
	movie, err := m.Movie.Random(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.ID, movie.ID)
}
