package memory

import (
	"context"
	"testing"
	"time"

	"moviecatalog/proj/internal/domain/fields"
	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMovie(t *testing.T, s *Storage, title string) *models.Movie {
	t.Helper()
	m, err := s.Movie.Insert(context.Background(), models.MovieInput{
		Title: title, Genre: "Drama", ReleaseDate: fields.NewDate(2020, time.January, 1),
	})
	require.NoError(t, err)
	return m
}

func TestReviewsFollowMovie(t *testing.T) {
	ctx := context.Background()
	s := New()
	m := newMovie(t, s, "Minari")
	_, err := s.Review.Insert(ctx, m.ID, models.ReviewInput{ReviewerName: "a", ReviewText: "b", Rating: 7})
	require.NoError(t, err)
	_, err = s.Review.Insert(ctx, m.ID, models.ReviewInput{ReviewerName: "c", ReviewText: "d", Rating: 9})
	require.NoError(t, err)

	got, err := s.Movie.Get(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, got.Reviews, 2)
	require.NotNil(t, got.AverageRating)
	assert.InDelta(t, 8.0, *got.AverageRating, 1e-9)

	require.NoError(t, s.Movie.Delete(ctx, m.ID))
	_, err = s.Movie.Get(ctx, m.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Empty(t, reviewsOf(s, m.ID))
	assert.ErrorIs(t, s.Movie.Delete(ctx, m.ID), storage.ErrNotFound)
}

// reviewsOf reads the stored reviews of a movie, nil once the movie is gone.
func reviewsOf(s *Storage, movieID int64) []models.Review {
	s.Review.st.mu.RLock()
	defer s.Review.st.mu.RUnlock()
	movie, ok := s.Review.st.movies[movieID]
	if !ok {
		return nil
	}
	return append([]models.Review(nil), movie.Reviews...)
}

func TestReviewInsertUnknownMovie(t *testing.T) {
	_, err := New().Review.Insert(context.Background(), 42, models.ReviewInput{ReviewerName: "a", ReviewText: "b"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestReviewDeleteRequiresBothIDs(t *testing.T) {
	ctx := context.Background()
	s := New()
	first := newMovie(t, s, "First")
	second := newMovie(t, s, "Second")
	r, err := s.Review.Insert(ctx, first.ID, models.ReviewInput{ReviewerName: "a", ReviewText: "b", Rating: 5})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Review.Delete(ctx, second.ID, r.ID), storage.ErrNotFound)
	_, err = s.Review.Update(ctx, &models.Review{ID: r.ID, MovieID: second.ID, Rating: 1})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	reviews := reviewsOf(s, first.ID)
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Rating)

	require.NoError(t, s.Review.Delete(ctx, first.ID, r.ID))
	assert.ErrorIs(t, s.Review.Delete(ctx, first.ID, r.ID), storage.ErrNotFound)
}

func TestUpdateChecksVersion(t *testing.T) {
	ctx := context.Background()
	s := New()
	m := newMovie(t, s, "Old")
	stale := *m

	m.Title = "New"
	updated, err := s.Movie.Update(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, int32(2), updated.Version)

	stale.Title = "Lost write"
	_, err = s.Movie.Update(ctx, &stale)
	assert.ErrorIs(t, err, storage.ErrEditConflict)

	got, err := s.Movie.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
}

func TestReturnedMoviesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	m := newMovie(t, s, "Copy")
	_, err := s.Review.Insert(ctx, m.ID, models.ReviewInput{ReviewerName: "a", ReviewText: "b", Rating: 3})
	require.NoError(t, err)

	list, err := s.Movie.List(ctx, filters.MovieQuery{}.Normalize(filters.Defaults{PageSize: 10}))
	require.NoError(t, err)
	require.Len(t, list, 1)
	list[0].Reviews[0].Rating = 10
	list[0].Title = "changed"

	got, err := s.Movie.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Copy", got.Title)
	assert.Equal(t, 3, got.Reviews[0].Rating)
}

func TestRandom(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.Movie.Random(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	ids := map[int64]bool{}
	for _, title := range []string{"a", "b", "c"} {
		ids[newMovie(t, s, title).ID] = true
	}
	for i := 0; i < 50; i++ {
		m, err := s.Movie.Random(ctx)
		require.NoError(t, err)
		assert.True(t, ids[m.ID])
	}
}
