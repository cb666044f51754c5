package reviews

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"moviecatalog/proj/internal/domain/fields"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/lib/validator"
	"moviecatalog/proj/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*ReviewService, *memory.Storage, *models.Movie) {
	t.Helper()
	st := memory.New()
	movie, err := st.Movie.Insert(context.Background(), models.MovieInput{
		Title: "Decision to Leave", Genre: "Mystery", ReleaseDate: fields.NewDate(2022, time.June, 29),
	})
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, st.Review, validator.New()), st, movie
}

func review(rating int) models.ReviewInput {
	return models.ReviewInput{ReviewerName: "Jane", ReviewText: "Loved it!", Rating: rating}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc, _, movie := setup(t)

	in := review(9)
	in.MovieID = 12345
	created, err := svc.Create(ctx, movie.ID, in)
	require.NoError(t, err)
	assert.Equal(t, movie.ID, created.MovieID)
	assert.Equal(t, "Jane", created.ReviewerName)

	_, err = svc.Create(ctx, movie.ID+1, review(9))
	assert.ErrorIs(t, err, ErrMovieNotFound)

	_, err = svc.Create(ctx, movie.ID, review(11))
	var verr *validator.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, st, movie := setup(t)
	created, err := svc.Create(ctx, movie.ID, review(4))
	require.NoError(t, err)

	t.Run("ok", func(t *testing.T) {
		in := review(8)
		in.ID, in.MovieID = created.ID, movie.ID
		in.ReviewText = "Better on a second watch"
		updated, err := svc.Update(ctx, movie.ID, created.ID, in)
		require.NoError(t, err)
		assert.Equal(t, 8, updated.Rating)
		got, err := st.Movie.Get(ctx, movie.ID)
		require.NoError(t, err)
		assert.Equal(t, "Better on a second watch", got.Reviews[0].ReviewText)
	})
	t.Run("body ids must match path", func(t *testing.T) {
		in := review(8)
		in.ID, in.MovieID = created.ID, movie.ID+1
		_, err := svc.Update(ctx, movie.ID, created.ID, in)
		assert.ErrorIs(t, err, ErrIDMismatch)
		in.ID, in.MovieID = 0, movie.ID
		_, err = svc.Update(ctx, movie.ID, created.ID, in)
		assert.ErrorIs(t, err, ErrIDMismatch)
	})
	t.Run("unknown review", func(t *testing.T) {
		in := review(8)
		in.ID, in.MovieID = created.ID+100, movie.ID
		_, err := svc.Update(ctx, movie.ID, created.ID+100, in)
		assert.ErrorIs(t, err, ErrReviewNotFound)
	})
}

func TestDeleteUnderWrongMovie(t *testing.T) {
	ctx := context.Background()
	svc, st, movie := setup(t)
	other, err := st.Movie.Insert(ctx, models.MovieInput{
		Title: "Poetry", Genre: "Drama", ReleaseDate: fields.NewDate(2010, time.May, 13),
	})
	require.NoError(t, err)
	created, err := svc.Create(ctx, movie.ID, review(6))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, other.ID, created.ID), ErrReviewNotFound)
	got, err := st.Movie.Get(ctx, movie.ID)
	require.NoError(t, err)
	assert.Len(t, got.Reviews, 1)

	require.NoError(t, svc.Delete(ctx, movie.ID, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, movie.ID, created.ID), ErrReviewNotFound)
}
