package movies

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"moviecatalog/proj/internal/domain/fields"
	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/lib/validator"
	"moviecatalog/proj/internal/storage"
	"moviecatalog/proj/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOpts = Options{Defaults: filters.Defaults{PageSize: 10, MaxPageSize: 100}, UpdateRetries: 1}

func newTestService(t *testing.T, st MoviesStorage) *MovieService {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, st, validator.New(), testOpts)
}

func input(title, genre string) models.MovieInput {
	return models.MovieInput{
		Title:       title,
		Genre:       genre,
		ReleaseDate: fields.NewDate(2019, time.May, 30),
		Rating:      7,
		ImageURL:    "https://example.com/poster.jpg",
	}
}

// conflictingStorage fails the first n updates with an edit conflict.
type conflictingStorage struct {
	*memory.MovieModel
	conflicts int
	updates   int
}

func (s *conflictingStorage) Update(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	s.updates++
	if s.updates <= s.conflicts {
		return nil, storage.ErrEditConflict
	}
	return s.MovieModel.Update(ctx, movie)
}

type failingStorage struct {
	*memory.MovieModel
}

func (failingStorage) List(context.Context, filters.MovieQuery) ([]models.Movie, error) {
	return nil, errors.New("connection refused")
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memory.New().Movie)

	movie, err := svc.Create(ctx, input("Parasite", "Thriller"))
	require.NoError(t, err)
	assert.NotZero(t, movie.ID)
	assert.Equal(t, "Parasite", movie.Title)
	assert.Nil(t, movie.AverageRating)
	assert.Empty(t, movie.Reviews)

	_, err = svc.Create(ctx, models.MovieInput{Title: "No genre"})
	var verr *validator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "genre")
	assert.Contains(t, verr.Fields, "releaseDate")
}

func TestCreateAllowsDuplicateTitles(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memory.New().Movie)
	first, err := svc.Create(ctx, input("Oldboy", "Thriller"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, input("Oldboy", "Thriller"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	found, err := svc.Search(ctx, "oldboy", "")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memory.New().Movie)
	created, err := svc.Create(ctx, input("Oldboy", "Thriller"))
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)

	_, err = svc.Get(ctx, created.ID+1)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestListAndSearch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memory.New().Movie)
	for _, in := range []models.MovieInput{
		input("Parasite", "Thriller"),
		input("Train to Busan", "Horror"),
		input("Memories of Murder", "thriller"),
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, filters.MovieQuery{Genre: "THRILLER", Filters: filters.Filters{Page: 0, PageSize: 1}})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Memories of Murder", page[0].Title)

	page, err = svc.List(ctx, filters.MovieQuery{Genre: "thriller", Filters: filters.Filters{Page: 3, PageSize: 1}})
	require.NoError(t, err)
	assert.Empty(t, page)

	found, err := svc.Search(ctx, "para", "")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Parasite", found[0].Title)
}

func TestListSurfacesStorageFailure(t *testing.T) {
	svc := newTestService(t, failingStorage{memory.New().Movie})
	movies, err := svc.List(context.Background(), filters.MovieQuery{})
	assert.Error(t, err)
	assert.Nil(t, movies)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := newTestService(t, st.Movie)
	created, err := svc.Create(ctx, input("Burning", "Drama"))
	require.NoError(t, err)
	_, err = st.Review.Insert(ctx, created.ID, models.ReviewInput{ReviewerName: "a", ReviewText: "b", Rating: 6})
	require.NoError(t, err)

	t.Run("replaces scalar fields and keeps reviews", func(t *testing.T) {
		in := input("Burning (2018)", "Mystery")
		in.ID = created.ID
		in.Rating = 9.5
		updated, err := svc.Update(ctx, created.ID, in)
		require.NoError(t, err)
		assert.Equal(t, "Burning (2018)", updated.Title)
		assert.Equal(t, "Mystery", updated.Genre)
		assert.Equal(t, 9.5, updated.Rating)
		assert.Equal(t, "", updated.Description)
		assert.Greater(t, updated.Version, created.Version)
		assert.Len(t, updated.Reviews, 1)
	})
	t.Run("id mismatch", func(t *testing.T) {
		in := input("x", "y")
		in.ID = created.ID + 1
		_, err := svc.Update(ctx, created.ID, in)
		assert.ErrorIs(t, err, ErrIDMismatch)
	})
	t.Run("not found", func(t *testing.T) {
		in := input("x", "y")
		in.ID = 999
		_, err := svc.Update(ctx, 999, in)
		assert.ErrorIs(t, err, ErrMovieNotFound)
	})
	t.Run("invalid", func(t *testing.T) {
		in := input("", "y")
		in.ID = created.ID
		_, err := svc.Update(ctx, created.ID, in)
		var verr *validator.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestUpdateRetriesOnceOnEditConflict(t *testing.T) {
	ctx := context.Background()
	t.Run("second attempt wins", func(t *testing.T) {
		st := &conflictingStorage{MovieModel: memory.New().Movie, conflicts: 1}
		svc := newTestService(t, st)
		created, err := svc.Create(ctx, input("Mother", "Drama"))
		require.NoError(t, err)
		in := input("Mother (2009)", "Drama")
		in.ID = created.ID
		updated, err := svc.Update(ctx, created.ID, in)
		require.NoError(t, err)
		assert.Equal(t, "Mother (2009)", updated.Title)
		assert.Equal(t, 2, st.updates)
	})
	t.Run("conflict surfaces after the retry", func(t *testing.T) {
		st := &conflictingStorage{MovieModel: memory.New().Movie, conflicts: 2}
		svc := newTestService(t, st)
		created, err := svc.Create(ctx, input("Mother", "Drama"))
		require.NoError(t, err)
		in := input("Mother (2009)", "Drama")
		in.ID = created.ID
		_, err = svc.Update(ctx, created.ID, in)
		assert.ErrorIs(t, err, ErrEditConflict)
		assert.Equal(t, 2, st.updates)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := newTestService(t, st.Movie)
	created, err := svc.Create(ctx, input("The Host", "Horror"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrMovieNotFound)
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}
