// Package memory is a mutex guarded catalog store with the same contract as
// the postgres models. It backs the test suites and the "memory" storage driver.
package memory

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"
)

type state struct {
	mu           sync.RWMutex
	movies       map[int64]*models.Movie
	nextMovieID  int64
	nextReviewID int64
}

type Storage struct {
	Movie  *MovieModel
	Review *ReviewModel
}

func New() *Storage {
	st := &state{movies: make(map[int64]*models.Movie)}
	return &Storage{
		Movie:  &MovieModel{st},
		Review: &ReviewModel{st},
	}
}

func clone(m *models.Movie) models.Movie {
	out := *m
	out.Reviews = make([]models.Review, len(m.Reviews))
	copy(out.Reviews, m.Reviews)
	out.Recalculate()
	return out
}

type MovieModel struct {
	st *state
}

func (m *MovieModel) Get(ctx context.Context, id int64) (*models.Movie, error) {
	m.st.mu.RLock()
	defer m.st.mu.RUnlock()
	movie, ok := m.st.movies[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := clone(movie)
	return &out, nil
}

func (m *MovieModel) List(ctx context.Context, q filters.MovieQuery) ([]models.Movie, error) {
	m.st.mu.RLock()
	defer m.st.mu.RUnlock()
	all := make([]models.Movie, 0, len(m.st.movies))
	for _, movie := range m.st.movies {
		all = append(all, clone(movie))
	}
	return q.Apply(all), nil
}

func (m *MovieModel) Random(ctx context.Context) (*models.Movie, error) {
	m.st.mu.RLock()
	defer m.st.mu.RUnlock()
	if len(m.st.movies) == 0 {
		return nil, storage.ErrNotFound
	}
	n := rand.IntN(len(m.st.movies))
	for _, movie := range m.st.movies {
		if n == 0 {
			out := clone(movie)
			return &out, nil
		}
		n--
	}
	return nil, storage.ErrNotFound
}

func (m *MovieModel) Insert(ctx context.Context, in models.MovieInput) (*models.Movie, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	m.st.nextMovieID++
	movie := &models.Movie{
		ID:          m.st.nextMovieID,
		Title:       in.Title,
		Genre:       in.Genre,
		ReleaseDate: in.ReleaseDate,
		Rating:      in.Rating,
		ImageURL:    in.ImageURL,
		Description: in.Description,
		Version:     1,
		CreatedAt:   time.Now(),
		Reviews:     []models.Review{},
	}
	m.st.movies[movie.ID] = movie
	out := clone(movie)
	return &out, nil
}

func (m *MovieModel) Update(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	current, ok := m.st.movies[movie.ID]
	if !ok || current.Version != movie.Version {
		return nil, storage.ErrEditConflict
	}
	current.Title = movie.Title
	current.Genre = movie.Genre
	current.ReleaseDate = movie.ReleaseDate
	current.Rating = movie.Rating
	current.ImageURL = movie.ImageURL
	current.Description = movie.Description
	current.Version++
	out := clone(current)
	return &out, nil
}

func (m *MovieModel) Delete(ctx context.Context, id int64) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if _, ok := m.st.movies[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.st.movies, id)
	return nil
}

type ReviewModel struct {
	st *state
}

func (m *ReviewModel) Insert(ctx context.Context, movieID int64, in models.ReviewInput) (*models.Review, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	movie, ok := m.st.movies[movieID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	m.st.nextReviewID++
	review := models.Review{
		ID:           m.st.nextReviewID,
		MovieID:      movieID,
		ReviewerName: in.ReviewerName,
		ReviewText:   in.ReviewText,
		Rating:       in.Rating,
		CreatedAt:    time.Now(),
	}
	movie.Reviews = append(movie.Reviews, review)
	return &review, nil
}

func (m *ReviewModel) Update(ctx context.Context, review *models.Review) (*models.Review, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	movie, ok := m.st.movies[review.MovieID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	for i := range movie.Reviews {
		if movie.Reviews[i].ID == review.ID {
			movie.Reviews[i].ReviewerName = review.ReviewerName
			movie.Reviews[i].ReviewText = review.ReviewText
			movie.Reviews[i].Rating = review.Rating
			out := movie.Reviews[i]
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *ReviewModel) Delete(ctx context.Context, movieID, reviewID int64) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	movie, ok := m.st.movies[movieID]
	if !ok {
		return storage.ErrNotFound
	}
	for i := range movie.Reviews {
		if movie.Reviews[i].ID == reviewID {
			movie.Reviews = append(movie.Reviews[:i], movie.Reviews[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}
