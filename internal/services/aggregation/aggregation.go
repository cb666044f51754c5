// Package aggregation computes values derived from the review annotated catalog.
package aggregation

import (
	"context"
	"errors"
	"log/slog"

	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"
)

type MoviesStorage interface {
	Get(ctx context.Context, id int64) (*models.Movie, error)
	List(ctx context.Context, q filters.MovieQuery) ([]models.Movie, error)
	Random(ctx context.Context) (*models.Movie, error)
}

type AggregationService struct {
	log          *slog.Logger
	storage      MoviesStorage
	defaultCount int
}

func New(log *slog.Logger, storage MoviesStorage, defaultCount int) *AggregationService {
	return &AggregationService{
		log:          log,
		storage:      storage,
		defaultCount: defaultCount,
	}
}

// AverageRating returns the mean review rating of a movie. A missing movie
// and a movie without reviews are reported as different errors.
func (s *AggregationService) AverageRating(ctx context.Context, movieID int64) (float64, error) {
	const op = "aggregation.AggregationService.AverageRating"
	log := s.log.With("op", op, "id", movieID)
	movie, err := s.storage.Get(ctx, movieID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("movie not found")
			return 0, ErrMovieNotFound
		}
		log.Error(err.Error())
		return 0, err
	}
	avg := models.Average(movie.Reviews)
	if avg == nil {
		log.Info("movie has no reviews")
		return 0, ErrNoReviews
	}
	return *avg, nil
}

// TopRated returns up to count movies ordered by computed average rating,
// movies without reviews counting as 0.
func (s *AggregationService) TopRated(ctx context.Context, count int) ([]models.Movie, error) {
	const op = "aggregation.AggregationService.TopRated"
	return s.list(ctx, op, filters.TopRated(s.count(count)))
}

// Latest returns up to count movies ordered by release date, newest first.
func (s *AggregationService) Latest(ctx context.Context, count int) ([]models.Movie, error) {
	const op = "aggregation.AggregationService.Latest"
	return s.list(ctx, op, filters.Latest(s.count(count)))
}

func (s *AggregationService) count(count int) int {
	if count < 1 {
		return s.defaultCount
	}
	return count
}

func (s *AggregationService) list(ctx context.Context, op string, q filters.MovieQuery) ([]models.Movie, error) {
	log := s.log.With("op", op, "count", q.PageSize)
	movies, err := s.storage.List(ctx, q)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	return movies, nil
}

// Random returns one movie picked uniformly by the storage layer.
func (s *AggregationService) Random(ctx context.Context) (*models.Movie, error) {
	const op = "aggregation.AggregationService.Random"
	log := s.log.With("op", op)
	movie, err := s.storage.Random(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("catalog is empty")
			return nil, ErrEmptyCatalog
		}
		log.Error(err.Error())
		return nil, err
	}
	return movie, nil
}
