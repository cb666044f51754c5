package services

import (
	"log/slog"

	"moviecatalog/proj/internal/config"
	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/lib/validator"
	"moviecatalog/proj/internal/services/aggregation"
	"moviecatalog/proj/internal/services/movies"
	"moviecatalog/proj/internal/services/reviews"
)

type MovieStorage interface {
	movies.MoviesStorage
	aggregation.MoviesStorage
}

// Storage is the pair of models every backend provides.
type Storage struct {
	Movies  MovieStorage
	Reviews reviews.ReviewStorage
}

type Services struct {
	Movies      *movies.MovieService
	Reviews     *reviews.ReviewService
	Aggregation *aggregation.AggregationService
}

func New(log *slog.Logger, cfg *config.Config, storage Storage) *Services {
	validate := validator.New()
	return &Services{
		Movies: movies.New(log, storage.Movies, validate, movies.Options{
			Defaults: filters.Defaults{
				PageSize:    cfg.Catalog.DefaultPageSize,
				MaxPageSize: cfg.Catalog.MaxPageSize,
			},
			UpdateRetries: cfg.Catalog.UpdateRetries,
		}),
		Reviews:     reviews.New(log, storage.Reviews, validate),
		Aggregation: aggregation.New(log, storage.Movies, cfg.Catalog.DefaultCount),
	}
}
