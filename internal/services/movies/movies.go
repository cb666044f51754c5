package movies

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/lib/validator"
	"moviecatalog/proj/internal/storage"

	govalidator "github.com/go-playground/validator/v10"
)

type MoviesStorage interface {
	Get(ctx context.Context, id int64) (*models.Movie, error)
	List(ctx context.Context, q filters.MovieQuery) ([]models.Movie, error)
	Insert(ctx context.Context, in models.MovieInput) (*models.Movie, error)
	Update(ctx context.Context, movie *models.Movie) (*models.Movie, error)
	Delete(ctx context.Context, id int64) error
}

type Options struct {
	Defaults filters.Defaults
	// UpdateRetries is how many times an update is retried against a fresh
	// read after an edit conflict before the conflict is returned.
	UpdateRetries int
}

type MovieService struct {
	log      *slog.Logger
	storage  MoviesStorage
	validate *govalidator.Validate
	opts     Options
}

func New(log *slog.Logger, storage MoviesStorage, validate *govalidator.Validate, opts Options) *MovieService {
	return &MovieService{
		log:      log,
		storage:  storage,
		validate: validate,
		opts:     opts,
	}
}

func (s *MovieService) Get(ctx context.Context, id int64) (*models.Movie, error) {
	const op = "movies.MovieService.Get"
	log := s.log.With("op", op, "id", id)
	movie, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("movie not found")
			return nil, ErrMovieNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return movie, nil
}

// List returns one page of the catalog. The query is normalized first, so
// callers may pass raw client input.
func (s *MovieService) List(ctx context.Context, q filters.MovieQuery) ([]models.Movie, error) {
	const op = "movies.MovieService.List"
	q = q.Normalize(s.opts.Defaults)
	log := s.log.With("op", op, "title", q.Title, "genre", q.Genre, "sort", q.Sort, "order", q.Order, "page", q.Page, "page_size", q.PageSize)
	movies, err := s.storage.List(ctx, q)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	log.Debug("movies listed", "count", len(movies))
	return movies, nil
}

// Search returns every movie matching the filters, ordered by title.
func (s *MovieService) Search(ctx context.Context, title, genre string) ([]models.Movie, error) {
	const op = "movies.MovieService.Search"
	log := s.log.With("op", op, "title", title, "genre", genre)
	q := filters.MovieQuery{
		Title:   title,
		Genre:   genre,
		Filters: filters.Filters{Page: 1, PageSize: math.MaxInt32, Sort: filters.SortTitle},
	}.Normalize(filters.Defaults{PageSize: math.MaxInt32})
	movies, err := s.storage.List(ctx, q)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	return movies, nil
}

func (s *MovieService) Create(ctx context.Context, in models.MovieInput) (*models.Movie, error) {
	const op = "movies.MovieService.Create"
	log := s.log.With("op", op, "title", in.Title, "genre", in.Genre)
	if err := validator.Validate(s.validate, &in); err != nil {
		log.Info("invalid movie", "errMsg", err.Error())
		return nil, err
	}
	movie, err := s.storage.Insert(ctx, in)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	log.Info("movie created", "id", movie.ID)
	return movie, nil
}

// Update replaces every mutable scalar field of the movie. Reviews are not
// touched. An edit conflict is retried against a fresh read before it is
// reported as ErrEditConflict.
func (s *MovieService) Update(ctx context.Context, id int64, in models.MovieInput) (*models.Movie, error) {
	const op = "movies.MovieService.Update"
	log := s.log.With("op", op, "id", id)
	if in.ID != id {
		log.Info("id mismatch", "body_id", in.ID)
		return nil, ErrIDMismatch
	}
	if err := validator.Validate(s.validate, &in); err != nil {
		log.Info("invalid movie", "errMsg", err.Error())
		return nil, err
	}
	for attempt := 0; ; attempt++ {
		movie, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		movie.Title = in.Title
		movie.Genre = in.Genre
		movie.ReleaseDate = in.ReleaseDate
		movie.Rating = in.Rating
		movie.ImageURL = in.ImageURL
		movie.Description = in.Description

		updatedMovie, err := s.storage.Update(ctx, movie)
		switch {
		case err == nil:
			log.Info("movie updated", "version", updatedMovie.Version)
			return updatedMovie, nil
		case errors.Is(err, storage.ErrEditConflict):
			if attempt < s.opts.UpdateRetries {
				log.Warn("edit conflict, retrying with a fresh read", "attempt", attempt+1)
				continue
			}
			log.Warn("edit conflict, giving up", "attempts", attempt+1)
			return nil, ErrEditConflict
		case errors.Is(err, storage.ErrNotFound):
			log.Info("movie not found")
			return nil, ErrMovieNotFound
		default:
			log.Error("Error updating movie: " + err.Error())
			return nil, err
		}
	}
}

// Delete removes the movie together with its reviews.
func (s *MovieService) Delete(ctx context.Context, id int64) error {
	const op = "movies.MovieService.Delete"
	log := s.log.With("op", op, "id", id)
	if err := s.storage.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("movie not found")
			return ErrMovieNotFound
		}
		log.Error(err.Error())
		return err
	}
	log.Info("movie deleted")
	return nil
}
