package browse

import (
	"context"
	"errors"
	"log/slog"

	"moviecatalog/proj/internal/clients/catalog"
	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
)

// Mutator is the write side of the catalog API.
type Mutator interface {
	CreateMovie(ctx context.Context, in models.MovieInput) (*models.Movie, error)
	UpdateMovie(ctx context.Context, id int64, in models.MovieInput) error
	DeleteMovie(ctx context.Context, id int64) error
	AddReview(ctx context.Context, movieID int64, in models.ReviewInput) (*models.Review, error)
	UpdateReview(ctx context.Context, movieID, reviewID int64, in models.ReviewInput) error
	DeleteReview(ctx context.Context, movieID, reviewID int64) error
}

// Reconciler keeps entries of a Controller consistent with the server after
// a mutation.
type Reconciler struct {
	log  *slog.Logger
	ctrl *Controller
	src  Source
	api  Mutator
	// FullScan locates the movie in the unfiltered first page instead of
	// fetching it by id. A movie missing from that page is looked up by id
	// before it is treated as deleted.
	FullScan bool
	ScanSize int
}

func NewReconciler(log *slog.Logger, ctrl *Controller, src Source, api Mutator) *Reconciler {
	return &Reconciler{log: log, ctrl: ctrl, src: src, api: api, ScanSize: 100}
}

// Refresh returns the current server state of movie id, or nil when it no
// longer exists. The controller entry is replaced or removed accordingly.
// Any other failure leaves the entry untouched.
func (r *Reconciler) Refresh(ctx context.Context, id int64) (*models.Movie, error) {
	const op = "browse.Reconciler.Refresh"
	log := r.log.With("op", op, "movie_id", id)
	movie, err := r.fetch(ctx, id)
	if err != nil {
		log.Error("refresh failed", "errMsg", err.Error())
		return nil, err
	}
	if movie == nil {
		if r.ctrl.remove(id) {
			log.Debug("entry removed")
		}
		return nil, nil
	}
	r.ctrl.replace(*movie)
	return movie, nil
}

func (r *Reconciler) fetch(ctx context.Context, id int64) (*models.Movie, error) {
	if r.FullScan {
		movies, err := r.src.ListMovies(ctx, filters.MovieQuery{
			Filters: filters.Filters{Page: 1, PageSize: r.ScanSize},
		})
		if err != nil {
			return nil, err
		}
		for i := range movies {
			if movies[i].ID == id {
				return &movies[i], nil
			}
		}
	}
	movie, err := r.src.GetMovie(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, nil
	}
	return movie, err
}

func (r *Reconciler) CreateMovie(ctx context.Context, in models.MovieInput) (*models.Movie, error) {
	movie, err := r.api.CreateMovie(ctx, in)
	if err != nil {
		return nil, err
	}
	return r.Refresh(ctx, movie.ID)
}

func (r *Reconciler) UpdateMovie(ctx context.Context, id int64, in models.MovieInput) (*models.Movie, error) {
	if err := r.api.UpdateMovie(ctx, id, in); err != nil {
		return nil, err
	}
	return r.Refresh(ctx, id)
}

func (r *Reconciler) DeleteMovie(ctx context.Context, id int64) error {
	if err := r.api.DeleteMovie(ctx, id); err != nil {
		return err
	}
	_, err := r.Refresh(ctx, id)
	return err
}

func (r *Reconciler) AddReview(ctx context.Context, movieID int64, in models.ReviewInput) (*models.Movie, error) {
	if _, err := r.api.AddReview(ctx, movieID, in); err != nil {
		return nil, err
	}
	return r.Refresh(ctx, movieID)
}

func (r *Reconciler) UpdateReview(ctx context.Context, movieID, reviewID int64, in models.ReviewInput) (*models.Movie, error) {
	if err := r.api.UpdateReview(ctx, movieID, reviewID, in); err != nil {
		return nil, err
	}
	return r.Refresh(ctx, movieID)
}

func (r *Reconciler) DeleteReview(ctx context.Context, movieID, reviewID int64) (*models.Movie, error) {
	if err := r.api.DeleteReview(ctx, movieID, reviewID); err != nil {
		return nil, err
	}
	return r.Refresh(ctx, movieID)
}
