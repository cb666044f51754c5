package reviews

import (
	"context"
	"errors"
	"log/slog"

	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/lib/validator"
	"moviecatalog/proj/internal/storage"

	govalidator "github.com/go-playground/validator/v10"
)

type ReviewStorage interface {
	Insert(ctx context.Context, movieID int64, in models.ReviewInput) (*models.Review, error)
	Update(ctx context.Context, review *models.Review) (*models.Review, error)
	Delete(ctx context.Context, movieID, reviewID int64) error
}

type ReviewService struct {
	log      *slog.Logger
	storage  ReviewStorage
	validate *govalidator.Validate
}

func New(log *slog.Logger, storage ReviewStorage, validate *govalidator.Validate) *ReviewService {
	return &ReviewService{
		log:      log,
		storage:  storage,
		validate: validate,
	}
}

// Create adds a review to movieID. The movie id in the body, if any, is
// ignored in favour of the path.
func (s *ReviewService) Create(ctx context.Context, movieID int64, in models.ReviewInput) (*models.Review, error) {
	const op = "reviews.ReviewService.Create"
	log := s.log.With("op", op, "movie_id", movieID)
	in.MovieID = movieID
	if err := validator.Validate(s.validate, &in); err != nil {
		log.Info("invalid review", "errMsg", err.Error())
		return nil, err
	}
	review, err := s.storage.Insert(ctx, movieID, in)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("movie not found")
			return nil, ErrMovieNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	log.Info("review created", "review_id", review.ID)
	return review, nil
}

// Update rewrites a review. Both ids in the body must match the path and the
// review must belong to movieID.
func (s *ReviewService) Update(ctx context.Context, movieID, reviewID int64, in models.ReviewInput) (*models.Review, error) {
	const op = "reviews.ReviewService.Update"
	log := s.log.With("op", op, "movie_id", movieID, "review_id", reviewID)
	if in.ID != reviewID || in.MovieID != movieID {
		log.Info("id mismatch", "body_review_id", in.ID, "body_movie_id", in.MovieID)
		return nil, ErrIDMismatch
	}
	if err := validator.Validate(s.validate, &in); err != nil {
		log.Info("invalid review", "errMsg", err.Error())
		return nil, err
	}
	review, err := s.storage.Update(ctx, &models.Review{
		ID:           reviewID,
		MovieID:      movieID,
		ReviewerName: in.ReviewerName,
		ReviewText:   in.ReviewText,
		Rating:       in.Rating,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("review not found")
			return nil, ErrReviewNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return review, nil
}

// Delete removes the review only if it exists under movieID.
func (s *ReviewService) Delete(ctx context.Context, movieID, reviewID int64) error {
	const op = "reviews.ReviewService.Delete"
	log := s.log.With("op", op, "movie_id", movieID, "review_id", reviewID)
	if err := s.storage.Delete(ctx, movieID, reviewID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("review not found")
			return ErrReviewNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}
