package models

import (
	"context"
	"errors"

	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"
	"moviecatalog/proj/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reviewColumns = `id, movie_id, reviewer_name, review_text, rating, created_at`

type ReviewModel struct {
	DB *pgxpool.Pool
}

// Insert attaches a review to movieID. An unknown movie surfaces as
// storage.ErrNotFound through the foreign key.
func (m *ReviewModel) Insert(ctx context.Context, movieID int64, in models.ReviewInput) (*models.Review, error) {
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO reviews (movie_id, reviewer_name, review_text, rating)
		VALUES ($1, $2, $3, $4) RETURNING `+reviewColumns,
		movieID,
		in.ReviewerName,
		in.ReviewText,
		in.Rating,
	)
	review, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Review])
	if err != nil {
		var pgxErr *pgconn.PgError
		if errors.As(err, &pgxErr) && pgxErr.Code == postgres.ErrForeignKeyCode {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

// Update rewrites a review only when both ids match.
func (m *ReviewModel) Update(ctx context.Context, review *models.Review) (*models.Review, error) {
	rows, _ := m.DB.Query(
		ctx,
		`UPDATE reviews SET reviewer_name = $1, review_text = $2, rating = $3
		WHERE id = $4 AND movie_id = $5 RETURNING `+reviewColumns,
		review.ReviewerName,
		review.ReviewText,
		review.Rating,
		review.ID,
		review.MovieID,
	)
	updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Review])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// Delete removes a review only when both ids match, so a review that lives
// under another movie is left untouched.
func (m *ReviewModel) Delete(ctx context.Context, movieID, reviewID int64) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM reviews WHERE id = $1 AND movie_id = $2", reviewID, movieID)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ForMovies loads the reviews of several movies in one round trip, grouped by movie id.
func (m *ReviewModel) ForMovies(ctx context.Context, movieIDs []int64) (map[int64][]models.Review, error) {
	rows, err := m.DB.Query(
		ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE movie_id = ANY($1) ORDER BY id`,
		movieIDs,
	)
	if err != nil {
		return nil, err
	}
	reviews, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Review])
	if err != nil {
		return nil, err
	}
	byMovie := make(map[int64][]models.Review, len(movieIDs))
	for _, r := range reviews {
		byMovie[r.MovieID] = append(byMovie[r.MovieID], r)
	}
	return byMovie, nil
}
