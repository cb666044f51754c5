package models

import (
	"context"
	"errors"
	"fmt"

	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const movieColumns = `id, title, genre, release_date, rating, image_url, description, average_rating, version, created_at`

type MovieModel struct {
	DB      *pgxpool.Pool
	reviews *ReviewModel
}

func (m *MovieModel) Get(ctx context.Context, id int64) (*models.Movie, error) {
	rows, err := m.DB.Query(ctx, `SELECT `+movieColumns+` FROM catalog WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	movie, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if err := m.attachReviews(ctx, []*models.Movie{&movie}); err != nil {
		return nil, err
	}
	return &movie, nil
}

// List returns one page of the filtered and ordered catalog.
func (m *MovieModel) List(ctx context.Context, q filters.MovieQuery) ([]models.Movie, error) {
	where, args := q.Where(1)
	query := fmt.Sprintf(
		`SELECT %s FROM catalog %s %s LIMIT $%d OFFSET $%d`,
		movieColumns, where, q.OrderBy(), len(args)+1, len(args)+2,
	)
	args = append(args, q.Limit(), q.Offset())
	rows, err := m.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	movies, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		return nil, err
	}
	if movies == nil {
		movies = []models.Movie{}
	}
	ptrs := make([]*models.Movie, 0, len(movies))
	for i := range movies {
		ptrs = append(ptrs, &movies[i])
	}
	if err := m.attachReviews(ctx, ptrs); err != nil {
		return nil, err
	}
	return movies, nil
}

// Random picks a movie in a single statement so that no count can go stale
// between choosing an offset and reading the row.
func (m *MovieModel) Random(ctx context.Context) (*models.Movie, error) {
	rows, err := m.DB.Query(ctx, `SELECT `+movieColumns+` FROM catalog ORDER BY random() LIMIT 1`)
	if err != nil {
		return nil, err
	}
	movie, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Movie])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if err := m.attachReviews(ctx, []*models.Movie{&movie}); err != nil {
		return nil, err
	}
	return &movie, nil
}

func (m *MovieModel) Insert(ctx context.Context, in models.MovieInput) (*models.Movie, error) {
	movie := &models.Movie{
		Title:       in.Title,
		Genre:       in.Genre,
		ReleaseDate: in.ReleaseDate,
		Rating:      in.Rating,
		ImageURL:    in.ImageURL,
		Description: in.Description,
		Reviews:     []models.Review{},
	}
	err := m.DB.QueryRow(
		ctx,
		`INSERT INTO movies (title, genre, release_date, rating, image_url, description)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, version, created_at`,
		movie.Title,
		movie.Genre,
		movie.ReleaseDate,
		movie.Rating,
		movie.ImageURL,
		movie.Description,
	).Scan(&movie.ID, &movie.Version, &movie.CreatedAt)
	if err != nil {
		return nil, err
	}
	return movie, nil
}

// Update writes the scalar fields of movie if its version is still current.
// A stale version yields storage.ErrEditConflict.
func (m *MovieModel) Update(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	var version int32
	err := m.DB.QueryRow(
		ctx,
		`UPDATE movies SET version = version + 1, title = $1, genre = $2, release_date = $3,
		rating = $4, image_url = $5, description = $6
		WHERE id = $7 AND version = $8 RETURNING version`,
		movie.Title,
		movie.Genre,
		movie.ReleaseDate,
		movie.Rating,
		movie.ImageURL,
		movie.Description,
		movie.ID,
		movie.Version,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrEditConflict
		}
		return nil, err
	}
	updated := *movie
	updated.Version = version
	return &updated, nil
}

// Delete removes the movie; its reviews go with it through ON DELETE CASCADE.
func (m *MovieModel) Delete(ctx context.Context, id int64) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM movies WHERE id = $1", id)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (m *MovieModel) attachReviews(ctx context.Context, movies []*models.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(movies))
	for _, movie := range movies {
		ids = append(ids, movie.ID)
	}
	byMovie, err := m.reviews.ForMovies(ctx, ids)
	if err != nil {
		return err
	}
	for _, movie := range movies {
		movie.Reviews = byMovie[movie.ID]
		if movie.Reviews == nil {
			movie.Reviews = []models.Review{}
		}
	}
	return nil
}
