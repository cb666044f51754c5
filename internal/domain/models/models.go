package models

import (
	"moviecatalog/proj/internal/domain/fields"
	"time"
)

type Movie struct {
	ID            int64       `json:"id" db:"id"`                        // Server assigned, immutable
	Title         string      `json:"title" db:"title"`                  // Movie title
	Genre         string      `json:"genre" db:"genre"`                  // Single genre (i.e. Thriller, Drama)
	ReleaseDate   fields.Date `json:"releaseDate" db:"release_date"`     // Release day
	Rating        float64     `json:"rating" db:"rating"`                // Author entered rating, independent of reviews
	ImageURL      string      `json:"imageUrl,omitempty" db:"image_url"` // Poster URL
	Description   string      `json:"description,omitempty" db:"description"`
	AverageRating *float64    `json:"averageRating" db:"average_rating"` // Mean of review ratings, nil when there are none
	Version       int32       `json:"version" db:"version"`              // Incremented on every update
	CreatedAt     time.Time   `json:"-" db:"created_at"`
	Reviews       []Review    `json:"reviews" db:"-"`
}

// SortRating is the value used when ordering by rating: the computed average,
// or 0 for a movie without reviews.
func (m *Movie) SortRating() float64 {
	if m.AverageRating == nil {
		return 0
	}
	return *m.AverageRating
}

// Recalculate refreshes AverageRating from Reviews.
func (m *Movie) Recalculate() {
	m.AverageRating = Average(m.Reviews)
}

type Review struct {
	ID           int64     `json:"id" db:"id"`
	MovieID      int64     `json:"movieId" db:"movie_id"`
	ReviewerName string    `json:"reviewerName" db:"reviewer_name"`
	ReviewText   string    `json:"reviewText" db:"review_text"`
	Rating       int       `json:"rating" db:"rating"`
	CreatedAt    time.Time `json:"-" db:"created_at"`
}

// Average returns the arithmetic mean of the review ratings or nil for an empty set.
func Average(reviews []Review) *float64 {
	if len(reviews) == 0 {
		return nil
	}
	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return &avg
}

// MovieInput holds the mutable scalar fields of a movie.
type MovieInput struct {
	ID          int64       `json:"id,omitempty"`
	Title       string      `json:"title" validate:"required,max=100"`
	Genre       string      `json:"genre" validate:"required,max=50"`
	ReleaseDate fields.Date `json:"releaseDate" validate:"required"`
	Rating      float64     `json:"rating" validate:"gte=0,lte=10"`
	ImageURL    string      `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Description string      `json:"description,omitempty"`
}

type ReviewInput struct {
	ID           int64  `json:"id,omitempty"`
	MovieID      int64  `json:"movieId,omitempty"`
	ReviewerName string `json:"reviewerName" validate:"required,max=50"`
	ReviewText   string `json:"reviewText" validate:"required,max=500"`
	Rating       int    `json:"rating" validate:"gte=0,lte=10"`
}
