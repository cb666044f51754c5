package aggregation

import "errors"

var (
	ErrMovieNotFound = errors.New("movie not found")
	ErrNoReviews     = errors.New("movie has no reviews")
	ErrEmptyCatalog  = errors.New("catalog is empty")
)
