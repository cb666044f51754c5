package reviews

import "errors"

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrMovieNotFound  = errors.New("movie not found")
	ErrIDMismatch     = errors.New("mismatched ids: review and movie ids in the body must match the path")
)
