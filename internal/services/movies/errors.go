package movies

import "errors"

var (
	ErrMovieNotFound = errors.New("movie not found")
	ErrEditConflict  = errors.New("unable to update the movie due to an edit conflict, please try again")
	ErrIDMismatch    = errors.New("movie id in the body does not match the path")
)
