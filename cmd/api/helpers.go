package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"moviecatalog/proj/internal/lib/validator"
	"moviecatalog/proj/internal/services/aggregation"
	"moviecatalog/proj/internal/services/movies"
	"moviecatalog/proj/internal/services/reviews"

	"github.com/go-chi/chi/v5"
)

func (app *Application) extractIDParam(w http.ResponseWriter, r *http.Request, name string) (id int64, extracted bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		app.Http.BadRequest(w, r, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	// ids are assigned from 1, anything lower cannot exist
	if id < 1 {
		app.Http.NotFound(w, r, "the requested resource could not be found")
		return 0, false
	}
	return id, true
}

// readQuery decodes the URL query into dst using the schema struct tags.
func (app *Application) readQuery(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := app.schema.Decode(dst, r.URL.Query()); err != nil {
		app.Http.BadRequest(w, r, "invalid query parameters: "+err.Error())
		return false
	}
	return true
}

func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	src := http.MaxBytesReader(w, r.Body, int64(maxBytes))
	defer io.Copy(io.Discard, src)
	dec := json.NewDecoder(src)
	err := dec.Decode(dst)
	if err != nil {
		return handleJsonErr(err)
	}
	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func handleJsonErr(err error) error {
	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var invalidUnmarshalError *json.InvalidUnmarshalError
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxError):
		return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)

	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("body contains badly-formed JSON")

	case errors.As(err, &unmarshalTypeError):
		if unmarshalTypeError.Field != "" {
			return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
		}
		return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)

	case errors.Is(err, io.EOF):
		return errors.New("body must not be empty")

	case errors.As(err, &maxBytesError):
		return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)

	case errors.As(err, &invalidUnmarshalError):
		panic(err)
	default:
		return err
	}
}

// handleServiceError maps the service error taxonomy onto HTTP statuses.
func (app *Application) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *validator.ValidationError
	switch {
	case errors.As(err, &validationErr):
		app.Http.ValidationFailed(w, r, validationErr.Fields)
	case errors.Is(err, movies.ErrIDMismatch), errors.Is(err, reviews.ErrIDMismatch):
		app.Http.BadRequest(w, r, err.Error())
	case errors.Is(err, movies.ErrMovieNotFound),
		errors.Is(err, reviews.ErrMovieNotFound),
		errors.Is(err, reviews.ErrReviewNotFound),
		errors.Is(err, aggregation.ErrMovieNotFound),
		errors.Is(err, aggregation.ErrNoReviews),
		errors.Is(err, aggregation.ErrEmptyCatalog):
		app.Http.NotFound(w, r, err.Error())
	case errors.Is(err, movies.ErrEditConflict):
		app.Http.Conflict(w, r, err.Error())
	default:
		app.Http.ServerError(w, r, err, "")
	}
}
