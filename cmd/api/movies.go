package main

import (
	"fmt"
	"net/http"

	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
)

type listMoviesQuery struct {
	Title    string `schema:"title"`
	Genre    string `schema:"genre"`
	Sort     string `schema:"sort"`
	Order    string `schema:"order"`
	Page     int    `schema:"page"`
	PageSize int    `schema:"pageSize"`
}

type searchQuery struct {
	Title string `schema:"title"`
	Genre string `schema:"genre"`
}

type countQuery struct {
	Count int `schema:"count"`
}

func (app *Application) getMovies(w http.ResponseWriter, r *http.Request) {
	var params listMoviesQuery
	if !app.readQuery(w, r, &params) {
		return
	}
	movies, err := app.services.Movies.List(r.Context(), filters.MovieQuery{
		Title: params.Title,
		Genre: params.Genre,
		Filters: filters.Filters{
			Page:     params.Page,
			PageSize: params.PageSize,
			Sort:     params.Sort,
			Order:    params.Order,
		},
	})
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, movies)
}

func (app *Application) getMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	movie, err := app.services.Movies.Get(r.Context(), id)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, movie)
}

func (app *Application) searchMovies(w http.ResponseWriter, r *http.Request) {
	var params searchQuery
	if !app.readQuery(w, r, &params) {
		return
	}
	movies, err := app.services.Movies.Search(r.Context(), params.Title, params.Genre)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, movies)
}

func (app *Application) getAverageRating(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	avg, err := app.services.Aggregation.AverageRating(r.Context(), id)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, avg)
}

func (app *Application) getTopMovies(w http.ResponseWriter, r *http.Request) {
	var params countQuery
	if !app.readQuery(w, r, &params) {
		return
	}
	movies, err := app.services.Aggregation.TopRated(r.Context(), params.Count)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, movies)
}

func (app *Application) getLatestMovies(w http.ResponseWriter, r *http.Request) {
	var params countQuery
	if !app.readQuery(w, r, &params) {
		return
	}
	movies, err := app.services.Aggregation.Latest(r.Context(), params.Count)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, movies)
}

func (app *Application) getRandomMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := app.services.Aggregation.Random(r.Context())
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, movie)
}

func (app *Application) createMovie(w http.ResponseWriter, r *http.Request) {
	var input models.MovieInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	movie, err := app.services.Movies.Create(r.Context(), input)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Created(w, r, movie, fmt.Sprintf("/movies/%d", movie.ID))
}

func (app *Application) updateMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	var input models.MovieInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if _, err := app.services.Movies.Update(r.Context(), id, input); err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.NoContent(w)
}

func (app *Application) deleteMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := app.services.Movies.Delete(r.Context(), id); err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.NoContent(w)
}
