package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (app *Application) routes() http.Handler {
	router := chi.NewRouter()
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.Http.NotFound(w, r, "Page not found")
	})
	router.MethodNotAllowed(app.Http.MethodNotAllowed)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(app.Recoverer)
	router.Use(app.RateLimiter)
	router.Get("/healthcheck", app.healthcheck)
	router.Route("/movies", func(r chi.Router) {
		r.Get("/", app.getMovies)
		r.Post("/", app.createMovie)
		r.Get("/search", app.searchMovies)
		r.Get("/top", app.getTopMovies)
		r.Get("/latest", app.getLatestMovies)
		r.Get("/random", app.getRandomMovie)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.getMovie)
			r.Put("/", app.updateMovie)
			r.Delete("/", app.deleteMovie)
			r.Get("/average-rating", app.getAverageRating)
			r.Post("/reviews", app.createReview)
			r.Put("/reviews/{reviewID}", app.updateReview)
			r.Delete("/reviews/{reviewID}", app.deleteReview)
		})
	})
	return router
}
