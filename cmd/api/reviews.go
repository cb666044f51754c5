package main

import (
	"net/http"

	"moviecatalog/proj/internal/domain/models"
)

func (app *Application) createReview(w http.ResponseWriter, r *http.Request) {
	movieID, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	var input models.ReviewInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	review, err := app.services.Reviews.Create(r.Context(), movieID, input)
	if err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.Ok(w, r, review)
}

func (app *Application) updateReview(w http.ResponseWriter, r *http.Request) {
	movieID, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	var input models.ReviewInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if _, err := app.services.Reviews.Update(r.Context(), movieID, reviewID, input); err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.NoContent(w)
}

func (app *Application) deleteReview(w http.ResponseWriter, r *http.Request) {
	movieID, ok := app.extractIDParam(w, r, "id")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	if err := app.services.Reviews.Delete(r.Context(), movieID, reviewID); err != nil {
		app.handleServiceError(w, r, err)
		return
	}
	app.Http.NoContent(w)
}
