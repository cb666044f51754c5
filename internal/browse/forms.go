package browse

import (
	"moviecatalog/proj/internal/domain/fields"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/lib/validator"

	govalidator "github.com/go-playground/validator/v10"
)

// MovieForm is what a user types in to add or edit a movie.
type MovieForm struct {
	Title       string  `json:"title" validate:"required,max=100"`
	Genre       string  `json:"genre" validate:"required,max=50"`
	ReleaseDate string  `json:"releaseDate" validate:"required,datetime=2006-01-02" errorMsg:"Use the YYYY-MM-DD format"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=10"`
	ImageURL    string  `json:"imageUrl" validate:"omitempty,url"`
	Description string  `json:"description"`
}

// ReviewForm rejects a rating of 0 even though the API accepts it.
type ReviewForm struct {
	ReviewerName string `json:"reviewerName" validate:"required,max=50"`
	ReviewText   string `json:"reviewText" validate:"required,max=500"`
	Rating       int    `json:"rating" validate:"gte=1,lte=10"`
}

// Input validates the form and converts it to the API payload.
func (f MovieForm) Input(v *govalidator.Validate) (models.MovieInput, error) {
	if err := validator.Validate(v, &f); err != nil {
		return models.MovieInput{}, err
	}
	released, err := fields.ParseDate(f.ReleaseDate)
	if err != nil {
		return models.MovieInput{}, &validator.ValidationError{Fields: map[string]string{"releaseDate": err.Error()}}
	}
	return models.MovieInput{
		Title:       f.Title,
		Genre:       f.Genre,
		ReleaseDate: released,
		Rating:      f.Rating,
		ImageURL:    f.ImageURL,
		Description: f.Description,
	}, nil
}

func (f ReviewForm) Input(v *govalidator.Validate) (models.ReviewInput, error) {
	if err := validator.Validate(v, &f); err != nil {
		return models.ReviewInput{}, err
	}
	return models.ReviewInput{
		ReviewerName: f.ReviewerName,
		ReviewText:   f.ReviewText,
		Rating:       f.Rating,
	}, nil
}
