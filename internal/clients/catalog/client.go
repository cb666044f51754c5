// Package catalog is a REST client for the /movies API.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

type Client struct {
	api *resty.Client
	log *slog.Logger
}

// errorResponse is the envelope the API uses for failures.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Errors map[string]string `json:"errors"`
	} `json:"data"`
}

// New creates a client for the API at baseURL. Transport failures and 5xx
// responses of idempotent requests are retried retriesCount times.
func New(log *slog.Logger, baseURL string, timeout time.Duration, retriesCount int) *Client {
	api := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(retriesCount).
		SetRetryWaitTime(100*time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		SetLogger(restyLogger{log}).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil || r.Request == nil {
				return err != nil
			}
			if r.Request.Method != http.MethodGet {
				return false
			}
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			if r.Header.Get(RequestIDHeader) == "" {
				r.SetHeader(RequestIDHeader, uuid.NewString())
			}
			return nil
		})
	return &Client{api: api, log: log}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.api.R().SetContext(ctx).SetError(&errorResponse{})
}

// check turns a resty outcome into nil or one of the package errors.
func (c *Client) check(op string, resp *resty.Response, err error) error {
	log := c.log.With("op", op)
	if err != nil {
		log.Error("request failed", "errMsg", err.Error())
		return &TransportError{Op: op, Err: err}
	}
	if !resp.IsError() {
		return nil
	}
	msg := http.StatusText(resp.StatusCode())
	var fields map[string]string
	if e, ok := resp.Error().(*errorResponse); ok && e.Message != "" {
		msg = e.Message
		fields = e.Data.Errors
	}
	log.Debug("api error", "status", resp.StatusCode(), "msg", msg, "request_id", resp.Request.Header.Get(RequestIDHeader))
	switch resp.StatusCode() {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w: %s", op, ErrNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%s: %w: %s", op, ErrConflict, msg)
	case http.StatusBadRequest:
		if len(fields) > 0 {
			return &ValidationError{Message: msg, Fields: fields}
		}
		return fmt.Errorf("%s: %w: %s", op, ErrBadRequest, msg)
	default:
		return &StatusError{Code: resp.StatusCode(), Message: msg}
	}
}

func queryParams(q filters.MovieQuery) map[string]string {
	params := make(map[string]string)
	set := func(k, v string) {
		if v != "" {
			params[k] = v
		}
	}
	set("title", q.Title)
	set("genre", q.Genre)
	set("sort", q.Sort)
	set("order", q.Order)
	if q.Page > 0 {
		params["page"] = strconv.Itoa(q.Page)
	}
	if q.PageSize > 0 {
		params["pageSize"] = strconv.Itoa(q.PageSize)
	}
	return params
}

func (c *Client) list(ctx context.Context, op, path string, params map[string]string) ([]models.Movie, error) {
	var movies []models.Movie
	resp, err := c.request(ctx).SetQueryParams(params).SetResult(&movies).Get(path)
	if err := c.check(op, resp, err); err != nil {
		return nil, err
	}
	if movies == nil {
		return nil, &StatusError{Code: resp.StatusCode(), Message: "response body is not a movie list"}
	}
	return movies, nil
}

func (c *Client) ListMovies(ctx context.Context, q filters.MovieQuery) ([]models.Movie, error) {
	return c.list(ctx, "catalog.Client.ListMovies", "/movies", queryParams(q))
}

func (c *Client) Search(ctx context.Context, title, genre string) ([]models.Movie, error) {
	return c.list(ctx, "catalog.Client.Search", "/movies/search", queryParams(filters.MovieQuery{Title: title, Genre: genre}))
}

func (c *Client) TopRated(ctx context.Context, count int) ([]models.Movie, error) {
	return c.list(ctx, "catalog.Client.TopRated", "/movies/top", countParam(count))
}

func (c *Client) Latest(ctx context.Context, count int) ([]models.Movie, error) {
	return c.list(ctx, "catalog.Client.Latest", "/movies/latest", countParam(count))
}

func countParam(count int) map[string]string {
	if count < 1 {
		return nil
	}
	return map[string]string{"count": strconv.Itoa(count)}
}

func (c *Client) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	var movie models.Movie
	resp, err := c.request(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetResult(&movie).
		Get("/movies/{id}")
	if err := c.check("catalog.Client.GetMovie", resp, err); err != nil {
		return nil, err
	}
	return &movie, nil
}

func (c *Client) Random(ctx context.Context) (*models.Movie, error) {
	var movie models.Movie
	resp, err := c.request(ctx).SetResult(&movie).Get("/movies/random")
	if err := c.check("catalog.Client.Random", resp, err); err != nil {
		return nil, err
	}
	return &movie, nil
}

// AverageRating returns ErrNotFound both for an unknown movie and for a movie
// without reviews.
func (c *Client) AverageRating(ctx context.Context, id int64) (float64, error) {
	var avg float64
	resp, err := c.request(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetResult(&avg).
		Get("/movies/{id}/average-rating")
	if err := c.check("catalog.Client.AverageRating", resp, err); err != nil {
		return 0, err
	}
	return avg, nil
}

func (c *Client) CreateMovie(ctx context.Context, in models.MovieInput) (*models.Movie, error) {
	var movie models.Movie
	resp, err := c.request(ctx).SetBody(in).SetResult(&movie).Post("/movies")
	if err := c.check("catalog.Client.CreateMovie", resp, err); err != nil {
		return nil, err
	}
	return &movie, nil
}

// UpdateMovie replaces the scalar fields of movie id. The id in the body is
// set from the argument.
func (c *Client) UpdateMovie(ctx context.Context, id int64, in models.MovieInput) error {
	in.ID = id
	resp, err := c.request(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetBody(in).
		Put("/movies/{id}")
	return c.check("catalog.Client.UpdateMovie", resp, err)
}

func (c *Client) DeleteMovie(ctx context.Context, id int64) error {
	resp, err := c.request(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		Delete("/movies/{id}")
	return c.check("catalog.Client.DeleteMovie", resp, err)
}

func (c *Client) AddReview(ctx context.Context, movieID int64, in models.ReviewInput) (*models.Review, error) {
	var review models.Review
	resp, err := c.request(ctx).
		SetPathParam("id", strconv.FormatInt(movieID, 10)).
		SetBody(in).
		SetResult(&review).
		Post("/movies/{id}/reviews")
	if err := c.check("catalog.Client.AddReview", resp, err); err != nil {
		return nil, err
	}
	return &review, nil
}

func (c *Client) UpdateReview(ctx context.Context, movieID, reviewID int64, in models.ReviewInput) error {
	in.ID, in.MovieID = reviewID, movieID
	resp, err := c.request(ctx).
		SetPathParams(reviewPath(movieID, reviewID)).
		SetBody(in).
		Put("/movies/{id}/reviews/{reviewID}")
	return c.check("catalog.Client.UpdateReview", resp, err)
}

func (c *Client) DeleteReview(ctx context.Context, movieID, reviewID int64) error {
	resp, err := c.request(ctx).
		SetPathParams(reviewPath(movieID, reviewID)).
		Delete("/movies/{id}/reviews/{reviewID}")
	return c.check("catalog.Client.DeleteReview", resp, err)
}

func reviewPath(movieID, reviewID int64) map[string]string {
	return map[string]string{
		"id":       strconv.FormatInt(movieID, 10),
		"reviewID": strconv.FormatInt(reviewID, 10),
	}
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// restyLogger adapts slog to resty's printf style logger.
type restyLogger struct {
	log *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}
