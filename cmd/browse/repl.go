package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"moviecatalog/proj/internal/browse"
	"moviecatalog/proj/internal/clients/catalog"
	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"

	"github.com/fatih/color"
	govalidator "github.com/go-playground/validator/v10"
)

const help = `commands:
  list [title=..] [genre=..] [sort=title|rating|releasedate] [order=asc|desc]
  search title=.. [genre=..]   every match, ordered by title
  more                      load the next page
  top | latest              switch to an aggregation view
  show ID                   movie details with reviews
  avg ID                    average review rating
  random                    pick a random movie
  add title=.. genre=.. date=YYYY-MM-DD [rating=..] [image=..] [desc=..]
  edit ID title=.. genre=.. date=YYYY-MM-DD [rating=..] [image=..] [desc=..]
  delete ID
  review ID name=.. rating=1-10 text=..
  edit-review ID REVIEW_ID name=.. rating=1-10 text=..
  delete-review ID REVIEW_ID
  quit`

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	dimColor   = color.New(color.FgHiBlack)
	errColor   = color.New(color.FgRed)
	okColor    = color.New(color.FgGreen)
)

type repl struct {
	session  *browse.Session
	client   *catalog.Client
	validate *govalidator.Validate
	out      io.Writer
	query    filters.MovieQuery
	done     chan struct{}
}

func (r *repl) printEvents() {
	defer close(r.done)
	for ev := range r.session.Events() {
		if ev.Err != nil {
			r.printErr(ev.Action, ev.Err)
			continue
		}
		switch res := ev.Result.(type) {
		case *models.Movie:
			if res == nil {
				okColor.Fprintf(r.out, "%s: movie no longer exists\n", ev.Action)
			} else {
				r.printMovie(res)
			}
		case []models.Movie:
			titleColor.Fprintf(r.out, "%s: %d movies\n", ev.Action, len(res))
			for _, m := range res {
				r.printRow(&m)
			}
		case float64:
			okColor.Fprintf(r.out, "average rating: %.2f\n", res)
		default:
			r.printState(ev.State)
		}
	}
}

func (r *repl) printErr(action string, err error) {
	var verr *catalog.ValidationError
	var terr *catalog.TransportError
	switch {
	case errors.As(err, &verr):
		errColor.Fprintf(r.out, "%s: %s\n", action, verr.Message)
		for field, msg := range verr.Fields {
			errColor.Fprintf(r.out, "  %s: %s\n", field, msg)
		}
	case errors.As(err, &terr):
		errColor.Fprintf(r.out, "%s: api unreachable: %s\n", action, terr.Err)
	case errors.Is(err, browse.ErrLoadInProgress):
		dimColor.Fprintln(r.out, "still loading")
	default:
		errColor.Fprintf(r.out, "%s: %s\n", action, err)
	}
}

func (r *repl) printState(s browse.State) {
	titleColor.Fprintf(r.out, "%s view, %d movies", s.Mode, len(s.Movies))
	if s.Mode == browse.ModePaged {
		dimColor.Fprintf(r.out, " (page %d, more: %v)", s.Page, s.HasMore)
	}
	fmt.Fprintln(r.out)
	for _, m := range s.Movies {
		r.printRow(&m)
	}
}

func (r *repl) printRow(m *models.Movie) {
	avg := "n/a"
	if m.AverageRating != nil {
		avg = strconv.FormatFloat(*m.AverageRating, 'f', 2, 64)
	}
	fmt.Fprintf(r.out, "%5d  %-40s %-12s %s  rating %.1f  reviews %s\n",
		m.ID, m.Title, m.Genre, m.ReleaseDate, m.Rating, avg)
}

func (r *repl) printMovie(m *models.Movie) {
	titleColor.Fprintf(r.out, "%s ", m.Title)
	dimColor.Fprintf(r.out, "#%d v%d\n", m.ID, m.Version)
	r.printRow(m)
	if m.Description != "" {
		fmt.Fprintln(r.out, m.Description)
	}
	for _, rv := range m.Reviews {
		fmt.Fprintf(r.out, "  [%d] %s (%d/10): %s\n", rv.ID, rv.ReviewerName, rv.Rating, rv.ReviewText)
	}
}

// parseArgs splits "k=v" words. A value runs until the next word with '='.
func parseArgs(words []string) map[string]string {
	args := make(map[string]string)
	var key string
	for _, w := range words {
		if k, v, ok := strings.Cut(w, "="); ok {
			key = k
			args[key] = v
			continue
		}
		if key != "" {
			args[key] += " " + w
		}
	}
	return args
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// exec runs one command line and reports whether to continue.
func (r *repl) exec(line string) bool {
	words := strings.Fields(line)
	if len(words) == 0 {
		return true
	}
	cmd, rest := words[0], words[1:]
	var err error
	switch cmd {
	case "quit", "exit":
		return false
	case "help":
		fmt.Fprintln(r.out, help)
	case "list":
		args := parseArgs(rest)
		r.query = filters.MovieQuery{
			Title:   args["title"],
			Genre:   args["genre"],
			Filters: filters.Filters{Sort: args["sort"], Order: args["order"]},
		}
		err = r.session.ApplyQuery(r.query)
	case "search":
		args := parseArgs(rest)
		if strings.TrimSpace(args["title"]) == "" && strings.TrimSpace(args["genre"]) == "" {
			err = errors.New("search needs title=.. or genre=..")
			break
		}
		err = r.session.Do("search", func(ctx context.Context) (any, error) {
			return r.client.Search(ctx, args["title"], args["genre"])
		})
	case "more":
		err = r.session.LoadMore()
	case "top":
		err = r.session.ShowTopRated()
	case "latest":
		err = r.session.ShowLatest()
	case "show":
		err = r.withID(rest, 1, func(ids []int64) error { return r.session.Refresh(ids[0]) })
	case "avg":
		err = r.withID(rest, 1, func(ids []int64) error {
			return r.session.Do("avg", func(ctx context.Context) (any, error) {
				return r.client.AverageRating(ctx, ids[0])
			})
		})
	case "random":
		err = r.session.Do("random", func(ctx context.Context) (any, error) {
			return r.client.Random(ctx)
		})
	case "add":
		var in models.MovieInput
		if in, err = r.movieInput(rest); err == nil {
			err = r.session.CreateMovie(in)
		}
	case "edit":
		err = r.withID(rest, 1, func(ids []int64) error {
			in, err := r.movieInput(rest[1:])
			if err != nil {
				return err
			}
			return r.session.UpdateMovie(ids[0], in)
		})
	case "delete":
		err = r.withID(rest, 1, func(ids []int64) error { return r.session.DeleteMovie(ids[0]) })
	case "review":
		err = r.withID(rest, 1, func(ids []int64) error {
			in, err := r.reviewInput(rest[1:])
			if err != nil {
				return err
			}
			return r.session.AddReview(ids[0], in)
		})
	case "edit-review":
		err = r.withID(rest, 2, func(ids []int64) error {
			in, err := r.reviewInput(rest[2:])
			if err != nil {
				return err
			}
			return r.session.UpdateReview(ids[0], ids[1], in)
		})
	case "delete-review":
		err = r.withID(rest, 2, func(ids []int64) error { return r.session.DeleteReview(ids[0], ids[1]) })
	default:
		err = fmt.Errorf("unknown command %q, try help", cmd)
	}
	if err != nil {
		r.printErr(cmd, err)
	}
	return true
}

func (r *repl) withID(words []string, n int, fn func([]int64) error) error {
	if len(words) < n {
		return fmt.Errorf("expected %d id(s)", n)
	}
	ids := make([]int64, n)
	for i := 0; i < n; i++ {
		id, err := parseID(words[i])
		if err != nil {
			return err
		}
		ids[i] = id
	}
	return fn(ids)
}

func (r *repl) movieInput(words []string) (models.MovieInput, error) {
	args := parseArgs(words)
	form := browse.MovieForm{
		Title:       args["title"],
		Genre:       args["genre"],
		ReleaseDate: args["date"],
		ImageURL:    args["image"],
		Description: args["desc"],
	}
	if v, ok := args["rating"]; ok {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return models.MovieInput{}, fmt.Errorf("invalid rating %q", v)
		}
		form.Rating = rating
	}
	return form.Input(r.validate)
}

func (r *repl) reviewInput(words []string) (models.ReviewInput, error) {
	args := parseArgs(words)
	rating, err := strconv.Atoi(args["rating"])
	if err != nil {
		return models.ReviewInput{}, fmt.Errorf("invalid rating %q", args["rating"])
	}
	form := browse.ReviewForm{
		ReviewerName: args["name"],
		ReviewText:   args["text"],
		Rating:       rating,
	}
	return form.Input(r.validate)
}
