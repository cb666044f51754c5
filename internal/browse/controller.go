// Package browse holds the client side view of the catalog: the accumulated
// page list, its reconciliation after mutations and an async session running
// one task per user action.
package browse

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
)

var (
	ErrLoadInProgress = errors.New("a page load is already in progress")
	// ErrSuperseded is returned for a response that arrived after a newer
	// query or mode switch. The response is discarded.
	ErrSuperseded = errors.New("response superseded by a newer request")
)

type Mode int

const (
	ModePaged Mode = iota
	ModeTopRated
	ModeLatest
)

func (m Mode) String() string {
	switch m {
	case ModeTopRated:
		return "top rated"
	case ModeLatest:
		return "latest"
	default:
		return "paged"
	}
}

// Source is the read side of the catalog API.
type Source interface {
	ListMovies(ctx context.Context, q filters.MovieQuery) ([]models.Movie, error)
	TopRated(ctx context.Context, count int) ([]models.Movie, error)
	Latest(ctx context.Context, count int) ([]models.Movie, error)
	GetMovie(ctx context.Context, id int64) (*models.Movie, error)
}

// State is a snapshot of the controller.
type State struct {
	Movies  []models.Movie
	Page    int // last page appended, 0 before the first non-empty page
	HasMore bool
	Mode    Mode
	Query   filters.MovieQuery
	Loading bool
	Err     error
}

// Controller is the paging state machine. Every query change or mode switch
// starts a new generation, responses from older generations are dropped.
type Controller struct {
	log      *slog.Logger
	src      Source
	pageSize int
	count    int

	mu         sync.Mutex
	state      State
	generation uint64
}

func NewController(log *slog.Logger, src Source, pageSize, count int) *Controller {
	return &Controller{
		log:      log,
		src:      src,
		pageSize: pageSize,
		count:    count,
		state:    State{Movies: []models.Movie{}},
	}
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Movies = make([]models.Movie, len(c.state.Movies))
	copy(s.Movies, c.state.Movies)
	return s
}

// ApplyQuery resets the list and loads page 1 of q. Results of the previous
// query are never merged with the new ones.
func (c *Controller) ApplyQuery(ctx context.Context, q filters.MovieQuery) error {
	const op = "browse.Controller.ApplyQuery"
	log := c.log.With("op", op)
	if q.PageSize < 1 {
		q.PageSize = c.pageSize
	}
	q.Page = 0
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.state = State{
		Movies:  []models.Movie{},
		HasMore: true,
		Mode:    ModePaged,
		Query:   q,
		Loading: true,
	}
	c.mu.Unlock()
	log.Debug("loading first page", "title", q.Title, "genre", q.Genre, "sort", q.Sort, "order", q.Order)
	return c.fetchPage(ctx, gen, 1)
}

// LoadMore requests the page after the last appended one with the same
// parameters. It is a no-op when there is nothing more to load.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Mode != ModePaged || !c.state.HasMore {
		c.mu.Unlock()
		return nil
	}
	if c.state.Loading {
		c.mu.Unlock()
		return ErrLoadInProgress
	}
	c.state.Loading = true
	c.state.Err = nil
	gen := c.generation
	next := c.state.Page + 1
	c.mu.Unlock()
	return c.fetchPage(ctx, gen, next)
}

func (c *Controller) fetchPage(ctx context.Context, gen uint64, page int) error {
	const op = "browse.Controller.fetchPage"
	c.mu.Lock()
	q := c.state.Query
	c.mu.Unlock()
	q.Page = page
	movies, err := c.src.ListMovies(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.log.Debug("dropping stale page", "op", op, "page", page)
		return ErrSuperseded
	}
	c.state.Loading = false
	if err != nil {
		c.state.Err = err
		return err
	}
	if len(movies) == 0 {
		c.state.HasMore = false
		return nil
	}
	c.state.Movies = append(c.state.Movies, movies...)
	c.state.Page = page
	return nil
}

func (c *Controller) ShowTopRated(ctx context.Context) error {
	return c.switchMode(ctx, ModeTopRated, c.src.TopRated)
}

func (c *Controller) ShowLatest(ctx context.Context) error {
	return c.switchMode(ctx, ModeLatest, c.src.Latest)
}

// switchMode replaces the list wholesale with a fixed size aggregation result.
func (c *Controller) switchMode(ctx context.Context, mode Mode, fetch func(context.Context, int) ([]models.Movie, error)) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.state = State{
		Movies:  []models.Movie{},
		Mode:    mode,
		Query:   c.state.Query,
		Loading: true,
	}
	c.mu.Unlock()

	movies, err := fetch(ctx, c.count)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return ErrSuperseded
	}
	c.state.Loading = false
	if err != nil {
		c.state.Err = err
		return err
	}
	c.state.Movies = append([]models.Movie{}, movies...)
	return nil
}

// replace swaps the entry with movie.ID for movie and reports whether there was one.
func (c *Controller) replace(movie models.Movie) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	found := false
	for i := range c.state.Movies {
		if c.state.Movies[i].ID == movie.ID {
			c.state.Movies[i] = movie
			found = true
		}
	}
	return found
}

// remove drops every entry with id and reports whether any existed.
func (c *Controller) remove(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := make([]models.Movie, 0, len(c.state.Movies))
	for _, m := range c.state.Movies {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	removed := len(kept) != len(c.state.Movies)
	c.state.Movies = kept
	return removed
}
