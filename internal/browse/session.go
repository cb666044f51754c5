package browse

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/lib/tasks"
)

// Event reports the outcome of one action.
type Event struct {
	Action string
	Result any
	State  State
	Err    error
}

// Session runs every user action as an independent task on a worker pool.
// Actions are not cancelled by later ones, stale list responses are dropped
// by the Controller.
type Session struct {
	log     *slog.Logger
	ctrl    *Controller
	rec     *Reconciler
	pool    *tasks.BackgroundTasks
	events  chan Event
	timeout time.Duration
}

func NewSession(log *slog.Logger, ctrl *Controller, rec *Reconciler, pool *tasks.BackgroundTasks, timeout time.Duration) *Session {
	return &Session{
		log:     log,
		ctrl:    ctrl,
		rec:     rec,
		pool:    pool,
		events:  make(chan Event, 16),
		timeout: timeout,
	}
}

func (s *Session) Events() <-chan Event {
	return s.events
}

// Do queues fn. Superseded responses produce no event.
func (s *Session) Do(action string, fn func(ctx context.Context) (any, error)) error {
	return s.pool.Add(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		result, err := fn(ctx)
		if errors.Is(err, ErrSuperseded) {
			s.log.Debug("action superseded", "action", action)
			return
		}
		s.events <- Event{Action: action, Result: result, State: s.ctrl.Snapshot(), Err: err}
	})
}

func (s *Session) ApplyQuery(q filters.MovieQuery) error {
	return s.Do("query", func(ctx context.Context) (any, error) {
		return nil, s.ctrl.ApplyQuery(ctx, q)
	})
}

func (s *Session) LoadMore() error {
	return s.Do("more", func(ctx context.Context) (any, error) {
		return nil, s.ctrl.LoadMore(ctx)
	})
}

func (s *Session) ShowTopRated() error {
	return s.Do("top", func(ctx context.Context) (any, error) {
		return nil, s.ctrl.ShowTopRated(ctx)
	})
}

func (s *Session) ShowLatest() error {
	return s.Do("latest", func(ctx context.Context) (any, error) {
		return nil, s.ctrl.ShowLatest(ctx)
	})
}

func (s *Session) Refresh(id int64) error {
	return s.Do("refresh", func(ctx context.Context) (any, error) {
		return s.rec.Refresh(ctx, id)
	})
}

func (s *Session) CreateMovie(in models.MovieInput) error {
	return s.Do("add", func(ctx context.Context) (any, error) {
		return s.rec.CreateMovie(ctx, in)
	})
}

func (s *Session) UpdateMovie(id int64, in models.MovieInput) error {
	return s.Do("edit", func(ctx context.Context) (any, error) {
		return s.rec.UpdateMovie(ctx, id, in)
	})
}

func (s *Session) DeleteMovie(id int64) error {
	return s.Do("delete", func(ctx context.Context) (any, error) {
		return nil, s.rec.DeleteMovie(ctx, id)
	})
}

func (s *Session) AddReview(movieID int64, in models.ReviewInput) error {
	return s.Do("review", func(ctx context.Context) (any, error) {
		return s.rec.AddReview(ctx, movieID, in)
	})
}

func (s *Session) UpdateReview(movieID, reviewID int64, in models.ReviewInput) error {
	return s.Do("edit-review", func(ctx context.Context) (any, error) {
		return s.rec.UpdateReview(ctx, movieID, reviewID, in)
	})
}

func (s *Session) DeleteReview(movieID, reviewID int64) error {
	return s.Do("delete-review", func(ctx context.Context) (any, error) {
		return s.rec.DeleteReview(ctx, movieID, reviewID)
	})
}

// Close waits for queued actions and closes the event channel.
func (s *Session) Close(ctx context.Context) error {
	err := s.pool.Shutdown(ctx)
	if err == nil {
		close(s.events)
	}
	return err
}
