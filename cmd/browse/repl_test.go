package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"moviecatalog/proj/internal/browse"
	"moviecatalog/proj/internal/clients/catalog"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/lib/logger"
	"moviecatalog/proj/internal/lib/tasks"
	"moviecatalog/proj/internal/lib/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	args := parseArgs([]string{"name=Bong", "Joon", "rating=9", "text=a", "sharp", "satire"})
	assert.Equal(t, map[string]string{
		"name":   "Bong Joon",
		"rating": "9",
		"text":   "a sharp satire",
	}, args)
	assert.Empty(t, parseArgs([]string{"stray", "words"}))
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	for _, bad := range []string{"0", "-1", "x"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestInputs(t *testing.T) {
	r := &repl{validate: validator.New()}
	in, err := r.reviewInput([]string{"name=critic", "rating=10", "text=great"})
	require.NoError(t, err)
	assert.Equal(t, 10, in.Rating)

	_, err = r.reviewInput([]string{"name=critic", "rating=0", "text=great"})
	assert.Error(t, err)

	movie, err := r.movieInput([]string{"title=The", "Host", "genre=Horror", "date=2006-07-27", "rating=7.5"})
	require.NoError(t, err)
	assert.Equal(t, "The Host", movie.Title)
	assert.Equal(t, 7.5, movie.Rating)
}

func TestExecRejectsBadInputLocally(t *testing.T) {
	var out bytes.Buffer
	r := &repl{validate: validator.New(), out: &out}
	assert.True(t, r.exec("review 1 name=a rating=11 text=b"))
	assert.Contains(t, out.String(), "rating")
	out.Reset()
	assert.True(t, r.exec("delete abc"))
	assert.Contains(t, out.String(), "invalid id")
	out.Reset()
	assert.True(t, r.exec("frobnicate"))
	assert.Contains(t, out.String(), "unknown command")
	assert.False(t, r.exec("quit"))
}

func TestSearchCommand(t *testing.T) {
	queries := make(chan url.Values, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /movies/search", func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]models.Movie{{ID: 1, Title: "Parasite", Genre: "Thriller"}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	log := logger.Discard()
	client := catalog.New(log, srv.URL, time.Second, 0)
	ctrl := browse.NewController(log, client, 10, 5)
	pool := tasks.New(log, 1, 4)
	pool.Run()
	session := browse.NewSession(log, ctrl, browse.NewReconciler(log, ctrl, client, client), pool, time.Second)
	var out bytes.Buffer
	r := &repl{session: session, client: client, validate: validator.New(), out: &out}

	assert.True(t, r.exec("search"))
	assert.Contains(t, out.String(), "search needs")

	require.True(t, r.exec("search title=para genre=Thriller"))
	ev := <-session.Events()
	require.NoError(t, ev.Err)
	assert.Equal(t, "search", ev.Action)
	movies, ok := ev.Result.([]models.Movie)
	require.True(t, ok)
	require.Len(t, movies, 1)
	assert.Equal(t, "Parasite", movies[0].Title)
	q := <-queries
	assert.Equal(t, "para", q.Get("title"))
	assert.Equal(t, "Thriller", q.Get("genre"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, session.Close(ctx))
}
