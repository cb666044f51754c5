package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecoverer(t *testing.T) {
	app := NewTestApplication(t)
	cases := []struct {
		name  string
		panic any
	}{
		{"error value", assert.AnError},
		{"string value", "boom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tc.panic)
			})
			assert.NotPanics(t, func() {
				app.Recoverer(next).ServeHTTP(recorder, request)
			})
			assert.Equal(t, http.StatusInternalServerError, recorder.Code)
			assert.Equal(t, "close", recorder.Header().Get("Connection"))
		})
	}
}

func TestRateLimiter(t *testing.T) {
	app := NewTestApplication(t)
	app.cfg.Limiter.Enabled = true
	app.cfg.Limiter.Rps = 1
	app.cfg.Limiter.Burst = 2
	handler := app.RateLimiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	do := func(addr string) int {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.RemoteAddr = addr
		handler.ServeHTTP(recorder, request)
		return recorder.Code
	}
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1235"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1236"))
	// buckets are per ip
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1234"))
}

func TestRateLimiterCleanupStopsOnClose(t *testing.T) {
	app := NewTestApplication(t)
	app.cfg.Limiter.Enabled = true
	for i := 0; i < 3; i++ {
		app.RateLimiter(http.NotFoundHandler())
	}
	closed := make(chan struct{})
	go func() {
		app.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("rate limiter cleanup goroutines are still running")
	}
	// a second Close is a no-op
	app.Close()
}

func TestRateLimiterDisabled(t *testing.T) {
	app := NewTestApplication(t)
	handler := app.RateLimiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for i := 0; i < 50; i++ {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, recorder.Code)
	}
}
