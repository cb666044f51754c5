package main

import (
	"log/slog"
	"sync"

	"moviecatalog/proj/internal/config"
	"moviecatalog/proj/internal/services"

	"github.com/gorilla/schema"
)

type Application struct {
	cfg      *config.Config
	log      *slog.Logger
	Http     *Http
	services *services.Services
	schema   *schema.Decoder

	// stop ends the goroutines started by middlewares, wg tracks them.
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewApplication(cfg *config.Config, log *slog.Logger, storage services.Storage) *Application {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	app := &Application{
		cfg:      cfg,
		log:      log,
		services: services.New(log, cfg, storage),
		schema:   decoder,
		stop:     make(chan struct{}),
		Http: &Http{
			log: log,
			cfg: cfg,
		},
	}
	return app
}

// Close stops the background goroutines and waits for them to exit.
func (app *Application) Close() {
	app.stopOnce.Do(func() { close(app.stop) })
	app.wg.Wait()
}
