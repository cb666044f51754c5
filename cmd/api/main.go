package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"moviecatalog/proj/internal/config"
	"moviecatalog/proj/internal/lib/logger"
	"moviecatalog/proj/internal/services"
	"moviecatalog/proj/internal/storage/memory"
	"moviecatalog/proj/internal/storage/postgres"
	pgmodels "moviecatalog/proj/internal/storage/postgres/models"
)

const version = "1.0.0"

func main() {
	cfgPath := flag.String("config", "config/local.yml", "path to config file")

	flag.Parse()
	cfg := config.MustLoad(*cfgPath)
	log := logger.SetupLogger(cfg.Debug)
	storage, closeStorage := setupStorage(cfg, log)
	defer closeStorage()
	app := NewApplication(cfg, log, storage)
	if err := app.serve(); err != nil {
		app.log.Error("shutting down the server", "reason", err.Error())
		closeStorage()
		os.Exit(1)
	}
}

func setupStorage(cfg *config.Config, log *slog.Logger) (services.Storage, func()) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		st := memory.New()
		return services.Storage{Movies: st.Movie, Reviews: st.Review}, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DB.ConnectTimeout)
	defer cancel()
	db, err := postgres.New(ctx, cfg.DB.Dsn, cfg.DB.MaxConns, cfg.DB.MaxConnIdleTime)
	if err != nil {
		panic(err)
	}
	log.Info("database connection established")
	if cfg.Storage.Migrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			panic(err)
		}
		log.Info("database schema is up to date")
	}
	m := pgmodels.New(db)
	return services.Storage{Movies: m.Movie, Reviews: m.Review}, db.Close
}
