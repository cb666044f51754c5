package models

import "moviecatalog/proj/internal/storage/postgres"

type Models struct {
	Movie  *MovieModel
	Review *ReviewModel
}

func New(db *postgres.PostgresDB) *Models {
	reviews := &ReviewModel{db.Conn}
	return &Models{
		Movie:  &MovieModel{DB: db.Conn, reviews: reviews},
		Review: reviews,
	}
}
