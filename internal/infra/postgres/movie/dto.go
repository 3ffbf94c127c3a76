package infra_postgres_movie

import (
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	"github.com/lib/pq"
)

type MovieDB struct {
	ID         int64          `db:"id"`
	PosterLink string         `db:"poster_link"`
	Title      string         `db:"title"`
	Genres     pq.StringArray `db:"genres"`
	Year       int            `db:"year"`
	Rating     float64        `db:"rating"`
	Runtime    int            `db:"runtime"`
	Overview   string         `db:"overview"`
}

func (m *MovieDB) ToDomain() model.MovieMeta {
	return model.MovieMeta{
		ID:         model.TitleID(m.ID),
		PosterLink: m.PosterLink,
		Title:      m.Title,
		Genres:     []string(m.Genres),
		Year:       m.Year,
		Rating:     m.Rating,
		Runtime:    m.Runtime,
		Overview:   m.Overview,
	}
}

func ToDomain(moviesDB []MovieDB) []model.MovieMeta {
	movies := make([]model.MovieMeta, len(moviesDB))
	for i := range moviesDB {
		movies[i] = moviesDB[i].ToDomain()
	}
	return movies
}
