package infra_postgres_movie

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	usecase_movie "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/movie"
	"github.com/jmoiron/sqlx"
)

const columns = `id, title, year, rating, runtime, genres, overview, poster_link`

// Repository reads the movies table the catalog service keeps filled.
type Repository struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// SeededPage orders by md5(id || seed): stable for a seed, unrelated across seeds.
func (r *Repository) SeededPage(ctx context.Context, seed int64, offset, limit int) ([]model.MovieMeta, error) {
	query := `
		SELECT ` + columns + `
		FROM movies
		ORDER BY md5(id::text || $1::text), id
		OFFSET $2
		LIMIT $3
	`

	var moviesDB []MovieDB
	if err := r.db.SelectContext(ctx, &moviesDB, query, seed, offset, limit); err != nil {
		return nil, fmt.Errorf("failed to query seeded page: %w", err)
	}

	return ToDomain(moviesDB), nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM movies`); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return n, nil
}

func (r *Repository) ByID(ctx context.Context, id model.TitleID) (model.MovieMeta, error) {
	query := `
		SELECT ` + columns + `
		FROM movies
		WHERE id = $1
	`

	var movieDB MovieDB
	err := r.db.GetContext(ctx, &movieDB, query, int64(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.MovieMeta{}, usecase_movie.ErrResourceNotFound
		}
		return model.MovieMeta{}, fmt.Errorf("failed to load movie by id: %w", err)
	}

	return movieDB.ToDomain(), nil
}

func (r *Repository) Popular(ctx context.Context, offset, limit int) ([]model.MovieMeta, error) {
	query := `
		SELECT ` + columns + `
		FROM movies
		ORDER BY rating DESC, id
		OFFSET $1
		LIMIT $2
	`

	var moviesDB []MovieDB
	if err := r.db.SelectContext(ctx, &moviesDB, query, offset, limit); err != nil {
		return nil, fmt.Errorf("failed to query popular: %w", err)
	}

	return ToDomain(moviesDB), nil
}
