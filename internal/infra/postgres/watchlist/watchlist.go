package infra_postgres_watchlist

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	infra_postgres_movie "github.com/humanbelnik/kinoswap/matchroom/internal/infra/postgres/movie"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	"github.com/jmoiron/sqlx"
)

const (
	statusWantToWatch = "want_to_watch"
	statusLiked       = "liked"
)

// Repository works over user_titles(user_id, movie_id, status, added_at),
// unique on (user_id, movie_id, status).
type Repository struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// WantToWatch returns newest entries first. limit <= 0 means all of them.
func (r *Repository) WantToWatch(ctx context.Context, userID uuid.UUID, limit int) ([]model.MovieMeta, error) {
	query := `
		SELECT m.id, m.title, m.year, m.rating, m.runtime, m.genres, m.overview, m.poster_link
		FROM user_titles ut
		JOIN movies m ON m.id = ut.movie_id
		WHERE ut.user_id = $1 AND ut.status = $2
		ORDER BY ut.added_at DESC, m.id
		LIMIT $3
	`

	// LIMIT NULL is no limit in postgres.
	var lim sql.NullInt64
	if limit > 0 {
		lim = sql.NullInt64{Int64: int64(limit), Valid: true}
	}

	var moviesDB []infra_postgres_movie.MovieDB
	if err := r.db.SelectContext(ctx, &moviesDB, query, userID, statusWantToWatch, lim); err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}

	return infra_postgres_movie.ToDomain(moviesDB), nil
}

// AddLiked is idempotent.
func (r *Repository) AddLiked(ctx context.Context, userID uuid.UUID, id model.TitleID) error {
	query := `
		INSERT INTO user_titles (user_id, movie_id, status, added_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, movie_id, status) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, userID, int64(id), statusLiked); err != nil {
		return fmt.Errorf("failed to store like: %w", err)
	}
	return nil
}
