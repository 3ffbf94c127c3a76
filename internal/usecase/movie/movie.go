package usecase_movie

import (
	"context"
	"errors"
	"fmt"

	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
)

var (
	ErrResourceNotFound = errors.New("no such movie")
	ErrInvalidInput     = errors.New("invalid input")
	ErrFailedToLoadMeta = errors.New("failed to load meta")
)

const maxPopularLimit = 100

//go:generate mockery --name=Catalog --output=../../../mocks/catalog --filename=Catalog.go
type Catalog interface {
	ByID(ctx context.Context, id model.TitleID) (model.MovieMeta, error)
	// Popular is ordered by rating, best first.
	Popular(ctx context.Context, offset, limit int) ([]model.MovieMeta, error)
	SeededPage(ctx context.Context, seed int64, offset, limit int) ([]model.MovieMeta, error)
	Count(ctx context.Context) (int, error)
}

type Usecase struct {
	catalog Catalog
}

func New(catalog Catalog) *Usecase {
	return &Usecase{
		catalog: catalog,
	}
}

// Popular backs the client's fallback queue when a room queue can't be built.
func (u *Usecase) Popular(ctx context.Context, offset, limit int) ([]model.MovieMeta, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: offset must be >= 0 and limit > 0", ErrInvalidInput)
	}
	if limit > maxPopularLimit {
		limit = maxPopularLimit
	}

	mm, err := u.catalog.Popular(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadMeta, err)
	}
	return mm, nil
}

func (u *Usecase) GetMovieByID(ctx context.Context, id model.TitleID) (model.MovieMeta, error) {
	if id <= 0 {
		return model.MovieMeta{}, fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}

	meta, err := u.catalog.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return model.MovieMeta{}, ErrResourceNotFound
		}
		return model.MovieMeta{}, fmt.Errorf("%w: %w", ErrFailedToLoadMeta, err)
	}

	return meta, nil
}
