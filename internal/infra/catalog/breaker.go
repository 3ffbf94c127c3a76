package infra_catalog_breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/humanbelnik/kinoswap/matchroom/internal/metrics"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	usecase_movie "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/movie"
	gobreaker "github.com/sony/gobreaker/v2"
)

const name = "catalog"

type Config struct {
	// Consecutive failures that open the circuit.
	FailureThreshold uint32
	OpenTimeout      time.Duration
	// Probes let through while half-open.
	MaxRequests uint32
}

// Catalog guards every catalog read with one circuit. While open, reads fail
// fast and queue pages come back degraded instead of hanging on the database.
type Catalog struct {
	next   usecase_movie.Catalog
	cb     *gobreaker.CircuitBreaker[any]
	logger *slog.Logger
}

func New(next usecase_movie.Catalog, cfg Config) *Catalog {
	c := &Catalog{
		next:   next,
		logger: slog.Default().With(slog.String("component", "catalog_breaker")),
	}

	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	metrics.CatalogBreakerState.Set(float64(gobreaker.StateClosed))
	c.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A missing title is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, usecase_movie.ErrResourceNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CatalogBreakerState.Set(float64(to))
			c.logger.Warn("breaker state change",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return c
}

func (c *Catalog) State() gobreaker.State {
	return c.cb.State()
}

func execute[T any](c *Catalog, fn func() (T, error)) (T, error) {
	res, err := c.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

func (c *Catalog) SeededPage(ctx context.Context, seed int64, offset, limit int) ([]model.MovieMeta, error) {
	return execute(c, func() ([]model.MovieMeta, error) {
		return c.next.SeededPage(ctx, seed, offset, limit)
	})
}

func (c *Catalog) Count(ctx context.Context) (int, error) {
	return execute(c, func() (int, error) {
		return c.next.Count(ctx)
	})
}

func (c *Catalog) ByID(ctx context.Context, id model.TitleID) (model.MovieMeta, error) {
	return execute(c, func() (model.MovieMeta, error) {
		return c.next.ByID(ctx, id)
	})
}

func (c *Catalog) Popular(ctx context.Context, offset, limit int) ([]model.MovieMeta, error) {
	return execute(c, func() ([]model.MovieMeta, error) {
		return c.next.Popular(ctx, offset, limit)
	})
}
