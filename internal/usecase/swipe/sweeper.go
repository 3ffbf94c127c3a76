package usecase_swipe

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	usecase_room "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/room"
)

const (
	ReasonInactivity = "inactivity"
	ReasonGrace      = "grace"
	ReasonAbandoned  = "abandoned"
)

// RoomFreer removes a room and gives its code back.
type RoomFreer interface {
	Free(ctx context.Context, code model.RoomCode) error
}

type SweeperConfig struct {
	Interval          time.Duration
	InactivityTimeout time.Duration
	GracePeriod       time.Duration
	Retention         time.Duration
}

// Sweeper expires idle and abandoned rooms and evicts terminal ones.
type Sweeper struct {
	usecase *Usecase
	freer   RoomFreer
	cfg     SweeperConfig
	logger  *slog.Logger
}

func NewSweeper(usecase *Usecase, freer RoomFreer, cfg SweeperConfig) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	return &Sweeper{
		usecase: usecase,
		freer:   freer,
		cfg:     cfg,
		logger:  slog.Default(),
	}
}

func (s *Sweeper) String() string {
	return "room-sweeper"
}

// Serve runs until ctx is done.
func (s *Sweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			expired, removed := s.Sweep(ctx)
			if expired > 0 || removed > 0 {
				s.logger.Info("sweep done",
					slog.Int("expired", expired),
					slog.Int("removed", removed))
			}
		}
	}
}

// Sweep makes one pass over every room.
func (s *Sweeper) Sweep(ctx context.Context) (expired int, removed int) {
	for _, code := range s.usecase.registry.Codes() {
		var (
			reason string
			remove bool
		)
		err := s.usecase.registry.With(code, func(room *model.Room) error {
			now := s.usecase.registry.Now()
			if room.Status.Terminal() {
				remove = now.Sub(room.ClosedAt) >= s.cfg.Retention
				return nil
			}
			if r := s.expiryReason(room, now); r != "" && s.usecase.expireLocked(room) {
				reason = r
			}
			return nil
		})
		if err != nil {
			if !errors.Is(err, usecase_room.ErrResourceNotFound) && !errors.Is(err, usecase_room.ErrExpired) {
				s.logger.Error("sweep failed", slog.String("error", err.Error()))
			}
			continue
		}

		if reason != "" {
			expired++
			s.usecase.afterExpire(ctx, code, reason)
		}
		if remove {
			if err := s.freer.Free(ctx, code); err != nil && !errors.Is(err, usecase_room.ErrResourceNotFound) {
				s.logger.Error("failed to free room", slog.String("error", err.Error()))
				continue
			}
			removed++
		}
	}
	return expired, removed
}

func (s *Sweeper) expiryReason(room *model.Room, now time.Time) string {
	if room.AllLeft() {
		return ReasonAbandoned
	}
	if s.cfg.InactivityTimeout > 0 && now.Sub(room.LastActivity) >= s.cfg.InactivityTimeout {
		return ReasonInactivity
	}
	for _, seat := range room.Seats {
		if seat.Connected || seat.DisconnectedAt.IsZero() {
			continue
		}
		if now.Sub(seat.DisconnectedAt) >= s.cfg.GracePeriod {
			return ReasonGrace
		}
	}
	return ""
}
