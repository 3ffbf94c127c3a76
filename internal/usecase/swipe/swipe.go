package usecase_swipe

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/kinoswap/matchroom/internal/metrics"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	"github.com/humanbelnik/kinoswap/matchroom/internal/protocol"
	"github.com/humanbelnik/kinoswap/matchroom/internal/service/match_detector"
	usecase_room "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/room"
)

type Registry interface {
	With(code model.RoomCode, fn func(room *model.Room) error) error
	Codes() []model.RoomCode
	Now() time.Time
}

// Notifier delivers events to live connections. Calls happen under the room
// lock, so implementations must not block.
type Notifier interface {
	Send(code model.RoomCode, slot model.Slot, event protocol.Event)
	Broadcast(code model.RoomCode, event protocol.Event)
}

type TitleResolver interface {
	ByID(ctx context.Context, id model.TitleID) (model.MovieMeta, error)
}

//go:generate mockery --name=Watchlist --output=../../../mocks/repository --filename=Watchlist.go
type Watchlist interface {
	WantToWatch(ctx context.Context, userID uuid.UUID, limit int) ([]model.MovieMeta, error)
	AddLiked(ctx context.Context, userID uuid.UUID, id model.TitleID) error
}

//go:generate mockery --name=EventPublisher --structname=Publisher --output=../../../mocks/events --filename=Publisher.go
type EventPublisher interface {
	PublishMatch(ctx context.Context, event model.MatchEvent) error
	PublishExpired(ctx context.Context, code model.RoomCode, reason string) error
}

type Usecase struct {
	registry  Registry
	notifier  Notifier
	titles    TitleResolver
	watchlist Watchlist
	publisher EventPublisher
	logger    *slog.Logger
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func New(
	registry Registry,
	notifier Notifier,
	titles TitleResolver,
	watchlist Watchlist,
	publisher EventPublisher,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		registry:  registry,
		notifier:  notifier,
		titles:    titles,
		watchlist: watchlist,
		publisher: publisher,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// seatOf returns the seat only if identity owns it.
func seatOf(room *model.Room, slot model.Slot, identity model.Identity) (*model.Seat, error) {
	seat, ok := room.Seat(slot)
	if !ok || !seat.Identity.Same(identity) {
		return nil, usecase_room.ErrForbidden
	}
	return seat, nil
}

// Authorize checks that identity holds slot in the room without touching state.
func (u *Usecase) Authorize(code model.RoomCode, slot model.Slot, identity model.Identity) error {
	return u.registry.With(code, func(room *model.Room) error {
		_, err := seatOf(room, slot, identity)
		return err
	})
}

// Join marks slot live and tells the partner. Terminal rooms refuse it.
func (u *Usecase) Join(ctx context.Context, code model.RoomCode, slot model.Slot, identity model.Identity) error {
	return u.registry.With(code, func(room *model.Room) error {
		if _, err := seatOf(room, slot, identity); err != nil {
			return err
		}
		switch room.Status {
		case model.StatusExpired:
			return usecase_room.ErrExpired
		case model.StatusMatched:
			return usecase_room.ErrInvalidState
		}

		room.Connect(slot, u.registry.Now())

		if partner, ok := room.Seat(slot.Partner()); ok && partner.Connected {
			u.notifier.Send(code, slot.Partner(), protocol.UserJoinedEvent(slot))
		}
		if room.Ready() {
			u.notifier.Broadcast(code, protocol.RoomReadyEvent(code))
		}

		u.logger.Info("slot joined",
			slog.String("code", string(code)),
			slog.String("slot", string(slot)))
		return nil
	})
}

type swipeOutcome struct {
	match       *model.MatchEvent
	injectTo    model.Slot
	inject      bool
	likedBy     uuid.UUID
	recordedNew bool
}

// Swipe records one swipe. Ledger write and match check share the room lock,
// so two concurrent likes on the same title produce exactly one match.
//
// Returns ErrDuplicateSwipe on re-delivery, ErrExpired and ErrInvalidState for
// rooms that cannot take swipes. Swipes after a match are dropped with nil.
func (u *Usecase) Swipe(ctx context.Context, code model.RoomCode, slot model.Slot, identity model.Identity, id model.TitleID, action model.Action) error {
	var out swipeOutcome

	err := u.registry.With(code, func(room *model.Room) error {
		seat, err := seatOf(room, slot, identity)
		if err != nil {
			return err
		}
		switch room.Status {
		case model.StatusExpired:
			return usecase_room.ErrExpired
		case model.StatusMatched:
			return nil
		case model.StatusWaiting:
			return usecase_room.ErrInvalidState
		}

		if !seat.Ledger.Record(id, action) {
			return usecase_room.ErrDuplicateSwipe
		}
		out.recordedNew = true
		now := u.registry.Now()
		room.Touch(now)
		metrics.Swipes.WithLabelValues(string(action)).Inc()

		if room.Mode == model.ModePair {
			u.notifier.Send(code, slot.Partner(), protocol.SwipeProgressEvent(slot, seat.Ledger.Len()))
		}
		if action != model.ActionLike {
			return nil
		}
		out.likedBy = seat.Identity.UserID

		if match_detector.IsMatch(room.Mode, room.Ledgers(), slot, id, action) {
			room.Match(id, now)
			u.notifier.Broadcast(code, protocol.MatchFoundEvent(id))
			slots := []model.Slot{model.SlotA}
			if room.Mode == model.ModePair {
				slots = append(slots, model.SlotB)
			}
			out.match = &model.MatchEvent{
				Code:    code,
				Mode:    room.Mode,
				TitleID: id,
				Slots:   slots,
				At:      now,
			}
			metrics.Matches.WithLabelValues(string(room.Mode)).Inc()
			return nil
		}

		// The partner's seat is left untouched: the push may never reach a
		// client, and paging must still be able to hand the title out.
		if partner, ok := room.Seat(slot.Partner()); ok && !partner.Seen(id) {
			out.inject = true
			out.injectTo = slot.Partner()
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !out.recordedNew {
		u.logger.Debug("stale swipe dropped",
			slog.String("code", string(code)),
			slog.String("slot", string(slot)))
		return nil
	}

	// Everything below talks to collaborators and runs outside the room lock.
	if out.likedBy != uuid.Nil {
		if err := u.watchlist.AddLiked(ctx, out.likedBy, id); err != nil {
			u.logger.Warn("failed to record like", slog.String("error", err.Error()))
		}
	}

	if out.match != nil {
		u.logger.Info("match found",
			slog.String("code", string(code)),
			slog.Int64("title_id", int64(id)))
		if err := u.publisher.PublishMatch(ctx, *out.match); err != nil {
			u.logger.Warn("failed to publish match", slog.String("error", err.Error()))
		}
		return nil
	}

	if out.inject {
		u.pushPartnerLike(ctx, code, out.injectTo, id)
	}
	return nil
}

func (u *Usecase) pushPartnerLike(ctx context.Context, code model.RoomCode, to model.Slot, id model.TitleID) {
	var title *model.MovieMeta
	mm, err := u.titles.ByID(ctx, id)
	if err != nil {
		u.logger.Warn("partner like sent without title",
			slog.Int64("title_id", int64(id)),
			slog.String("error", err.Error()))
	} else {
		title = &mm
	}

	err = u.registry.With(code, func(room *model.Room) error {
		if room.Status != model.StatusActive {
			return nil
		}
		u.notifier.Send(code, to, protocol.PartnerLikedEvent(id, title))
		return nil
	})
	if err != nil && !gone(err) {
		u.logger.Warn("failed to push partner like", slog.String("error", err.Error()))
	}
}

// Leave is always accepted, the seat is kept for the grace period.
func (u *Usecase) Leave(ctx context.Context, code model.RoomCode, slot model.Slot, identity model.Identity) error {
	return u.release(code, slot, identity, true)
}

// Disconnect is Leave for a dropped connection.
func (u *Usecase) Disconnect(ctx context.Context, code model.RoomCode, slot model.Slot, identity model.Identity) error {
	return u.release(code, slot, identity, false)
}

func (u *Usecase) release(code model.RoomCode, slot model.Slot, identity model.Identity, left bool) error {
	err := u.registry.With(code, func(room *model.Room) error {
		if _, err := seatOf(room, slot, identity); err != nil {
			return err
		}
		room.Disconnect(slot, left, u.registry.Now())
		if !room.Status.Terminal() {
			u.notifier.Send(code, slot.Partner(), protocol.UserLeftEvent(slot))
		}
		return nil
	})
	if gone(err) {
		return nil
	}
	return err
}

// gone reports a room that was already evicted.
func gone(err error) bool {
	return errors.Is(err, usecase_room.ErrResourceNotFound) || errors.Is(err, usecase_room.ErrExpired)
}

// NotifyIdentityChanged stores a re-resolved identity for slot and tells the
// partner whether a watchlist became available.
func (u *Usecase) NotifyIdentityChanged(ctx context.Context, code model.RoomCode, slot model.Slot, identity model.Identity) error {
	hasList := false
	if identity.Authenticated() {
		list, err := u.watchlist.WantToWatch(ctx, identity.UserID, 1)
		if err != nil {
			u.logger.Warn("failed to check watchlist", slog.String("error", err.Error()))
		}
		hasList = len(list) > 0
	}

	return u.registry.With(code, func(room *model.Room) error {
		seat, err := seatOf(room, slot, identity)
		if err != nil {
			return err
		}
		if room.Status == model.StatusExpired {
			return usecase_room.ErrExpired
		}
		seat.Identity = identity
		if room.Mode == model.ModePair {
			u.notifier.Send(code, slot.Partner(), protocol.PartnerAuthChangedEvent(identity.Authenticated(), hasList))
		}
		return nil
	})
}

// Expire moves the room to expired and tells whoever is still connected.
func (u *Usecase) Expire(ctx context.Context, code model.RoomCode, reason string) (bool, error) {
	var expired bool
	err := u.registry.With(code, func(room *model.Room) error {
		expired = u.expireLocked(room)
		return nil
	})
	if err != nil {
		return false, err
	}
	if expired {
		u.afterExpire(ctx, code, reason)
	}
	return expired, nil
}

func (u *Usecase) expireLocked(room *model.Room) bool {
	if !room.Expire(u.registry.Now()) {
		return false
	}
	u.notifier.Broadcast(room.Code, protocol.RoomExpiredEvent())
	return true
}

func (u *Usecase) afterExpire(ctx context.Context, code model.RoomCode, reason string) {
	metrics.RoomsExpired.WithLabelValues(reason).Inc()
	u.logger.Info("room expired",
		slog.String("code", string(code)),
		slog.String("reason", reason))
	if err := u.publisher.PublishExpired(ctx, code, reason); err != nil {
		u.logger.Warn("failed to publish expiry", slog.String("error", err.Error()))
	}
}
