package usecase_room

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"math/big"
	mrand "math/rand/v2"
	"strings"
	"time"

	"github.com/humanbelnik/kinoswap/matchroom/internal/metrics"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
)

var (
	ErrCodeConflict     = errors.New("code conflict")
	ErrRoomsUnavailable = errors.New("no available rooms")
	ErrInternal         = errors.New("internal error")
	ErrResourceNotFound = errors.New("no such resource")
	ErrForbidden        = errors.New("forbidden")
	ErrRoomFull         = errors.New("room is full")
	ErrInvalidState     = errors.New("invalid room state")
	ErrDuplicateSwipe   = errors.New("duplicate swipe")
	ErrExpired          = errors.New("room expired")
	ErrInvalidInput     = errors.New("invalid input")
)

// Unambiguous for reading aloud: no 0/O, 1/I.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type Registry interface {
	Insert(room *model.Room) error
	Join(code model.RoomCode, pin string, identity model.Identity) (model.Slot, int64, error)
	View(code model.RoomCode) (model.RoomView, error)
	Delete(code model.RoomCode) bool
}

// CodeSet reserves codes across instances so two processes never hand out the same one.
//
//go:generate mockery --name=CodeSet --output=../../../mocks/cache --filename=CodeSet.go
type CodeSet interface {
	Reserve(ctx context.Context, code model.RoomCode) (bool, error)
	Release(ctx context.Context, code model.RoomCode) error
}

type Config struct {
	CodeLength int
	PinLength  int
}

type Usecase struct {
	registry Registry
	codes    CodeSet
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(u *Usecase) {
		u.now = now
	}
}

func New(
	registry Registry,
	codes CodeSet,
	cfg Config,
	opts ...Option,
) *Usecase {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 6 /* default */
	}
	if cfg.PinLength <= 0 {
		cfg.PinLength = 4 /* default */
	}

	u := &Usecase{
		registry: registry,
		codes:    codes,
		cfg:      cfg,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CreateRoom opens a pair room with the creator seated in slot A.
func (u *Usecase) CreateRoom(ctx context.Context, creator model.Identity) (model.Ticket, error) {
	pin, err := randomString("0123456789", u.cfg.PinLength)
	if err != nil {
		return model.Ticket{}, errors.Join(ErrInternal, err)
	}
	return u.open(ctx, creator, model.ModePair, pin, mrand.Int64N(1<<31))
}

// CreateSolo opens a single-seat room. A nil seed picks a random one.
func (u *Usecase) CreateSolo(ctx context.Context, creator model.Identity, seed *int64) (model.Ticket, error) {
	s := mrand.Int64N(1 << 31)
	if seed != nil {
		s = *seed
	}
	return u.open(ctx, creator, model.ModeSolo, "", s)
}

// Assuming that codes can conflict.
// Retrying...
func (u *Usecase) open(ctx context.Context, creator model.Identity, mode model.Mode, pin string, seed int64) (model.Ticket, error) {
	if creator.Token == "" {
		return model.Ticket{}, ErrInvalidInput
	}

	var retries = 3
	for retries > 0 {
		code, err := u.buildRoomCode()
		if err != nil {
			return model.Ticket{}, errors.Join(ErrInternal, err)
		}

		if err := u.reserve(ctx, code); err != nil {
			if errors.Is(err, ErrCodeConflict) {
				retries--
				continue
			}
			return model.Ticket{}, errors.Join(ErrInternal, err)
		}

		room := model.NewRoom(code, pin, seed, mode, creator, u.now())
		if err := u.registry.Insert(room); err != nil {
			if errors.Is(err, ErrCodeConflict) {
				retries--
				continue
			}
			return model.Ticket{}, errors.Join(ErrInternal, err)
		}

		metrics.RoomsCreated.WithLabelValues(string(mode)).Inc()
		metrics.RoomsLive.Inc()
		u.logger.Info("room created",
			slog.String("code", string(code)),
			slog.String("mode", string(mode)))
		return model.Ticket{
			Code:     code,
			Pin:      pin,
			PoolSeed: seed,
			Slot:     model.SlotA,
			Mode:     mode,
		}, nil
	}
	return model.Ticket{}, ErrRoomsUnavailable
}

func (u *Usecase) reserve(ctx context.Context, code model.RoomCode) error {
	ok, err := u.codes.Reserve(ctx, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCodeConflict
	}
	return nil
}

// Join seats identity in slot B, or returns its current slot on re-join.
func (u *Usecase) Join(ctx context.Context, code model.RoomCode, pin string, identity model.Identity) (model.Ticket, error) {
	if identity.Token == "" {
		return model.Ticket{}, ErrInvalidInput
	}

	slot, seed, err := u.registry.Join(NormalizeCode(code), pin, identity)
	if err != nil {
		switch {
		case errors.Is(err, ErrResourceNotFound),
			errors.Is(err, ErrForbidden),
			errors.Is(err, ErrRoomFull),
			errors.Is(err, ErrExpired),
			errors.Is(err, ErrInvalidState):
			return model.Ticket{}, err
		}
		return model.Ticket{}, errors.Join(ErrInternal, err)
	}

	mode := model.ModePair
	if view, err := u.registry.View(NormalizeCode(code)); err == nil {
		mode = view.Mode
	}
	return model.Ticket{
		Code:     NormalizeCode(code),
		PoolSeed: seed,
		Slot:     slot,
		Mode:     mode,
	}, nil
}

func (u *Usecase) Status(ctx context.Context, code model.RoomCode) (model.RoomView, error) {
	view, err := u.registry.View(NormalizeCode(code))
	if err != nil {
		switch {
		case errors.Is(err, ErrResourceNotFound):
			return model.RoomView{}, ErrResourceNotFound
		case errors.Is(err, ErrExpired):
			return model.RoomView{}, ErrExpired
		}
		return model.RoomView{}, errors.Join(ErrInternal, err)
	}
	return view, nil
}

// Free drops the room and gives its code back.
func (u *Usecase) Free(ctx context.Context, code model.RoomCode) error {
	code = NormalizeCode(code)
	if !u.registry.Delete(code) {
		return ErrResourceNotFound
	}
	metrics.RoomsLive.Dec()
	if err := u.codes.Release(ctx, code); err != nil {
		return errors.Join(ErrInternal, err)
	}
	return nil
}

func (u *Usecase) buildRoomCode() (model.RoomCode, error) {
	code, err := randomString(codeAlphabet, u.cfg.CodeLength)
	return model.RoomCode(code), err
}

func randomString(alphabet string, n int) (string, error) {
	var builder strings.Builder
	builder.Grow(n)

	max := big.NewInt(int64(len(alphabet)))
	for range n {
		i, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[i.Int64()])
	}
	return builder.String(), nil
}

// NormalizeCode makes codes typed by hand comparable.
func NormalizeCode(code model.RoomCode) model.RoomCode {
	return model.RoomCode(strings.ToUpper(strings.TrimSpace(string(code))))
}
