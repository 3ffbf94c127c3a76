package storage_room

import (
	"sync"
	"time"

	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	usecase_room "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/room"
)

// entry serializes everything done to one room.
type entry struct {
	mu      sync.Mutex
	room    *model.Room
	removed bool
}

const defaultTombstoneTTL = 10 * time.Minute

// Registry is the in-memory map of live rooms. The map lock only guards
// membership; room state is guarded by the per-room entry lock.
//
// Codes of expired rooms stay as tombstones for a while after deletion, so
// late clients hear ErrExpired instead of ErrResourceNotFound.
type Registry struct {
	mu         sync.RWMutex
	rooms      map[model.RoomCode]*entry
	tombstones map[model.RoomCode]time.Time
	now        func() time.Time
	ttl        time.Duration
}

type Option func(*Registry)

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

func WithTombstoneTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		r.ttl = ttl
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{
		rooms:      make(map[model.RoomCode]*entry),
		tombstones: make(map[model.RoomCode]time.Time),
		now:        time.Now,
		ttl:        defaultTombstoneTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Now() time.Time {
	return r.now()
}

func (r *Registry) Insert(room *model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[room.Code]; ok {
		return usecase_room.ErrCodeConflict
	}
	delete(r.tombstones, room.Code)
	r.rooms[room.Code] = &entry{room: room}
	return nil
}

// With runs fn while holding the room lock. fn must not block on I/O.
func (r *Registry) With(code model.RoomCode, fn func(room *model.Room) error) error {
	r.mu.RLock()
	e, ok := r.rooms[code]
	buried, dead := r.tombstones[code]
	r.mu.RUnlock()
	if !ok {
		if dead && r.now().Sub(buried) < r.ttl {
			return usecase_room.ErrExpired
		}
		return usecase_room.ErrResourceNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return usecase_room.ErrResourceNotFound
	}
	return fn(e.room)
}

func (r *Registry) Join(code model.RoomCode, pin string, identity model.Identity) (model.Slot, int64, error) {
	var (
		slot model.Slot
		seed int64
	)
	err := r.With(code, func(room *model.Room) error {
		if room.Mode == model.ModeSolo {
			if s, ok := room.SlotOf(identity); ok {
				slot, seed = s, room.PoolSeed
				return nil
			}
			return usecase_room.ErrRoomFull
		}
		if room.Pin != pin {
			return usecase_room.ErrForbidden
		}
		if room.Status == model.StatusExpired {
			return usecase_room.ErrExpired
		}

		seed = room.PoolSeed
		if s, ok := room.SlotOf(identity); ok {
			slot = s
			room.Touch(r.now())
			return nil
		}

		if room.Status == model.StatusMatched {
			return usecase_room.ErrInvalidState
		}
		if _, taken := room.Seats[model.SlotB]; taken {
			return usecase_room.ErrRoomFull
		}

		room.Seats[model.SlotB] = model.NewSeat(identity)
		room.Status = model.StatusActive
		room.Touch(r.now())
		slot = model.SlotB
		return nil
	})
	if err != nil {
		return "", 0, err
	}
	return slot, seed, nil
}

func (r *Registry) View(code model.RoomCode) (model.RoomView, error) {
	var view model.RoomView
	err := r.With(code, func(room *model.Room) error {
		view = room.View()
		return nil
	})
	return view, err
}

// Delete removes the room. An expired room leaves a tombstone behind.
func (r *Registry) Delete(code model.RoomCode) bool {
	r.mu.Lock()
	e, ok := r.rooms[code]
	delete(r.rooms, code)
	r.mu.Unlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	e.removed = true
	expired := e.room.Status == model.StatusExpired
	e.mu.Unlock()

	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	for c, at := range r.tombstones {
		if now.Sub(at) >= r.ttl {
			delete(r.tombstones, c)
		}
	}
	if expired && r.rooms[code] == nil {
		r.tombstones[code] = now
	}
	return true
}

func (r *Registry) Codes() []model.RoomCode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make([]model.RoomCode, 0, len(r.rooms))
	for code := range r.rooms {
		codes = append(codes, code)
	}
	return codes
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
