package model

import (
	"fmt"
	"time"
)

type RoomCode string

const EmptyRoomCode RoomCode = ""

type Slot string

const (
	SlotA Slot = "A"
	SlotB Slot = "B"
)

func ParseSlot(s string) (Slot, error) {
	slot := Slot(s)
	if !slot.Valid() {
		return "", fmt.Errorf("unknown slot %q", s)
	}
	return slot, nil
}

func (s Slot) Valid() bool {
	return s == SlotA || s == SlotB
}

func (s Slot) Partner() Slot {
	if s == SlotA {
		return SlotB
	}
	return SlotA
}

type RoomStatus string

const (
	StatusWaiting RoomStatus = "waiting"
	StatusActive  RoomStatus = "active"
	StatusMatched RoomStatus = "matched"
	StatusExpired RoomStatus = "expired"
)

func (s RoomStatus) Terminal() bool {
	return s == StatusMatched || s == StatusExpired
}

type Mode string

const (
	ModePair Mode = "pair"
	ModeSolo Mode = "solo"
)

type Seat struct {
	Identity       Identity
	Connected      bool
	Left           bool
	DisconnectedAt time.Time
	Ledger         *Ledger

	// Titles already handed to this slot, by the source that handed them.
	Delivered map[TitleID]Source
}

func NewSeat(identity Identity) *Seat {
	return &Seat{
		Identity:  identity,
		Ledger:    NewLedger(),
		Delivered: make(map[TitleID]Source),
	}
}

// Seen reports whether the slot was already given or already swiped id.
func (s *Seat) Seen(id TitleID) bool {
	if _, ok := s.Delivered[id]; ok {
		return true
	}
	_, ok := s.Ledger.Action(id)
	return ok
}

type Room struct {
	Code     RoomCode
	Pin      string
	PoolSeed int64
	Mode     Mode
	Status   RoomStatus
	Seats    map[Slot]*Seat

	CreatedAt    time.Time
	LastActivity time.Time
	ClosedAt     time.Time
	MatchedTitle TitleID
}

// NewRoom seats the creator in slot A. Solo rooms start active.
func NewRoom(code RoomCode, pin string, seed int64, mode Mode, creator Identity, now time.Time) *Room {
	status := StatusWaiting
	if mode == ModeSolo {
		status = StatusActive
	}
	return &Room{
		Code:         code,
		Pin:          pin,
		PoolSeed:     seed,
		Mode:         mode,
		Status:       status,
		Seats:        map[Slot]*Seat{SlotA: NewSeat(creator)},
		CreatedAt:    now,
		LastActivity: now,
	}
}

func (r *Room) Seat(slot Slot) (*Seat, bool) {
	seat, ok := r.Seats[slot]
	return seat, ok
}

func (r *Room) SlotOf(identity Identity) (Slot, bool) {
	for _, slot := range []Slot{SlotA, SlotB} {
		if seat, ok := r.Seats[slot]; ok && seat.Identity.Same(identity) {
			return slot, true
		}
	}
	return "", false
}

func (r *Room) Ledgers() map[Slot]*Ledger {
	ledgers := make(map[Slot]*Ledger, len(r.Seats))
	for slot, seat := range r.Seats {
		ledgers[slot] = seat.Ledger
	}
	return ledgers
}

func (r *Room) Touch(now time.Time) {
	r.LastActivity = now
}

func (r *Room) Connect(slot Slot, now time.Time) {
	seat, ok := r.Seats[slot]
	if !ok {
		return
	}
	seat.Connected = true
	seat.Left = false
	seat.DisconnectedAt = time.Time{}
	r.Touch(now)
}

func (r *Room) Disconnect(slot Slot, left bool, now time.Time) {
	seat, ok := r.Seats[slot]
	if !ok {
		return
	}
	if seat.Connected || seat.DisconnectedAt.IsZero() {
		seat.DisconnectedAt = now
	}
	seat.Connected = false
	seat.Left = seat.Left || left
}

// Ready means every seat the mode needs is occupied and connected.
func (r *Room) Ready() bool {
	if r.Status != StatusActive {
		return false
	}
	need := []Slot{SlotA}
	if r.Mode == ModePair {
		need = append(need, SlotB)
	}
	for _, slot := range need {
		seat, ok := r.Seats[slot]
		if !ok || !seat.Connected {
			return false
		}
	}
	return true
}

func (r *Room) AllLeft() bool {
	if len(r.Seats) == 0 {
		return false
	}
	for _, seat := range r.Seats {
		if !seat.Left {
			return false
		}
	}
	return true
}

func (r *Room) Match(id TitleID, now time.Time) {
	r.Status = StatusMatched
	r.MatchedTitle = id
	r.ClosedAt = now
}

// Expire returns false when the room was already terminal.
func (r *Room) Expire(now time.Time) bool {
	if r.Status.Terminal() {
		return false
	}
	r.Status = StatusExpired
	r.ClosedAt = now
	return true
}

type SeatView struct {
	Occupied      bool
	Connected     bool
	Authenticated bool
	Swiped        int
}

type RoomView struct {
	Code         RoomCode
	Mode         Mode
	Status       RoomStatus
	PoolSeed     int64
	MatchedTitle TitleID
	Slots        map[Slot]SeatView
}

func (r *Room) View() RoomView {
	view := RoomView{
		Code:         r.Code,
		Mode:         r.Mode,
		Status:       r.Status,
		PoolSeed:     r.PoolSeed,
		MatchedTitle: r.MatchedTitle,
		Slots:        make(map[Slot]SeatView, 2),
	}
	for _, slot := range []Slot{SlotA, SlotB} {
		seat, ok := r.Seats[slot]
		if !ok {
			view.Slots[slot] = SeatView{}
			continue
		}
		view.Slots[slot] = SeatView{
			Occupied:      true,
			Connected:     seat.Connected,
			Authenticated: seat.Identity.Authenticated(),
			Swiped:        seat.Ledger.Len(),
		}
	}
	return view
}

// Ticket is what a creator or joiner gets back.
type Ticket struct {
	Code     RoomCode
	Pin      string
	PoolSeed int64
	Slot     Slot
	Mode     Mode
}
