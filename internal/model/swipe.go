package model

import (
	"fmt"
	"time"
)

type Action string

const (
	ActionLike Action = "like"
	ActionSkip Action = "skip"
)

func ParseAction(s string) (Action, error) {
	a := Action(s)
	if a != ActionLike && a != ActionSkip {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

type SwipeRecord struct {
	TitleID TitleID
	Action  Action
}

// Ledger is the ordered swipe history of one slot. The first action
// recorded for a title wins.
type Ledger struct {
	records []SwipeRecord
	index   map[TitleID]Action
}

func NewLedger() *Ledger {
	return &Ledger{
		index: make(map[TitleID]Action),
	}
}

// Record returns false if id is already in the ledger.
func (l *Ledger) Record(id TitleID, action Action) bool {
	if _, ok := l.index[id]; ok {
		return false
	}
	l.index[id] = action
	l.records = append(l.records, SwipeRecord{TitleID: id, Action: action})
	return true
}

func (l *Ledger) Action(id TitleID) (Action, bool) {
	a, ok := l.index[id]
	return a, ok
}

func (l *Ledger) Liked(id TitleID) bool {
	a, ok := l.index[id]
	return ok && a == ActionLike
}

func (l *Ledger) Len() int {
	return len(l.records)
}

func (l *Ledger) Records() []SwipeRecord {
	out := make([]SwipeRecord, len(l.records))
	copy(out, l.records)
	return out
}

type MatchEvent struct {
	Code    RoomCode
	Mode    Mode
	TitleID TitleID
	Slots   []Slot
	At      time.Time
}
