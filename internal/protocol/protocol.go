// Package protocol is the message contract spoken over the room websocket.
// Every frame is an envelope {"type": ..., "payload": {...}}.
package protocol

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
)

// Client -> Server.
const (
	TypeJoinRoom  = "join_room"
	TypeSwipe     = "swipe"
	TypeLeaveRoom = "leave_room"
	TypePing      = "ping"
)

// Server -> Client.
const (
	TypeUserJoined         = "user_joined"
	TypeUserLeft           = "user_left"
	TypeRoomReady          = "room_ready"
	TypeSwipeProgress      = "swipe_progress"
	TypeMatchFound         = "match_found"
	TypeRoomExpired        = "room_expired"
	TypeError              = "error"
	TypePartnerLiked       = "partner_liked"
	TypePartnerAuthChanged = "partner_auth_changed"
	TypePong               = "pong"
)

var (
	ErrMalformed   = errors.New("malformed message")
	ErrUnknownType = errors.New("unknown message type")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Envelope struct {
	Type    string          `json:"type" validate:"required"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return nil
}

// Event is an outbound frame before encoding.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func Encode(e Event) ([]byte, error) {
	if e.Payload == nil {
		e.Payload = struct{}{}
	}
	return json.Marshal(e)
}

func Unmarshal(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if err := validate.Struct(env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return env, nil
}

type JoinRoom struct {
	Code string `json:"code" validate:"required,max=16"`
	Slot string `json:"slot" validate:"required,oneof=A B"`
}

type Swipe struct {
	Code    string `json:"code" validate:"required,max=16"`
	Slot    string `json:"slot" validate:"required,oneof=A B"`
	TitleID int64  `json:"titleId" validate:"required,gt=0"`
	Action  string `json:"action" validate:"required,oneof=like skip"`
}

type LeaveRoom struct {
	Code string `json:"code" validate:"required,max=16"`
	Slot string `json:"slot" validate:"required,oneof=A B"`
}

type Ping struct{}

// ParseClientMessage returns one of JoinRoom, Swipe, LeaveRoom or Ping.
func ParseClientMessage(data []byte) (any, error) {
	env, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}

	var msg any
	switch env.Type {
	case TypeJoinRoom:
		msg = &JoinRoom{}
	case TypeSwipe:
		msg = &Swipe{}
	case TypeLeaveRoom:
		msg = &LeaveRoom{}
	case TypePing:
		return Ping{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	if err := env.Decode(msg); err != nil {
		return nil, err
	}
	if err := validate.Struct(msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	switch m := msg.(type) {
	case *JoinRoom:
		return *m, nil
	case *Swipe:
		return *m, nil
	case *LeaveRoom:
		return *m, nil
	}
	return msg, nil
}

func (m JoinRoom) Event() Event  { return Event{Type: TypeJoinRoom, Payload: m} }
func (m Swipe) Event() Event     { return Event{Type: TypeSwipe, Payload: m} }
func (m LeaveRoom) Event() Event { return Event{Type: TypeLeaveRoom, Payload: m} }
func (m Ping) Event() Event      { return Event{Type: TypePing, Payload: m} }

type UserJoined struct {
	Slot string `json:"slot"`
}

type UserLeft struct {
	Slot string `json:"slot"`
}

type RoomReady struct {
	Code string `json:"code"`
}

type SwipeProgress struct {
	Slot        string `json:"slot"`
	TotalSwiped int    `json:"totalSwiped"`
}

type MatchFound struct {
	TitleID int64 `json:"titleId"`
}

type RoomExpired struct{}

type Error struct {
	Message string `json:"message"`
}

type PartnerLiked struct {
	TitleID int64  `json:"titleId"`
	Title   *Title `json:"title,omitempty"`
}

type PartnerAuthChanged struct {
	IsAuthenticated    bool `json:"isAuthenticated"`
	HasWantToWatchList bool `json:"hasWantToWatchList"`
}

type Pong struct{}

func UserJoinedEvent(slot model.Slot) Event {
	return Event{Type: TypeUserJoined, Payload: UserJoined{Slot: string(slot)}}
}

func UserLeftEvent(slot model.Slot) Event {
	return Event{Type: TypeUserLeft, Payload: UserLeft{Slot: string(slot)}}
}

func RoomReadyEvent(code model.RoomCode) Event {
	return Event{Type: TypeRoomReady, Payload: RoomReady{Code: string(code)}}
}

func SwipeProgressEvent(slot model.Slot, total int) Event {
	return Event{Type: TypeSwipeProgress, Payload: SwipeProgress{Slot: string(slot), TotalSwiped: total}}
}

func MatchFoundEvent(id model.TitleID) Event {
	return Event{Type: TypeMatchFound, Payload: MatchFound{TitleID: int64(id)}}
}

func RoomExpiredEvent() Event {
	return Event{Type: TypeRoomExpired, Payload: RoomExpired{}}
}

func ErrorEvent(message string) Event {
	return Event{Type: TypeError, Payload: Error{Message: message}}
}

// PartnerLikedEvent carries only the id when mm is nil.
func PartnerLikedEvent(id model.TitleID, mm *model.MovieMeta) Event {
	payload := PartnerLiked{TitleID: int64(id)}
	if mm != nil {
		title := FromDomain(*mm)
		payload.Title = &title
	}
	return Event{Type: TypePartnerLiked, Payload: payload}
}

func PartnerAuthChangedEvent(authenticated, hasWantToWatch bool) Event {
	return Event{Type: TypePartnerAuthChanged, Payload: PartnerAuthChanged{
		IsAuthenticated:    authenticated,
		HasWantToWatchList: hasWantToWatch,
	}}
}

func PongEvent() Event {
	return Event{Type: TypePong, Payload: Pong{}}
}
