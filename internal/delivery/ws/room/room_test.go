package ws_room

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	http_common "github.com/humanbelnik/kinoswap/matchroom/internal/delivery/http/common"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	"github.com/humanbelnik/kinoswap/matchroom/internal/protocol"
	storage_room "github.com/humanbelnik/kinoswap/matchroom/internal/storage/room"
	usecase_swipe "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/swipe"
	catalog_mocks "github.com/humanbelnik/kinoswap/matchroom/mocks/catalog"
	events_mocks "github.com/humanbelnik/kinoswap/matchroom/mocks/events"
	repo_mocks "github.com/humanbelnik/kinoswap/matchroom/mocks/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	roomCode = "ROOM42"
	roomPin  = "1234"
	tokenA   = "tok-a"
	tokenB   = "tok-b"
)

type harness struct {
	srv      *httptest.Server
	registry *storage_room.Registry
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := storage_room.New()
	hub := NewHub()

	catalog := catalog_mocks.NewCatalog(t)
	catalog.On("ByID", mock.Anything, mock.Anything).Return(model.MovieMeta{ID: 100, Title: "Heat"}, nil).Maybe()
	publisher := events_mocks.NewPublisher(t)
	publisher.On("PublishMatch", mock.Anything, mock.Anything).Return(nil).Maybe()
	swipes := usecase_swipe.New(registry, hub, catalog, repo_mocks.NewWatchlist(t), publisher)

	r := gin.New()
	api := r.Group("/api/v1", func(ctx *gin.Context) {
		http_common.SetIdentity(ctx, model.Identity{Token: ctx.Query("token")})
	})
	NewController(hub, swipes, cfg).RegisterRoutes(api)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	require.NoError(t, registry.Insert(model.NewRoom(roomCode, roomPin, 7, model.ModePair, model.Identity{Token: tokenA}, time.Now())))
	_, _, err := registry.Join(roomCode, roomPin, model.Identity{Token: tokenB})
	require.NoError(t, err)

	return &harness{srv: srv, registry: registry}
}

// dial uses a lowercase code on purpose.
func (h *harness) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/api/v1/rooms/room42/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (h *harness) seat(t *testing.T, slot model.Slot) model.SeatView {
	t.Helper()
	view, err := h.registry.View(roomCode)
	require.NoError(t, err)
	return view.Slots[slot]
}

func send(t *testing.T, conn *websocket.Conn, event protocol.Event) {
	t.Helper()
	data, err := protocol.Encode(event)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

// next skips frames until one of eventType arrives.
func next(t *testing.T, conn *websocket.Conn, eventType string) protocol.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", eventType)
		env, err := protocol.Unmarshal(data)
		require.NoError(t, err)
		if env.Type == eventType {
			return env
		}
	}
}

func errorText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	var payload protocol.Error
	require.NoError(t, next(t, conn, protocol.TypeError).Decode(&payload))
	return payload.Message
}

func join(t *testing.T, conn *websocket.Conn, slot model.Slot) {
	t.Helper()
	send(t, conn, protocol.JoinRoom{Code: roomCode, Slot: string(slot)}.Event())
}

func TestJoinSwipeAndMatch(t *testing.T) {
	h := newHarness(t, Config{})
	a := h.dial(t, tokenA)
	join(t, a, model.SlotA)
	require.Eventually(t, func() bool { return h.seat(t, model.SlotA).Connected }, time.Second, 10*time.Millisecond)
	b := h.dial(t, tokenB)
	join(t, b, model.SlotB)

	var joined protocol.UserJoined
	require.NoError(t, next(t, a, protocol.TypeUserJoined).Decode(&joined))
	assert.Equal(t, "B", joined.Slot)
	next(t, a, protocol.TypeRoomReady)
	next(t, b, protocol.TypeRoomReady)

	send(t, a, protocol.Swipe{Code: roomCode, Slot: "A", TitleID: 100, Action: "like"}.Event())

	var progress protocol.SwipeProgress
	require.NoError(t, next(t, b, protocol.TypeSwipeProgress).Decode(&progress))
	assert.Equal(t, protocol.SwipeProgress{Slot: "A", TotalSwiped: 1}, progress)

	var liked protocol.PartnerLiked
	require.NoError(t, next(t, b, protocol.TypePartnerLiked).Decode(&liked))
	assert.Equal(t, int64(100), liked.TitleID)
	require.NotNil(t, liked.Title)
	assert.Equal(t, "Heat", liked.Title.Title)

	send(t, b, protocol.Swipe{Code: roomCode, Slot: "B", TitleID: 100, Action: "like"}.Event())

	for _, conn := range []*websocket.Conn{a, b} {
		var match protocol.MatchFound
		require.NoError(t, next(t, conn, protocol.TypeMatchFound).Decode(&match))
		assert.Equal(t, int64(100), match.TitleID)
	}
}

func TestFirstMessageMustBeJoin(t *testing.T) {
	h := newHarness(t, Config{})
	a := h.dial(t, tokenA)

	send(t, a, protocol.Swipe{Code: roomCode, Slot: "A", TitleID: 100, Action: "like"}.Event())

	assert.Equal(t, msgJoinFirst, errorText(t, a))
}

func TestForeignTokenIsForbidden(t *testing.T) {
	h := newHarness(t, Config{})
	intruder := h.dial(t, "intruder")

	join(t, intruder, model.SlotA)

	assert.Equal(t, "forbidden", errorText(t, intruder))
	assert.False(t, h.seat(t, model.SlotA).Connected)
}

func TestJoinForAnotherRoom(t *testing.T) {
	h := newHarness(t, Config{})
	a := h.dial(t, tokenA)

	send(t, a, protocol.JoinRoom{Code: "OTHER1", Slot: "A"}.Event())

	assert.Equal(t, msgWrongRoom, errorText(t, a))
}

func TestPingPong(t *testing.T) {
	h := newHarness(t, Config{})
	a := h.dial(t, tokenA)

	send(t, a, protocol.Ping{}.Event())

	next(t, a, protocol.TypePong)
}

func TestMalformedFrameKeepsConnection(t *testing.T) {
	h := newHarness(t, Config{})
	a := h.dial(t, tokenA)

	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte("{")))
	assert.Contains(t, errorText(t, a), protocol.ErrMalformed.Error())

	send(t, a, protocol.Ping{}.Event())
	next(t, a, protocol.TypePong)
}

func TestRateLimited(t *testing.T) {
	h := newHarness(t, Config{MessagesPerSecond: 0.1, Burst: 1})
	a := h.dial(t, tokenA)
	join(t, a, model.SlotA)

	send(t, a, protocol.Ping{}.Event())

	assert.Equal(t, msgRateLimited, errorText(t, a))
}

func TestReconnectReplacesConnection(t *testing.T) {
	h := newHarness(t, Config{})
	first := h.dial(t, tokenA)
	join(t, first, model.SlotA)
	require.Eventually(t, func() bool { return h.seat(t, model.SlotA).Connected }, time.Second, 10*time.Millisecond)

	second := h.dial(t, tokenA)
	join(t, second, model.SlotA)

	// The replaced connection is closed by the server.
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := first.ReadMessage(); err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
			break
		}
	}

	// Losing the old connection must not mark the slot offline.
	time.Sleep(50 * time.Millisecond)
	assert.True(t, h.seat(t, model.SlotA).Connected)

	send(t, second, protocol.Ping{}.Event())
	next(t, second, protocol.TypePong)
}

func TestDroppedConnectionNotifiesPartner(t *testing.T) {
	h := newHarness(t, Config{})
	a := h.dial(t, tokenA)
	join(t, a, model.SlotA)
	b := h.dial(t, tokenB)
	join(t, b, model.SlotB)
	next(t, a, protocol.TypeRoomReady)

	require.NoError(t, b.Close())

	var left protocol.UserLeft
	require.NoError(t, next(t, a, protocol.TypeUserLeft).Decode(&left))
	assert.Equal(t, "B", left.Slot)
	assert.False(t, h.seat(t, model.SlotB).Connected)
	assert.True(t, h.seat(t, model.SlotB).Occupied, "seat is kept for the grace period")
}

func TestLeaveRoom(t *testing.T) {
	h := newHarness(t, Config{})
	a := h.dial(t, tokenA)
	join(t, a, model.SlotA)
	b := h.dial(t, tokenB)
	join(t, b, model.SlotB)
	next(t, a, protocol.TypeRoomReady)

	send(t, b, protocol.LeaveRoom{Code: roomCode, Slot: "B"}.Event())

	next(t, a, protocol.TypeUserLeft)
	assert.False(t, h.seat(t, model.SlotB).Connected)
}
