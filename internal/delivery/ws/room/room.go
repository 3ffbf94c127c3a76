package ws_room

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	http_common "github.com/humanbelnik/kinoswap/matchroom/internal/delivery/http/common"
	"github.com/humanbelnik/kinoswap/matchroom/internal/metrics"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	"github.com/humanbelnik/kinoswap/matchroom/internal/protocol"
	usecase_room "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/room"
	usecase_swipe "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/swipe"
	"golang.org/x/time/rate"
)

const (
	msgRateLimited = "rate_limited"
	msgJoinFirst   = "join_room first"
	msgWrongRoom   = "message addresses another room or slot"
)

type Config struct {
	MessagesPerSecond float64
	Burst             int
}

type Controller struct {
	hub      *Hub
	swipes   *usecase_swipe.Usecase
	upgrader websocket.Upgrader
	cfg      Config
	logger   *slog.Logger
}

func NewController(hub *Hub, swipes *usecase_swipe.Usecase, cfg Config) *Controller {
	if cfg.MessagesPerSecond <= 0 {
		cfg.MessagesPerSecond = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 40
	}
	return &Controller{
		hub:    hub,
		swipes: swipes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Mobile apps and the TUI send no Origin; access is gated by the seat token.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		cfg:    cfg,
		logger: slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/rooms/:code/ws", c.serve)
}

// Serve открывает websocket комнаты
// @Summary Websocket комнаты
// @Description Первое сообщение должно быть join_room. Токен передается заголовком X-user-token или параметром token
// @Tags Rooms
// @Param code path string true "Код комнаты"
// @Param token query string false "Токен пользователя"
// @Success 101 "Переключение протокола"
// @Router /rooms/{code}/ws [get]
func (c *Controller) serve(ctx *gin.Context) {
	identity := http_common.Identity(ctx)
	code := usecase_room.NormalizeCode(model.RoomCode(ctx.Param("code")))

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Warn("upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := newClient(conn, code, identity, rate.NewLimiter(rate.Limit(c.cfg.MessagesPerSecond), c.cfg.Burst))
	metrics.Connections.Inc()
	go client.writePump()
	c.readPump(ctx.Request.Context(), client)
}

func (c *Controller) readPump(ctx context.Context, client *Client) {
	defer func() {
		if client.state == stateJoined && c.hub.detach(client) {
			if err := c.swipes.Disconnect(context.WithoutCancel(ctx), client.code, client.slot, client.identity); err != nil {
				c.logger.Warn("disconnect bookkeeping failed", slog.String("error", err.Error()))
			}
		}
		client.state = stateClosed
		client.close()
		metrics.Connections.Dec()
	}()

	client.conn.SetReadLimit(maxMessageSize)
	if err := client.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for client.state != stateClosed {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("unexpected websocket close", slog.String("error", err.Error()))
			}
			return
		}
		// Any inbound frame proves liveness, not only pongs.
		_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))

		if !client.limiter.Allow() {
			metrics.Messages.WithLabelValues("rate_limited").Inc()
			c.reply(client, protocol.ErrorEvent(msgRateLimited))
			continue
		}

		msg, err := protocol.ParseClientMessage(data)
		if err != nil {
			metrics.Messages.WithLabelValues("malformed").Inc()
			c.reply(client, protocol.ErrorEvent(err.Error()))
			continue
		}

		if err := c.dispatch(ctx, client, msg); err != nil {
			metrics.Messages.WithLabelValues("rejected").Inc()
			c.reply(client, protocol.ErrorEvent(message(err)))
			continue
		}
		metrics.Messages.WithLabelValues("accepted").Inc()
	}
}

var (
	errJoinFirst = errors.New(msgJoinFirst)
	errWrongRoom = errors.New(msgWrongRoom)
)

func (c *Controller) dispatch(ctx context.Context, client *Client, msg any) error {
	switch m := msg.(type) {
	case protocol.Ping:
		c.reply(client, protocol.PongEvent())
		return nil

	case protocol.JoinRoom:
		return c.join(ctx, client, m)

	case protocol.Swipe:
		if err := c.addressed(client, m.Code, m.Slot); err != nil {
			return err
		}
		action, err := model.ParseAction(m.Action)
		if err != nil {
			return usecase_room.ErrInvalidInput
		}
		err = c.swipes.Swipe(ctx, client.code, client.slot, client.identity, model.TitleID(m.TitleID), action)
		if errors.Is(err, usecase_room.ErrDuplicateSwipe) {
			return nil
		}
		return err

	case protocol.LeaveRoom:
		if err := c.addressed(client, m.Code, m.Slot); err != nil {
			return err
		}
		if c.hub.detach(client) {
			if err := c.swipes.Leave(ctx, client.code, client.slot, client.identity); err != nil {
				return err
			}
		}
		client.state = stateClosed
		return nil
	}
	return protocol.ErrUnknownType
}

func (c *Controller) join(ctx context.Context, client *Client, m protocol.JoinRoom) error {
	if usecase_room.NormalizeCode(model.RoomCode(m.Code)) != client.code {
		return errWrongRoom
	}
	slot := model.Slot(m.Slot)
	if client.state == stateJoined {
		if slot != client.slot {
			return errWrongRoom
		}
		return nil
	}

	if err := c.swipes.Authorize(client.code, slot, client.identity); err != nil {
		return err
	}

	client.slot = slot
	if prev := c.hub.attach(client); prev != nil {
		prev.close()
	}
	if err := c.swipes.Join(ctx, client.code, slot, client.identity); err != nil {
		c.hub.detach(client)
		return err
	}
	client.state = stateJoined
	return nil
}

func (c *Controller) addressed(client *Client, code, slot string) error {
	if client.state != stateJoined {
		return errJoinFirst
	}
	if usecase_room.NormalizeCode(model.RoomCode(code)) != client.code || model.Slot(slot) != client.slot {
		return errWrongRoom
	}
	return nil
}

func (c *Controller) reply(client *Client, event protocol.Event) {
	data, err := protocol.Encode(event)
	if err != nil {
		return
	}
	if !client.enqueue(data) {
		metrics.DroppedEvents.Inc()
	}
}

func message(err error) string {
	if errors.Is(err, errJoinFirst) || errors.Is(err, errWrongRoom) || errors.Is(err, protocol.ErrUnknownType) {
		return err.Error()
	}
	_, msg := http_common.Status(err)
	return msg
}
