// Package client_conn keeps a room websocket open for one seat, redialing
// with exponential backoff and re-joining after every reconnect.
package client_conn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/humanbelnik/kinoswap/matchroom/internal/protocol"
)

const (
	initialReconnectDelay = time.Second
	maxReconnectDelay     = 30 * time.Second
	pingPeriod            = 25 * time.Second
	writeWait             = 10 * time.Second
)

var ErrNotConnected = errors.New("not connected")

type Config struct {
	// BaseURL is the HTTP API root, e.g. http://localhost:8080/api/v1.
	BaseURL string
	Token   string
	Code    string
	Slot    string

	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Handler receives every server frame. It runs on the read goroutine.
type Handler func(env protocol.Envelope)

type Conn struct {
	cfg     Config
	handler Handler
	dialer  websocket.Dialer
	logger  *slog.Logger

	mu   sync.Mutex
	conn *websocket.Conn

	// connected fires after every successful (re)join.
	connected chan struct{}
}

func New(cfg Config, handler Handler) *Conn {
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = initialReconnectDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = maxReconnectDelay
	}
	return &Conn{
		cfg:       cfg,
		handler:   handler,
		dialer:    websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:    slog.Default().With(slog.String("component", "room-ws")),
		connected: make(chan struct{}, 1),
	}
}

// Connected signals each time the seat is (re)joined.
func (c *Conn) Connected() <-chan struct{} {
	return c.connected
}

func (c *Conn) URL() (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/rooms/" + url.PathEscape(c.cfg.Code) + "/ws"
	q := u.Query()
	q.Set("token", c.cfg.Token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Run dials and reads until ctx is done. Lost connections are redialed.
func (c *Conn) Run(ctx context.Context) error {
	delay := c.cfg.InitialDelay

	for {
		err := c.connect(ctx)
		if err == nil {
			delay = c.cfg.InitialDelay
			err = c.read(ctx)
		}
		c.drop()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Info("connection lost, reconnecting",
			slog.String("error", err.Error()),
			slog.Duration("delay", delay))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, c.cfg.MaxDelay)
	}
}

func (c *Conn) connect(ctx context.Context) error {
	u, err := c.URL()
	if err != nil {
		return err
	}

	conn, resp, err := c.dialer.DialContext(ctx, u, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial failed (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	if err := c.Send(protocol.JoinRoom{Code: c.cfg.Code, Slot: c.cfg.Slot}.Event()); err != nil {
		return err
	}

	select {
	case c.connected <- struct{}{}:
	default:
	}
	return nil
}

func (c *Conn) read(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	stop := make(chan struct{})
	defer close(stop)
	go c.pingLoop(ctx, stop)

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		env, err := protocol.Unmarshal(data)
		if err != nil {
			c.logger.Warn("dropping malformed frame", slog.String("error", err.Error()))
			continue
		}
		if c.handler != nil {
			c.handler(env)
		}
	}
}

func (c *Conn) pingLoop(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if err := c.Send(protocol.Ping{}.Event()); err != nil {
				return
			}
		}
	}
}

// Send writes one frame. It fails with ErrNotConnected between reconnects.
func (c *Conn) Send(event protocol.Event) error {
	data, err := protocol.Encode(event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Conn) Swipe(titleID int64, action string) error {
	return c.Send(protocol.Swipe{
		Code:    c.cfg.Code,
		Slot:    c.cfg.Slot,
		TitleID: titleID,
		Action:  action,
	}.Event())
}

func (c *Conn) Leave() error {
	return c.Send(protocol.LeaveRoom{Code: c.cfg.Code, Slot: c.cfg.Slot}.Event())
}

func (c *Conn) drop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
