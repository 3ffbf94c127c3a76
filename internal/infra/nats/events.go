// Package infra_nats_events announces room outcomes on NATS for downstream
// consumers such as the notification and watchlist services.
package infra_nats_events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	"github.com/nats-io/nats.go"
)

const (
	subjectMatchFound  = "match.found"
	subjectRoomExpired = "room.expired"
)

type Config struct {
	URL           string
	Name          string
	SubjectPrefix string
	ReconnectWait time.Duration
	MaxReconnects int
}

type conn interface {
	Publish(subject string, data []byte) error
}

type Publisher struct {
	conn   conn
	nc     *nats.Conn
	prefix string
	logger *slog.Logger
}

type matchFound struct {
	Code    string   `json:"code"`
	Mode    string   `json:"mode"`
	TitleID int64    `json:"titleId"`
	Slots   []string `json:"slots"`
	At      int64    `json:"at"`
}

type roomExpired struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
	At     int64  `json:"at"`
}

// Connect dials NATS and keeps reconnecting in the background; a publish
// while disconnected is buffered by the client library.
func Connect(cfg Config) (*Publisher, error) {
	logger := slog.Default().With(slog.String("component", "nats"))

	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = -1
	}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("disconnected", slog.String("error", err.Error()))
				return
			}
			logger.Warn("disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	logger.Info("connected", slog.String("url", nc.ConnectedUrl()))

	p := newPublisher(nc, cfg.SubjectPrefix)
	p.nc = nc
	p.logger = logger
	return p, nil
}

func newPublisher(c conn, prefix string) *Publisher {
	return &Publisher{
		conn:   c,
		prefix: prefix,
		logger: slog.Default().With(slog.String("component", "nats")),
	}
}

func (p *Publisher) subject(s string) string {
	if p.prefix == "" {
		return s
	}
	return p.prefix + "." + s
}

func (p *Publisher) PublishMatch(ctx context.Context, event model.MatchEvent) error {
	slots := make([]string, 0, len(event.Slots))
	for _, s := range event.Slots {
		slots = append(slots, string(s))
	}

	data, err := json.Marshal(matchFound{
		Code:    string(event.Code),
		Mode:    string(event.Mode),
		TitleID: int64(event.TitleID),
		Slots:   slots,
		At:      event.At.UnixMilli(),
	})
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject(subjectMatchFound), data)
}

func (p *Publisher) PublishExpired(ctx context.Context, code model.RoomCode, reason string) error {
	data, err := json.Marshal(roomExpired{
		Code:   string(code),
		Reason: reason,
		At:     time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject(subjectRoomExpired), data)
}

// Close flushes pending publishes.
func (p *Publisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.logger.Error("drain", slog.String("error", err.Error()))
	}
}

// Noop is used when no NATS URL is configured.
type Noop struct{}

func (Noop) PublishMatch(context.Context, model.MatchEvent) error         { return nil }
func (Noop) PublishExpired(context.Context, model.RoomCode, string) error { return nil }
func (Noop) Close()                                                       {}
