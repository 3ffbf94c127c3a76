package infra_nats_events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	sent []published
	err  error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{subject: subject, data: data})
	return nil
}

func TestPublishMatch(t *testing.T) {
	fc := &fakeConn{}
	p := newPublisher(fc, "matchroom")
	at := time.UnixMilli(1700000000000)

	err := p.PublishMatch(context.Background(), model.MatchEvent{
		Code:    "ABC234",
		Mode:    model.ModePair,
		TitleID: 100,
		Slots:   []model.Slot{model.SlotA, model.SlotB},
		At:      at,
	})
	require.NoError(t, err)
	require.Len(t, fc.sent, 1)
	assert.Equal(t, "matchroom.match.found", fc.sent[0].subject)

	var got matchFound
	require.NoError(t, json.Unmarshal(fc.sent[0].data, &got))
	assert.Equal(t, matchFound{
		Code:    "ABC234",
		Mode:    "pair",
		TitleID: 100,
		Slots:   []string{"A", "B"},
		At:      at.UnixMilli(),
	}, got)
}

func TestPublishExpired(t *testing.T) {
	fc := &fakeConn{}
	p := newPublisher(fc, "")

	require.NoError(t, p.PublishExpired(context.Background(), "ABC234", "inactivity"))
	require.Len(t, fc.sent, 1)
	assert.Equal(t, "room.expired", fc.sent[0].subject)

	var got roomExpired
	require.NoError(t, json.Unmarshal(fc.sent[0].data, &got))
	assert.Equal(t, "ABC234", got.Code)
	assert.Equal(t, "inactivity", got.Reason)
	assert.NotZero(t, got.At)
}

func TestPublishErrorSurfaces(t *testing.T) {
	fc := &fakeConn{err: errors.New("nats: connection closed")}
	p := newPublisher(fc, "matchroom")

	assert.Error(t, p.PublishExpired(context.Background(), "ABC234", "grace"))
}
