package ws_room

import (
	"context"
	"log/slog"
	"sync"

	"github.com/humanbelnik/kinoswap/matchroom/internal/metrics"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	"github.com/humanbelnik/kinoswap/matchroom/internal/protocol"
)

// Hub routes events to the one live connection per (room, slot). It never
// calls back into the registry, so it is safe to use under a room lock.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[model.RoomCode]map[model.Slot]*Client
	logger *slog.Logger
}

func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[model.RoomCode]map[model.Slot]*Client),
		logger: slog.Default(),
	}
}

// attach makes c the current connection of its slot and returns the one it
// replaced, if any.
func (h *Hub) attach(c *Client) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	slots, ok := h.rooms[c.code]
	if !ok {
		slots = make(map[model.Slot]*Client, 2)
		h.rooms[c.code] = slots
	}
	prev := slots[c.slot]
	slots[c.slot] = c

	h.logger.Info("client attached",
		slog.String("room", string(c.code)),
		slog.String("slot", string(c.slot)),
		slog.Bool("replaced", prev != nil))
	return prev
}

// detach reports whether c was still the current connection of its slot.
func (h *Hub) detach(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	slots, ok := h.rooms[c.code]
	if !ok || slots[c.slot] != c {
		return false
	}
	delete(slots, c.slot)
	if len(slots) == 0 {
		delete(h.rooms, c.code)
	}

	h.logger.Info("client detached",
		slog.String("room", string(c.code)),
		slog.String("slot", string(c.slot)))
	return true
}

func (h *Hub) client(code model.RoomCode, slot model.Slot) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[code][slot]
}

// Send delivers event to slot without blocking.
func (h *Hub) Send(code model.RoomCode, slot model.Slot, event protocol.Event) {
	c := h.client(code, slot)
	if c == nil {
		return
	}
	h.deliver(c, event)
}

func (h *Hub) Broadcast(code model.RoomCode, event protocol.Event) {
	h.mu.RLock()
	targets := make([]*Client, 0, 2)
	for _, c := range h.rooms[code] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.deliver(c, event)
	}
}

func (h *Hub) deliver(c *Client, event protocol.Event) {
	data, err := protocol.Encode(event)
	if err != nil {
		h.logger.Error("failed to encode event", slog.String("type", event.Type), slog.String("error", err.Error()))
		return
	}
	if !c.enqueue(data) {
		metrics.DroppedEvents.Inc()
		h.logger.Warn("client too slow, closing",
			slog.String("room", string(c.code)),
			slog.String("slot", string(c.slot)),
			slog.String("type", event.Type))
		c.close()
	}
}

// Serve closes every connection once ctx is done. Read pumps then report the
// disconnects as usual.
func (h *Hub) Serve(ctx context.Context) error {
	<-ctx.Done()

	h.mu.RLock()
	all := make([]*Client, 0)
	for _, slots := range h.rooms {
		for _, c := range slots {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		c.close()
	}
	return ctx.Err()
}

func (h *Hub) String() string {
	return "ws-hub"
}
