// Package client_agent keeps the client's copy of a slot's queue: the deck
// the user swipes through, paged from the server and spiked with titles the
// partner liked.
package client_agent

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/humanbelnik/kinoswap/matchroom/internal/protocol"
)

const (
	// InjectOffset is how many cards past the current one a partner like
	// lands, so the visible stack does not change.
	InjectOffset = 3
	// LowWater is the remaining-card count that triggers the next page.
	LowWater = 5

	defaultPageSize = 20
)

const (
	SourcePartnerLike = "partner_like"
	SourceFallback    = "fallback"
)

//go:generate mockery --name=Source --output=../../../mocks/client --filename=Source.go

// Source loads pages of the queue. Queue is the personalized path; Popular is
// the fallback used when Queue fails outright. Title resolves a single id.
type Source interface {
	Queue(ctx context.Context, limit, offset int) (protocol.QueuePage, error)
	Popular(ctx context.Context, offset, limit int) ([]protocol.Title, error)
	Title(ctx context.Context, id int64) (protocol.Title, error)
}

type Config struct {
	PageSize     int
	InjectOffset int
	LowWater     int
}

type Agent struct {
	mu sync.Mutex

	source Source
	cfg    Config
	logger *slog.Logger

	queue   []protocol.QueueItem
	known   map[int64]struct{}
	current int

	animating bool
	pending   []protocol.Title
	reloaded  []protocol.QueueItem

	hasMore    bool
	nextOffset int
	fallback   bool
	fetching   bool
}

type Option func(*Agent)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

func New(source Source, cfg Config, opts ...Option) *Agent {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.InjectOffset <= 0 {
		cfg.InjectOffset = InjectOffset
	}
	if cfg.LowWater <= 0 {
		cfg.LowWater = LowWater
	}

	a := &Agent{
		source: source,
		cfg:    cfg,
		logger: slog.Default(),
		known:  make(map[int64]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Current returns the card on top of the deck.
func (a *Agent) Current() (protocol.QueueItem, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current >= len(a.queue) {
		return protocol.QueueItem{}, false
	}
	return a.queue[a.current], true
}

func (a *Agent) CurrentIndex() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *Agent) Remaining() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.remaining()
}

func (a *Agent) remaining() int {
	return max(0, len(a.queue)-a.current)
}

// Items returns a copy of the whole deck, consumed cards included.
func (a *Agent) Items() []protocol.QueueItem {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]protocol.QueueItem, len(a.queue))
	copy(out, a.queue)
	return out
}

// ConsumeNext advances past the current card. The index only grows, even
// past the end of the deck.
func (a *Agent) ConsumeNext() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.current++
	return a.current
}

// InjectPartnerLike places title a few cards ahead. While a swipe animation
// is running it is buffered until SettleAnimation.
func (a *Agent) InjectPartnerLike(title protocol.Title) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.known[title.ID]; ok {
		return false
	}
	for _, p := range a.pending {
		if p.ID == title.ID {
			return false
		}
	}

	if a.animating {
		a.pending = append(a.pending, title)
		return true
	}
	a.insert(title)
	return true
}

func (a *Agent) insert(title protocol.Title) {
	at := min(a.current+a.cfg.InjectOffset, len(a.queue))
	item := protocol.QueueItem{Title: title, Source: SourcePartnerLike}

	a.queue = append(a.queue, protocol.QueueItem{})
	copy(a.queue[at+1:], a.queue[at:])
	a.queue[at] = item
	a.known[title.ID] = struct{}{}
}

func (a *Agent) BeginAnimation() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.animating = true
}

// SettleAnimation flushes a buffered reload, then buffered partner likes in
// arrival order.
func (a *Agent) SettleAnimation() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.animating = false
	reloaded := a.reloaded
	a.reloaded = nil
	a.splice(reloaded)

	pending := a.pending
	a.pending = nil
	for _, title := range pending {
		if _, ok := a.known[title.ID]; ok {
			continue
		}
		a.insert(title)
	}
}

func (a *Agent) Animating() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.animating
}

func (a *Agent) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

func (a *Agent) ShouldFetchMore() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.shouldFetchMore()
}

func (a *Agent) shouldFetchMore() bool {
	return a.hasMore && !a.fetching && a.remaining() < a.cfg.LowWater
}

// AppendMovies merges a page into the deck, skipping titles already held or
// waiting in the pending buffer.
func (a *Agent) AppendMovies(items []protocol.QueueItem) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.appendLocked(items)
}

func (a *Agent) appendLocked(items []protocol.QueueItem) int {
	added := 0
	for _, it := range items {
		if _, ok := a.known[it.Title.ID]; ok {
			continue
		}
		a.dropPending(it.Title.ID)
		a.queue = append(a.queue, it)
		a.known[it.Title.ID] = struct{}{}
		added++
	}
	return added
}

func (a *Agent) dropPending(id int64) {
	for i, p := range a.pending {
		if p.ID == id {
			a.pending = append(a.pending[:i], a.pending[i+1:]...)
			return
		}
	}
}

// LoadInitial fetches the first page. If the personalized queue can't be
// built at all the deck is seeded from the popular list instead.
func (a *Agent) LoadInitial(ctx context.Context) error {
	page, err := a.source.Queue(ctx, a.cfg.PageSize, 0)
	if err == nil {
		a.mu.Lock()
		a.fallback = false
		a.appendLocked(page.Items)
		a.hasMore = page.Meta.HasMore
		a.nextOffset = page.Meta.NextOffset
		a.mu.Unlock()
		return nil
	}

	a.logger.Warn("queue unavailable, falling back to popular", slog.String("error", err.Error()))
	titles, ferr := a.source.Popular(ctx, 0, a.cfg.PageSize)
	if ferr != nil {
		return errors.Join(err, ferr)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.fallback = true
	a.appendLocked(fallbackItems(titles))
	a.hasMore = len(titles) == a.cfg.PageSize
	a.nextOffset = len(titles)
	return nil
}

// FetchMore loads the next page when the deck runs low. It is a no-op when
// nothing is needed or another fetch is running.
func (a *Agent) FetchMore(ctx context.Context) error {
	a.mu.Lock()
	if !a.shouldFetchMore() {
		a.mu.Unlock()
		return nil
	}
	a.fetching = true
	offset, fallback := a.nextOffset, a.fallback
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.fetching = false
		a.mu.Unlock()
	}()

	if fallback {
		titles, err := a.source.Popular(ctx, offset, a.cfg.PageSize)
		if err != nil {
			return err
		}
		a.mu.Lock()
		a.appendLocked(fallbackItems(titles))
		a.hasMore = len(titles) == a.cfg.PageSize
		a.nextOffset = offset + len(titles)
		a.mu.Unlock()
		return nil
	}

	page, err := a.source.Queue(ctx, a.cfg.PageSize, offset)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.appendLocked(page.Items)
	a.hasMore = page.Meta.HasMore
	a.nextOffset = page.Meta.NextOffset
	a.mu.Unlock()
	return nil
}

// Reload asks for a fresh initial page and merges it into the deck a few
// cards past the current one. Used when the partner's watchlist appears.
// During a swipe animation the page waits for SettleAnimation.
func (a *Agent) Reload(ctx context.Context) error {
	page, err := a.source.Queue(ctx, a.cfg.PageSize, 0)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.fallback = false
	a.hasMore = page.Meta.HasMore
	a.nextOffset = max(a.nextOffset, page.Meta.NextOffset)
	if a.animating {
		a.reloaded = append(a.reloaded, page.Items...)
		return nil
	}
	a.splice(page.Items)
	return nil
}

// splice inserts the unknown items at the injection point, keeping their order.
func (a *Agent) splice(items []protocol.QueueItem) {
	fresh := make([]protocol.QueueItem, 0, len(items))
	for _, it := range items {
		if _, ok := a.known[it.Title.ID]; ok {
			continue
		}
		a.dropPending(it.Title.ID)
		a.known[it.Title.ID] = struct{}{}
		fresh = append(fresh, it)
	}
	if len(fresh) == 0 {
		return
	}

	at := min(a.current+a.cfg.InjectOffset, len(a.queue))
	a.queue = slices.Insert(a.queue, at, fresh...)
}

// HandleEvent applies server pushes that touch the deck.
func (a *Agent) HandleEvent(ctx context.Context, env protocol.Envelope) error {
	switch env.Type {
	case protocol.TypePartnerLiked:
		var p protocol.PartnerLiked
		if err := env.Decode(&p); err != nil {
			return err
		}
		if p.Title != nil {
			a.InjectPartnerLike(*p.Title)
			return nil
		}
		if a.holds(p.TitleID) {
			return nil
		}
		title, err := a.source.Title(ctx, p.TitleID)
		if err != nil {
			return err
		}
		a.InjectPartnerLike(title)
	case protocol.TypePartnerAuthChanged:
		var p protocol.PartnerAuthChanged
		if err := env.Decode(&p); err != nil {
			return err
		}
		if p.HasWantToWatchList {
			return a.Reload(ctx)
		}
	}
	return nil
}

func (a *Agent) holds(id int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, ok := a.known[id]
	return ok
}

func fallbackItems(titles []protocol.Title) []protocol.QueueItem {
	items := make([]protocol.QueueItem, 0, len(titles))
	for _, t := range titles {
		items = append(items, protocol.QueueItem{Title: t, Source: SourceFallback})
	}
	return items
}
