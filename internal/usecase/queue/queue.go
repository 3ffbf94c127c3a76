package usecase_queue

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/kinoswap/matchroom/internal/metrics"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
	usecase_room "github.com/humanbelnik/kinoswap/matchroom/internal/usecase/room"
)

var ErrUpstreamUnavailable = errors.New("catalog unavailable")

type Registry interface {
	With(code model.RoomCode, fn func(room *model.Room) error) error
}

type Catalog interface {
	// SeededPage reads the catalog in an order fixed by seed.
	SeededPage(ctx context.Context, seed int64, offset, limit int) ([]model.MovieMeta, error)
	Count(ctx context.Context) (int, error)
}

type Watchlist interface {
	// WantToWatch returns every title when limit <= 0.
	WantToWatch(ctx context.Context, userID uuid.UUID, limit int) ([]model.MovieMeta, error)
}

type Config struct {
	PriorityRatio float64
	BlockSize     int
	DefaultLimit  int
	MaxLimit      int
}

type Usecase struct {
	registry  Registry
	catalog   Catalog
	watchlist Watchlist
	cfg       Config
	logger    *slog.Logger
}

func New(
	registry Registry,
	catalog Catalog,
	watchlist Watchlist,
	cfg Config,
) *Usecase {
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = 40
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}
	cfg.PriorityRatio = math.Max(0, math.Min(1, cfg.PriorityRatio))

	return &Usecase{
		registry:  registry,
		catalog:   catalog,
		watchlist: watchlist,
		cfg:       cfg,
		logger:    slog.Default(),
	}
}

type snapshot struct {
	mode    model.Mode
	seed    int64
	partner model.Identity
	seen    map[model.TitleID]struct{}
}

// Fetch serves one page of slot's queue: offset 0 builds the initial page,
// anything else continues the base traversal. Catalog and watchlist calls
// happen outside the room lock.
func (u *Usecase) Fetch(ctx context.Context, code model.RoomCode, slot model.Slot, identity model.Identity, limit, offset int) (model.QueuePage, error) {
	if offset < 0 {
		return model.QueuePage{}, usecase_room.ErrInvalidInput
	}
	limit = u.clampLimit(limit)
	start := time.Now()

	snap, err := u.snapshot(code, slot, identity)
	if err != nil {
		return model.QueuePage{}, err
	}

	var page model.QueuePage
	if offset == 0 {
		page = u.buildInitial(ctx, snap, slot, limit)
	} else {
		page = u.buildMore(ctx, snap, slot, limit, offset)
	}

	page.Items, err = u.commit(code, slot, page.Items)
	if err != nil {
		return model.QueuePage{}, err
	}

	result := "full"
	if page.Meta.Degraded {
		result = "degraded"
	}
	metrics.QueuePages.WithLabelValues(result).Inc()
	metrics.QueueBuildDuration.Observe(time.Since(start).Seconds())
	return page, nil
}

func (u *Usecase) clampLimit(limit int) int {
	if limit <= 0 {
		return u.cfg.DefaultLimit
	}
	return min(limit, u.cfg.MaxLimit)
}

func (u *Usecase) snapshot(code model.RoomCode, slot model.Slot, identity model.Identity) (snapshot, error) {
	var snap snapshot
	err := u.registry.With(code, func(room *model.Room) error {
		seat, ok := room.Seat(slot)
		if !ok || !seat.Identity.Same(identity) {
			return usecase_room.ErrForbidden
		}
		if room.Status == model.StatusExpired {
			return usecase_room.ErrExpired
		}

		snap.mode = room.Mode
		snap.seed = room.PoolSeed
		if partner, ok := room.Seat(slot.Partner()); ok {
			snap.partner = partner.Identity
		}
		snap.seen = make(map[model.TitleID]struct{}, len(seat.Delivered)+seat.Ledger.Len())
		for id := range seat.Delivered {
			snap.seen[id] = struct{}{}
		}
		for _, r := range seat.Ledger.Records() {
			snap.seen[r.TitleID] = struct{}{}
		}
		return nil
	})
	return snap, err
}

// commit drops anything a concurrent fetch handed out meanwhile and marks
// the rest as delivered.
func (u *Usecase) commit(code model.RoomCode, slot model.Slot, items []model.QueueItem) ([]model.QueueItem, error) {
	kept := make([]model.QueueItem, 0, len(items))
	err := u.registry.With(code, func(room *model.Room) error {
		seat, ok := room.Seat(slot)
		if !ok {
			return usecase_room.ErrForbidden
		}
		for _, it := range items {
			if seat.Seen(it.Title.ID) {
				continue
			}
			seat.Delivered[it.Title.ID] = it.Source
			kept = append(kept, it)
		}
		return nil
	})
	return kept, err
}

// Priority titles come first, capped at PriorityRatio of the page. The rest
// is base.
func (u *Usecase) buildInitial(ctx context.Context, snap snapshot, slot model.Slot, limit int) model.QueuePage {
	var (
		items    []model.QueueItem
		meta     model.QueueMeta
		degraded bool
	)

	if snap.mode == model.ModePair && snap.partner.Authenticated() {
		list, err := u.watchlist.WantToWatch(ctx, snap.partner.UserID, 0)
		if err != nil {
			u.logger.Warn("partner watchlist unavailable", slog.String("error", err.Error()))
			degraded = true
		}

		capacity := u.priorityCap(limit)
		for _, mm := range list {
			if _, ok := snap.seen[mm.ID]; ok {
				continue
			}
			if len(items) >= capacity {
				meta.PriorityRemaining++
				continue
			}
			snap.seen[mm.ID] = struct{}{}
			items = append(items, model.QueueItem{Title: mm, Source: model.SourcePriority})
		}
	}

	base := u.traverse(ctx, snap, slot, 0, limit-len(items))
	items = append(items, base.Items...)

	meta.HasMore = base.Meta.HasMore
	meta.BaseRemaining = base.Meta.BaseRemaining
	meta.NextOffset = base.Meta.NextOffset
	meta.Degraded = degraded || base.Meta.Degraded
	return model.QueuePage{Items: items, Meta: meta}
}

func (u *Usecase) buildMore(ctx context.Context, snap snapshot, slot model.Slot, limit, offset int) model.QueuePage {
	return u.traverse(ctx, snap, slot, offset, limit)
}

func (u *Usecase) priorityCap(limit int) int {
	return int(math.Floor(float64(limit) * u.cfg.PriorityRatio))
}

// traverse walks the slot's base order from offset until want new titles are
// collected. Offsets count traversal positions, skipped titles included.
// A catalog failure ends the page early with HasMore=false.
func (u *Usecase) traverse(ctx context.Context, snap snapshot, slot model.Slot, offset, want int) model.QueuePage {
	var page model.QueuePage
	page.Meta.NextOffset = offset

	total, err := u.catalog.Count(ctx)
	if err != nil {
		u.logger.Warn("catalog count failed", slog.String("error", err.Error()))
		page.Meta.Degraded = true
		return page
	}

	var (
		pos      = offset
		blockIdx = -1
		block    []model.MovieMeta
		size     = u.cfg.BlockSize
	)
	for len(page.Items) < want && pos < total {
		b := pos / size
		if b != blockIdx {
			block, err = u.block(ctx, snap.seed, slot, b)
			if err != nil {
				u.logger.Warn("catalog page failed",
					slog.Int("block", b),
					slog.String("error", err.Error()))
				page.Meta.Degraded = true
				break
			}
			blockIdx = b
		}

		i := pos % size
		if i >= len(block) {
			// Short block: the catalog ends here.
			pos = total
			break
		}
		mm := block[i]
		pos++

		if _, ok := snap.seen[mm.ID]; ok {
			continue
		}
		snap.seen[mm.ID] = struct{}{}
		page.Items = append(page.Items, model.QueueItem{Title: mm, Source: model.SourceBase})
	}

	page.Meta.NextOffset = pos
	page.Meta.HasMore = !page.Meta.Degraded && pos < total
	page.Meta.BaseRemaining = max(total-pos, 0)
	return page
}

// block returns catalog block b as seen by slot: both slots share the block
// contents, each shuffles it with its own salt.
func (u *Usecase) block(ctx context.Context, seed int64, slot model.Slot, b int) ([]model.MovieMeta, error) {
	size := u.cfg.BlockSize
	mm, err := u.catalog.SeededPage(ctx, seed, b*size, size)
	if err != nil {
		return nil, errors.Join(ErrUpstreamUnavailable, err)
	}

	shuffled := make([]model.MovieMeta, len(mm))
	copy(shuffled, mm)
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(b)<<2|slotSalt(slot)))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled, nil
}

func slotSalt(slot model.Slot) uint64 {
	if slot == model.SlotB {
		return 2
	}
	return 1
}
