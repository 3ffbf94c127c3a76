package protocol

import "github.com/humanbelnik/kinoswap/matchroom/internal/model"

// Title is the wire form of model.MovieMeta, shared by the HTTP API and
// websocket payloads.
type Title struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	PosterLink string   `json:"posterLink,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	Year       int      `json:"year,omitempty"`
	Rating     float64  `json:"rating,omitempty"`
	Runtime    int      `json:"runtime,omitempty"`
	Overview   string   `json:"overview,omitempty"`
}

func FromDomain(mm model.MovieMeta) Title {
	return Title{
		ID:         int64(mm.ID),
		Title:      mm.Title,
		PosterLink: mm.PosterLink,
		Genres:     mm.Genres,
		Year:       mm.Year,
		Rating:     mm.Rating,
		Runtime:    mm.Runtime,
		Overview:   mm.Overview,
	}
}

func (t Title) ToDomain() model.MovieMeta {
	return model.MovieMeta{
		ID:         model.TitleID(t.ID),
		Title:      t.Title,
		PosterLink: t.PosterLink,
		Genres:     t.Genres,
		Year:       t.Year,
		Rating:     t.Rating,
		Runtime:    t.Runtime,
		Overview:   t.Overview,
	}
}

type QueueItem struct {
	Title  Title  `json:"title"`
	Source string `json:"source"`
}

type QueueMeta struct {
	HasMore           bool `json:"hasMore"`
	PriorityRemaining int  `json:"priorityRemaining"`
	BaseRemaining     int  `json:"baseRemaining"`
	NextOffset        int  `json:"nextOffset"`
	Degraded          bool `json:"degraded,omitempty"`
}

type QueuePage struct {
	Items []QueueItem `json:"items"`
	Meta  QueueMeta   `json:"meta"`
}

func QueuePageFromDomain(p model.QueuePage) QueuePage {
	items := make([]QueueItem, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, QueueItem{Title: FromDomain(it.Title), Source: string(it.Source)})
	}
	return QueuePage{
		Items: items,
		Meta: QueueMeta{
			HasMore:           p.Meta.HasMore,
			PriorityRemaining: p.Meta.PriorityRemaining,
			BaseRemaining:     p.Meta.BaseRemaining,
			NextOffset:        p.Meta.NextOffset,
			Degraded:          p.Meta.Degraded,
		},
	}
}

func (p QueuePage) ToDomain() model.QueuePage {
	items := make([]model.QueueItem, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, model.QueueItem{Title: it.Title.ToDomain(), Source: model.Source(it.Source)})
	}
	return model.QueuePage{
		Items: items,
		Meta: model.QueueMeta{
			HasMore:           p.Meta.HasMore,
			PriorityRemaining: p.Meta.PriorityRemaining,
			BaseRemaining:     p.Meta.BaseRemaining,
			NextOffset:        p.Meta.NextOffset,
			Degraded:          p.Meta.Degraded,
		},
	}
}
