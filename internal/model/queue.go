package model

type Source string

const (
	SourcePriority    Source = "priority"
	SourceBase        Source = "base"
	SourcePartnerLike Source = "partner_like"
)

type QueueItem struct {
	Title  MovieMeta
	Source Source
}

type QueueMeta struct {
	HasMore           bool
	PriorityRemaining int
	BaseRemaining     int
	NextOffset        int

	// Set when the catalog failed part way and the page is short.
	Degraded bool
}

type QueuePage struct {
	Items []QueueItem
	Meta  QueueMeta
}
