// Package metrics exposes Prometheus instrumentation for rooms, connections,
// swipes and the catalog path.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RoomsLive tracks rooms currently held by the registry.
	RoomsLive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "matchroom_rooms_live",
		Help: "Rooms currently held in the session registry",
	})

	// RoomsCreated counts created rooms, labeled by mode: "pair" or "solo".
	RoomsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchroom_rooms_created_total",
		Help: "Rooms created",
	}, []string{"mode"})

	// RoomsExpired counts expirations, labeled by reason: "inactivity",
	// "grace", "abandoned".
	RoomsExpired = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchroom_rooms_expired_total",
		Help: "Rooms moved to expired",
	}, []string{"reason"})

	Connections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "matchroom_ws_connections",
		Help: "Open websocket connections",
	})

	// Messages counts inbound frames by outcome: "accepted", "rejected",
	// "rate_limited", "malformed".
	Messages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchroom_ws_messages_total",
		Help: "Inbound websocket messages",
	}, []string{"outcome"})

	// DroppedEvents counts outbound events dropped on a full send buffer.
	DroppedEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matchroom_ws_dropped_events_total",
		Help: "Outbound events dropped because the client could not keep up",
	})

	Swipes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchroom_swipes_total",
		Help: "Recorded swipes",
	}, []string{"action"})

	Matches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchroom_matches_total",
		Help: "Matches found",
	}, []string{"mode"})

	// QueuePages counts served queue pages, labeled "full" or "degraded".
	QueuePages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchroom_queue_pages_total",
		Help: "Candidate queue pages served",
	}, []string{"result"})

	QueueBuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "matchroom_queue_build_seconds",
		Help:    "Time spent building one queue page",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})

	// CatalogBreakerState is 0 closed, 1 half-open, 2 open.
	CatalogBreakerState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "matchroom_catalog_breaker_state",
		Help: "Catalog circuit breaker state",
	})
)

func init() {
	prometheus.MustRegister(
		RoomsLive,
		RoomsCreated,
		RoomsExpired,
		Connections,
		Messages,
		DroppedEvents,
		Swipes,
		Matches,
		QueuePages,
		QueueBuildDuration,
		CatalogBreakerState,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
