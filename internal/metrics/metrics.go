package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hubcalls_connections_active",
			Help: "Open websocket connections",
		},
	)

	RoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hubcalls_rooms_active",
			Help: "Rooms with at least one member",
		},
	)

	MembersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hubcalls_members_active",
			Help: "Members across all rooms",
		},
	)

	JoinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hubcalls_joins_total",
			Help: "Join attempts by result",
		},
		[]string{"result"}, // "ok", "conflict", "invalid"
	)

	EvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hubcalls_evictions_total",
			Help: "Duplicate-name evictions by cause",
		},
		[]string{"cause"}, // "force", "stale"
	)

	KicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hubcalls_kicks_total",
			Help: "Members removed by the room owner",
		},
	)

	GraceExpiries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hubcalls_grace_expiries_total",
			Help: "Disconnects finalized after the grace window",
		},
	)

	SignalsRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hubcalls_signals_relayed_total",
			Help: "Point-to-point signaling payloads forwarded",
		},
		[]string{"kind"},
	)

	ChatMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hubcalls_chat_messages_total",
			Help: "User chat messages accepted",
		},
	)

	PreviewFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hubcalls_preview_fetches_total",
			Help: "Link preview lookups by outcome",
		},
		[]string{"outcome"}, // "hit", "miss", "error"
	)
)
