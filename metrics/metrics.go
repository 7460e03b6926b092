// Package metrics exposes the server's Prometheus instrumentation: bounded-
// cardinality gauges and counters describing room/player counts, tick
// timing, and match outcomes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "brawlroom_tick_duration_seconds",
		Help:    "Wall-clock time spent processing one room tick",
		Buckets: []float64{0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.032},
	})

	activeRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "brawlroom_active_rooms",
		Help: "Currently tracked rooms",
	})

	activePlayers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "brawlroom_active_players",
		Help: "Currently connected players across all rooms",
	})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "brawlroom_websocket_connections_active",
		Help: "Currently open websocket connections",
	})

	killsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brawlroom_kills_total",
		Help: "Total player kills across all rooms",
	})

	matchesEndedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brawlroom_matches_ended_total",
		Help: "Total matches that reached the win score",
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brawlroom_http_requests_total",
		Help: "Total HTTP requests by route and status",
	}, []string{"route", "status"})
)

// RecordTick records how long one room tick took to process.
func RecordTick(d time.Duration) {
	tickDuration.Observe(d.Seconds())
}

// SetRoomCount sets the active-room gauge.
func SetRoomCount(n int) {
	activeRooms.Set(float64(n))
}

// SetPlayerCount sets the active-player gauge.
func SetPlayerCount(n int) {
	activePlayers.Set(float64(n))
}

// SetWSConnections sets the active-websocket-connection gauge.
func SetWSConnections(n int) {
	wsConnectionsActive.Set(float64(n))
}

// IncrementWSConnections bumps the active-websocket-connection gauge by one.
func IncrementWSConnections() { wsConnectionsActive.Inc() }

// DecrementWSConnections drops the active-websocket-connection gauge by one.
func DecrementWSConnections() { wsConnectionsActive.Dec() }

// RecordKill increments the total-kills counter.
func RecordKill() {
	killsTotal.Inc()
}

// RecordMatchEnd increments the total-matches-ended counter.
func RecordMatchEnd() {
	matchesEndedTotal.Inc()
}

// RecordHTTPRequest increments the HTTP request counter for route/status.
func RecordHTTPRequest(route, status string) {
	httpRequestsTotal.WithLabelValues(route, status).Inc()
}
