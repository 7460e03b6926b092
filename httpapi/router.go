// Package httpapi exposes the room-listing and websocket-upgrade surface
// over HTTP, built on chi the way the rest of the retrieval pack's combat
// servers do.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"brawlroom/metrics"
	"brawlroom/roommgr"
	"brawlroom/transport"
)

// Logger is the package-level structured logger.
var Logger = zap.Must(zap.NewDevelopment())

var upgrader = websocket.Upgrader{
	// Connections arrive from arbitrary players' browsers/devices, so
	// origin is intentionally not restricted here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// roomSummary is the wire-facing shape of one room in the /rooms listing.
type roomSummary struct {
	ID        string `json:"id"`
	RedCount  int    `json:"redCount"`
	BlueCount int    `json:"blueCount"`
	GameState string `json:"gameState"`
}

// recordMetrics records every request's route pattern and status code to
// metrics.RecordHTTPRequest. The route pattern (not the raw path) keeps the
// metric's cardinality bounded regardless of query strings or future
// path-parameterized routes.
func recordMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

		next.ServeHTTP(ww, req)

		route := chi.RouteContext(req.Context()).RoutePattern()

		if route == "" {
			route = req.URL.Path
		}

		metrics.RecordHTTPRequest(route, strconv.Itoa(ww.Status()))
	})
}

// NewRouter builds the HTTP router: CORS + request logging + recovery
// middleware, a /rooms listing endpoint, /healthz, /metrics, and the /ws
// upgrade endpoint that feeds hub.
func NewRouter(hub *transport.Hub, mgr *roommgr.Manager) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(recordMetrics)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/rooms", func(w http.ResponseWriter, req *http.Request) {
		rooms := mgr.Rooms()
		summaries := make([]roomSummary, 0, len(rooms))

		for _, room := range rooms {
			meta := room.Metadata()
			summaries = append(summaries, roomSummary{
				ID:        room.ID,
				RedCount:  meta.RedCount,
				BlueCount: meta.BlueCount,
				GameState: meta.GameState,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(summaries)
	})

	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		l := Logger.With(zap.String("from", req.RemoteAddr))

		ws, err := upgrader.Upgrade(w, req, nil)

		if err != nil {
			l.Error("failed to upgrade to websocket connection", zap.Error(err))
			return
		}

		l.Debug("upgraded connection to websocket")

		metrics.IncrementWSConnections()

		hub.AddConnection(ws)
	})

	return r
}
