package main

import (
	"fmt"
	"net/http"
	"os"
	"slices"
	"time"

	"go.uber.org/zap"

	"brawlroom/config"
	"brawlroom/httpapi"
	"brawlroom/metrics"
	"brawlroom/room"
	"brawlroom/roommgr"
	"brawlroom/transport"
)

func main() {
	if !slices.Contains(os.Args, "--verbose") {
		quieter := zap.IncreaseLevel(zap.InfoLevel)

		transport.Logger = transport.Logger.WithOptions(quieter)
		room.Logger = room.Logger.WithOptions(quieter)
		roommgr.Logger = roommgr.Logger.WithOptions(quieter)
		httpapi.Logger = httpapi.Logger.WithOptions(quieter)
	}

	cfg := config.Load()

	hub := transport.NewHub(nil, cfg.Server.InboundRatePerS, cfg.Server.InboundBurst)

	mgr := roommgr.New(hub.Scheduler(), cfg.Sim)

	hub.SetRouter(mgr)

	hub.OnDisconnect(func(*transport.Client) {
		metrics.DecrementWSConnections()
	})

	hub.Start()

	router := httpapi.NewRouter(hub, mgr)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	transport.Logger.Info("starting server", zap.String("addr", addr))

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	transport.Logger.Panic("http server exited", zap.Error(server.ListenAndServe()))
}
