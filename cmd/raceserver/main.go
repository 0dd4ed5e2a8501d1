// Package main provides the race server binary: a websocket match server
// that pairs two players into a room and relays race events between them.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/Rohit030919/vr-typing-server/internal/config"
	"github.com/Rohit030919/vr-typing-server/internal/game/room"
	"github.com/Rohit030919/vr-typing-server/internal/httpapi"
	"github.com/Rohit030919/vr-typing-server/internal/observability"
	"github.com/Rohit030919/vr-typing-server/internal/relay"
	"github.com/Rohit030919/vr-typing-server/internal/server"
	"github.com/Rohit030919/vr-typing-server/internal/transport/ws"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting race server",
		zap.String("ws_addr", cfg.Websocket.Addr()),
		zap.String("health_addr", cfg.Health.Addr()),
		zap.Duration("reclaim_grace", cfg.Room.ReclaimGrace),
	)

	store := room.NewStore()
	reclaimer := room.NewReclaimer(store, cfg.Room.ReclaimGrace, logger)
	rel := relay.New(logger, cfg.Websocket.SendBuffer)
	coordinator := room.NewCoordinator(store, rel, reclaimer, logger)

	wsServer := ws.NewServer(cfg.Websocket, coordinator, rel, logger)
	healthServer := httpapi.NewServer(cfg.Health, store, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("websocket", wsServer)
	lifecycle.Add("health", healthServer)

	reclaimDone := make(chan struct{})
	lifecycle.Add("reclaimer", &server.FuncService{
		StartFn: func() error {
			stop := reclaimer.Start(cfg.Room.SweepInterval)
			<-reclaimDone
			stop()
			return nil
		},
		StopFn: func() {
			close(reclaimDone)
		},
	})

	logger.Info("race server initialized",
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
