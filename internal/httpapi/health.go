// Package httpapi provides the read-only HTTP status surface.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Rohit030919/vr-typing-server/internal/config"
	"github.com/Rohit030919/vr-typing-server/internal/game/room"
)

// HealthStatus is the /health response body.
type HealthStatus struct {
	Status       string `json:"status"`
	Rooms        int    `json:"rooms"`
	TotalPlayers int    `json:"totalPlayers"`
}

// Server exposes room counts over HTTP. It only reads the store and never
// mutates coordinator state.
type Server struct {
	cfg    config.HealthConfig
	store  *room.Store
	logger *zap.Logger

	httpSrv *http.Server
}

// NewServer creates the health Server.
//
// Precondition: store and logger must be non-nil.
func NewServer(cfg config.HealthConfig, store *room.Store, logger *zap.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		store:  store,
		logger: logger,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	s.httpSrv = &http.Server{
		Addr:    cfg.Addr(),
		Handler: mux,
	}
	return s
}

// Start listens on the configured address and serves until Stop is called.
// It blocks; intended to run under the lifecycle manager.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}
	s.logger.Info("health server listening",
		zap.String("addr", lis.Addr().String()),
	)
	if err := s.httpSrv.Serve(lis); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving health: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the listener.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rooms, participants := s.store.Counts()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(HealthStatus{
		Status:       "ok",
		Rooms:        rooms,
		TotalPlayers: participants,
	}); err != nil {
		s.logger.Error("writing health response", zap.Error(err))
	}
}
