// Package ws provides the websocket transport: it accepts client
// connections, assigns each a connection identity, feeds inbound events to
// the room coordinator, and drains relay endpoints back to the wire.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/Rohit030919/vr-typing-server/internal/config"
	"github.com/Rohit030919/vr-typing-server/internal/relay"
)

// Coordinator is the presence state machine consumed by the transport.
// Satisfied by *room.Coordinator.
type Coordinator interface {
	Join(roomID, connID, displayName string) error
	Progress(roomID, connID string, index int)
	Finish(roomID, connID string, result json.RawMessage)
	Disconnect(connID string)
}

// Server accepts websocket connections and bridges them to the coordinator.
type Server struct {
	cfg    config.WebsocketConfig
	coord  Coordinator
	relay  *relay.Relay
	logger *zap.Logger

	httpSrv *http.Server
}

// NewServer creates a websocket Server.
//
// Precondition: coord, rel, and logger must be non-nil.
func NewServer(cfg config.WebsocketConfig, coord Coordinator, rel *relay.Relay, logger *zap.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		coord:  coord,
		relay:  rel,
		logger: logger,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
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
	s.logger.Info("websocket server listening",
		zap.String("addr", lis.Addr().String()),
	)
	if err := s.httpSrv.Serve(lis); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving websocket: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the listener and drains in-flight handlers.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.httpSrv.Shutdown(ctx)
}

// handleWS upgrades the connection, runs the read loop until the peer goes
// away, then tears the connection down and reports the disconnect.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.OriginPatterns,
	})
	if err != nil {
		s.logger.Error("websocket accept", zap.Error(err))
		return
	}
	c.SetReadLimit(s.cfg.ReadLimit)

	connID := uuid.NewString()
	ep := s.relay.Register(connID)
	s.logger.Info("connection opened", zap.String("conn_id", connID))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go s.writeLoop(ctx, c, ep)

	s.readLoop(ctx, c, connID)

	s.relay.Unregister(connID)
	s.coord.Disconnect(connID)
	_ = c.Close(websocket.StatusNormalClosure, "bye")
	s.logger.Info("connection closed", zap.String("conn_id", connID))
}

// readLoop decodes inbound frames and dispatches them until the connection
// errors or the context ends.
func (s *Server) readLoop(ctx context.Context, c *websocket.Conn, connID string) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText && typ != websocket.MessageBinary {
			continue
		}
		s.dispatch(connID, data)
	}
}

// writeLoop drains the relay endpoint to the wire and keeps the connection
// alive with periodic pings. Exits when the endpoint closes or ctx ends.
func (s *Server) writeLoop(ctx context.Context, c *websocket.Conn, ep *relay.Endpoint) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-ep.Frames():
			if !ok {
				return
			}
			if err := c.Write(ctx, websocket.MessageText, frame); err != nil {
				s.logger.Debug("write failed",
					zap.String("conn_id", ep.ConnID()),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			_ = c.Ping(ctx)
		case <-ctx.Done():
			return
		}
	}
}
