package ws

import (
	"go.uber.org/zap"

	"github.com/Rohit030919/vr-typing-server/internal/protocol"
	"github.com/Rohit030919/vr-typing-server/internal/relay"
)

// dispatch routes one inbound frame to the coordinator. Any fault is isolated
// to this event: validation failures are reported back to the sender, and a
// panic is recovered and logged so one malformed message can never take down
// the coordinator or other rooms.
func (s *Server) dispatch(connID string, frame []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("panic handling inbound event",
				zap.String("conn_id", connID),
				zap.Any("panic", rec),
			)
		}
	}()

	env, err := protocol.Decode(frame)
	if err != nil {
		s.sendError(connID, err)
		return
	}

	switch env.Event {
	case protocol.EventJoinRoom:
		var join protocol.JoinRoom
		if err := protocol.DecodePayload(env, &join); err != nil {
			s.sendError(connID, err)
			return
		}
		if err := join.Validate(); err != nil {
			s.sendError(connID, err)
			return
		}
		if err := s.coord.Join(join.RoomID, connID, join.PlayerName); err != nil {
			s.sendError(connID, err)
		}

	case protocol.EventProgress:
		var progress protocol.ProgressUpdate
		if err := protocol.DecodePayload(env, &progress); err != nil {
			s.sendError(connID, err)
			return
		}
		if err := progress.Validate(); err != nil {
			s.sendError(connID, err)
			return
		}
		s.coord.Progress(progress.RoomID, connID, progress.Index)

	case protocol.EventUserFinished:
		var finished protocol.UserFinished
		if err := protocol.DecodePayload(env, &finished); err != nil {
			s.sendError(connID, err)
			return
		}
		if err := finished.Validate(); err != nil {
			s.sendError(connID, err)
			return
		}
		s.coord.Finish(finished.RoomID, connID, finished.UserData)

	case protocol.EventPing:
		s.relay.Deliver(relay.Delivery{
			ConnID: connID,
			Event:  relay.Event{Name: protocol.EventPong},
		})

	default:
		s.logger.Debug("ignoring unknown event",
			zap.String("conn_id", connID),
			zap.String("event", env.Event),
		)
	}
}

// sendError reports a rejected event back to the offending client only.
func (s *Server) sendError(connID string, err error) {
	s.logger.Debug("rejecting inbound event",
		zap.String("conn_id", connID),
		zap.Error(err),
	)
	s.relay.Deliver(relay.Delivery{
		ConnID: connID,
		Event:  relay.Event{Name: protocol.EventError, Payload: protocol.ErrorInfo{Message: err.Error()}},
	})
}
