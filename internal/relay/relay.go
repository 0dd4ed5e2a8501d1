package relay

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Rohit030919/vr-typing-server/internal/protocol"
)

// Event is a named outbound event with its payload.
type Event struct {
	Name    string
	Payload any
}

// Delivery targets one connection identity with one event.
// The coordinator resolves targets while holding the room lock and hands the
// resulting tuples to the relay after the mutation completes.
type Delivery struct {
	ConnID string
	Event  Event
}

// Relay owns the endpoint registry and performs fire-and-forget delivery.
// All methods are safe for concurrent use.
type Relay struct {
	logger     *zap.Logger
	bufferSize int

	mu        sync.RWMutex
	endpoints map[string]*Endpoint
}

// New creates an empty Relay.
//
// Precondition: logger must be non-nil.
func New(logger *zap.Logger, bufferSize int) *Relay {
	return &Relay{
		logger:     logger,
		bufferSize: bufferSize,
		endpoints:  make(map[string]*Endpoint),
	}
}

// Register creates and registers an endpoint for connID, replacing and
// closing any previous endpoint under the same identity.
//
// Precondition: connID must be non-empty.
// Postcondition: Returns the registered Endpoint.
func (r *Relay) Register(connID string) *Endpoint {
	ep := NewEndpoint(connID, r.bufferSize)

	r.mu.Lock()
	prev := r.endpoints[connID]
	r.endpoints[connID] = ep
	r.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	return ep
}

// Unregister removes and closes the endpoint for connID. No-op if absent.
func (r *Relay) Unregister(connID string) {
	r.mu.Lock()
	ep := r.endpoints[connID]
	delete(r.endpoints, connID)
	r.mu.Unlock()

	if ep != nil {
		_ = ep.Close()
	}
}

// EndpointCount returns the number of registered endpoints.
func (r *Relay) EndpointCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.endpoints)
}

// Deliver encodes each event once and pushes the frame to its target
// endpoint. Delivery is best-effort: an unknown target, a closed endpoint, or
// a full buffer drops the frame without blocking or retrying, and never rolls
// back the state mutation that produced it.
func (r *Relay) Deliver(deliveries ...Delivery) {
	for _, d := range deliveries {
		frame, err := protocol.Encode(d.Event.Name, d.Event.Payload)
		if err != nil {
			r.logger.Error("encoding outbound event",
				zap.String("event", d.Event.Name),
				zap.String("conn_id", d.ConnID),
				zap.Error(err),
			)
			continue
		}

		r.mu.RLock()
		ep := r.endpoints[d.ConnID]
		r.mu.RUnlock()

		if ep == nil {
			r.logger.Debug("dropping event for unknown connection",
				zap.String("event", d.Event.Name),
				zap.String("conn_id", d.ConnID),
			)
			continue
		}
		if err := ep.Push(frame); err != nil {
			r.logger.Debug("dropping undeliverable event",
				zap.String("event", d.Event.Name),
				zap.String("conn_id", d.ConnID),
				zap.Error(err),
			)
		}
	}
}
