// Package relay routes outbound events from the room coordinator to the
// transport layer, one buffered endpoint per live connection.
package relay

import (
	"fmt"
	"sync"
)

// Endpoint bridges the coordinator to a single connection's write loop via a
// buffered channel of encoded frames.
type Endpoint struct {
	connID string
	frames chan []byte
	mu     sync.Mutex
	closed bool
}

// NewEndpoint creates an Endpoint for the given connection identity.
//
// Precondition: connID must be non-empty.
// Postcondition: Returns an Endpoint with an open frames channel.
func NewEndpoint(connID string, bufferSize int) *Endpoint {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Endpoint{
		connID: connID,
		frames: make(chan []byte, bufferSize),
	}
}

// ConnID returns the connection identity this endpoint serves.
func (e *Endpoint) ConnID() string {
	return e.connID
}

// Push enqueues an encoded frame without blocking.
//
// Postcondition: The frame is enqueued, or an error if the endpoint is closed
// or its buffer is full. A failed push drops the frame; it is never retried.
func (e *Endpoint) Push(frame []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return fmt.Errorf("endpoint %s is closed", e.connID)
	}
	select {
	case e.frames <- frame:
		return nil
	default:
		return fmt.Errorf("endpoint %s frame buffer full", e.connID)
	}
}

// Frames returns the read-only frame channel.
// The connection's write loop drains this channel.
func (e *Endpoint) Frames() <-chan []byte {
	return e.frames
}

// Close marks the endpoint as closed and closes the frames channel.
//
// Postcondition: The frames channel is closed. Further Push calls return an error.
func (e *Endpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.closed {
		e.closed = true
		close(e.frames)
	}
	return nil
}

// IsClosed reports whether the endpoint has been closed.
func (e *Endpoint) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
