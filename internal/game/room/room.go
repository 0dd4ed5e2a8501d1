// Package room provides the room/presence coordinator for two-player races:
// the room store, the presence state machine, and abandoned-room reclamation.
package room

import (
	"encoding/json"
	"time"

	"github.com/Rohit030919/vr-typing-server/internal/protocol"
)

// MaxSeats is the number of participants a room can hold.
const MaxSeats = 2

// Participant is one seat in a room.
type Participant struct {
	// ConnID is the transport-assigned connection identity, stable while connected.
	ConnID string
	// Name is the trimmed, non-empty display name.
	Name string
	// Connected reports whether the participant's connection is currently live.
	Connected bool
	// Result holds the participant's finish payload, relayed to the opponent verbatim.
	Result json.RawMessage
	// JoinedAt is the admission timestamp, used for join-order tie-breaks.
	JoinedAt time.Time
}

// Room is an ordered collection of at most MaxSeats participants.
//
// Invariant: len(participants) <= MaxSeats; names are unique among connected
// participants.
//
// Concurrency: a Room is owned exclusively by the Store and is only read or
// mutated while holding the store's lock. It carries no lock of its own.
type Room struct {
	participants []*Participant
}

// Size returns the number of seats currently held.
func (r *Room) Size() int {
	return len(r.participants)
}

// Statuses returns (name, connected) pairs ordered by join order.
func (r *Room) Statuses() []protocol.PlayerStatus {
	statuses := make([]protocol.PlayerStatus, 0, len(r.participants))
	for _, p := range r.participants {
		statuses = append(statuses, protocol.PlayerStatus{Name: p.Name, Connected: p.Connected})
	}
	return statuses
}

// find returns the participant with the given connection identity.
func (r *Room) find(connID string) *Participant {
	for _, p := range r.participants {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

// opponentOf returns the first participant other than connID, in join order.
func (r *Room) opponentOf(connID string) *Participant {
	for _, p := range r.participants {
		if p.ConnID != connID {
			return p
		}
	}
	return nil
}

// firstConnected returns the first connected participant in join order.
func (r *Room) firstConnected() *Participant {
	for _, p := range r.participants {
		if p.Connected {
			return p
		}
	}
	return nil
}

// allDisconnected reports whether no participant is connected.
// An empty room counts as abandoned.
func (r *Room) allDisconnected() bool {
	for _, p := range r.participants {
		if p.Connected {
			return false
		}
	}
	return true
}

// removeMatching evicts any participant whose connection identity or display
// name (case-sensitive) matches the caller. A participant matching on both
// counts is removed once. This is the reconnection/takeover path.
func (r *Room) removeMatching(connID, name string) {
	kept := r.participants[:0]
	for _, p := range r.participants {
		if p.ConnID == connID || p.Name == name {
			continue
		}
		kept = append(kept, p)
	}
	r.participants = kept
}
