// Package protocol defines the wire-level event names and payload schemas
// exchanged between clients and the race server.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Inbound event names (client to server).
const (
	EventJoinRoom     = "join-room"
	EventProgress     = "progress"
	EventUserFinished = "user-finished"
	EventPing         = "ping"
)

// Outbound event names (server to client).
const (
	EventRoomUpdate           = "room-update"
	EventBothPlayersJoined    = "both-players-joined"
	EventOpponentProgress     = "opponent-progress"
	EventOpponentFinished     = "opponent-finished"
	EventOpponentDisconnected = "opponent-disconnected"
	EventError                = "error"
	EventPong                 = "pong"
)

// ErrInvalidPayload reports a payload that fails boundary validation.
// Malformed input is rejected here, before any room mutation.
var ErrInvalidPayload = errors.New("invalid payload")

// JoinRoom is the payload of a join-room event.
type JoinRoom struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

// Validate checks the join-room payload invariants.
//
// Postcondition: Returns nil iff RoomID is non-empty and PlayerName is
// non-empty after trimming surrounding whitespace.
func (j JoinRoom) Validate() error {
	if j.RoomID == "" {
		return fmt.Errorf("%w: roomId must not be empty", ErrInvalidPayload)
	}
	if strings.TrimSpace(j.PlayerName) == "" {
		return fmt.Errorf("%w: playerName must not be empty", ErrInvalidPayload)
	}
	return nil
}

// ProgressUpdate is the payload of a progress event.
type ProgressUpdate struct {
	RoomID string `json:"roomId"`
	Index  int    `json:"index"`
}

// Validate checks the progress payload invariants.
func (p ProgressUpdate) Validate() error {
	if p.RoomID == "" {
		return fmt.Errorf("%w: roomId must not be empty", ErrInvalidPayload)
	}
	if p.Index < 0 {
		return fmt.Errorf("%w: index must not be negative", ErrInvalidPayload)
	}
	return nil
}

// UserFinished is the payload of a user-finished event. UserData is kept as
// raw JSON and relayed to the opponent verbatim.
type UserFinished struct {
	RoomID   string          `json:"roomId"`
	UserData json.RawMessage `json:"userData"`
}

// Validate checks the user-finished payload invariants.
func (u UserFinished) Validate() error {
	if u.RoomID == "" {
		return fmt.Errorf("%w: roomId must not be empty", ErrInvalidPayload)
	}
	if len(u.UserData) == 0 || string(u.UserData) == "null" {
		return fmt.Errorf("%w: userData must not be empty", ErrInvalidPayload)
	}
	if !json.Valid(u.UserData) {
		return fmt.Errorf("%w: userData must be valid JSON", ErrInvalidPayload)
	}
	return nil
}

// PlayerStatus is one seat in a room-update broadcast.
type PlayerStatus struct {
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

// RoomUpdate is the payload of a room-update broadcast, ordered by join order.
type RoomUpdate struct {
	Players []PlayerStatus `json:"players"`
}

// OpponentProgress is the payload of an opponent-progress unicast.
// Timestamp is server time in milliseconds since the Unix epoch.
type OpponentProgress struct {
	Index     int   `json:"index"`
	Timestamp int64 `json:"timestamp"`
}

// ErrorInfo is the payload of an error event sent back to the offending client.
type ErrorInfo struct {
	Message string `json:"message"`
}
