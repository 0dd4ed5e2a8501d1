package protocol

import (
	"encoding/json"
	"fmt"
)

// Envelope wraps every frame sent over the wire.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode marshals an event name and payload into a wire frame.
//
// Precondition: event must be non-empty; payload may be nil for events
// without a body.
// Postcondition: Returns an encoded JSON frame or a non-nil error.
func Encode(event string, payload any) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshalling %s payload: %w", event, err)
		}
		env.Data = data
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshalling %s envelope: %w", event, err)
	}
	return frame, nil
}

// Decode unmarshals a wire frame into an Envelope.
//
// Postcondition: Returns the decoded envelope, or ErrInvalidPayload when the
// frame is not valid JSON or names no event.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("%w: missing event name", ErrInvalidPayload)
	}
	return env, nil
}

// DecodePayload unmarshals the envelope body into dst.
//
// Precondition: dst must be a non-nil pointer.
// Postcondition: Returns ErrInvalidPayload when the body is absent or malformed.
func DecodePayload(env Envelope, dst any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: %s requires a payload", ErrInvalidPayload, env.Event)
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return fmt.Errorf("%w: decoding %s payload: %v", ErrInvalidPayload, env.Event, err)
	}
	return nil
}
