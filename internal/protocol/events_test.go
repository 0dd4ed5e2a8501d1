package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinRoomValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload JoinRoom
		wantErr bool
	}{
		{"valid", JoinRoom{RoomID: "r1", PlayerName: "Alice"}, false},
		{"name needs trimming", JoinRoom{RoomID: "r1", PlayerName: "  Alice  "}, false},
		{"empty room", JoinRoom{RoomID: "", PlayerName: "Alice"}, true},
		{"empty name", JoinRoom{RoomID: "r1", PlayerName: ""}, true},
		{"whitespace name", JoinRoom{RoomID: "r1", PlayerName: "   "}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPayload)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProgressUpdateValidate(t *testing.T) {
	assert.NoError(t, ProgressUpdate{RoomID: "r1", Index: 0}.Validate())
	assert.NoError(t, ProgressUpdate{RoomID: "r1", Index: 42}.Validate())
	assert.ErrorIs(t, ProgressUpdate{RoomID: "", Index: 1}.Validate(), ErrInvalidPayload)
	assert.ErrorIs(t, ProgressUpdate{RoomID: "r1", Index: -1}.Validate(), ErrInvalidPayload)
}

func TestUserFinishedValidate(t *testing.T) {
	valid := UserFinished{RoomID: "r1", UserData: json.RawMessage(`{"name":"Alice","wpm":92}`)}
	assert.NoError(t, valid.Validate())

	assert.ErrorIs(t, UserFinished{RoomID: "", UserData: valid.UserData}.Validate(), ErrInvalidPayload)
	assert.ErrorIs(t, UserFinished{RoomID: "r1"}.Validate(), ErrInvalidPayload)
	assert.ErrorIs(t, UserFinished{RoomID: "r1", UserData: json.RawMessage("null")}.Validate(), ErrInvalidPayload)
	assert.ErrorIs(t, UserFinished{RoomID: "r1", UserData: json.RawMessage("{broken")}.Validate(), ErrInvalidPayload)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	frame, err := Encode(EventRoomUpdate, RoomUpdate{
		Players: []PlayerStatus{{Name: "Alice", Connected: true}, {Name: "Bob", Connected: false}},
	})
	require.NoError(t, err)

	env, err := Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, EventRoomUpdate, env.Event)

	var update RoomUpdate
	require.NoError(t, DecodePayload(env, &update))
	require.Len(t, update.Players, 2)
	assert.Equal(t, "Alice", update.Players[0].Name)
	assert.False(t, update.Players[1].Connected)
}

func TestEncodeNoPayload(t *testing.T) {
	frame, err := Encode(EventBothPlayersJoined, nil)
	require.NoError(t, err)

	env, err := Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, EventBothPlayersJoined, env.Event)
	assert.Empty(t, env.Data)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDecodeMissingEvent(t *testing.T) {
	_, err := Decode([]byte(`{"data":{"roomId":"r1"}}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDecodePayloadMissingBody(t *testing.T) {
	env := Envelope{Event: EventJoinRoom}
	var join JoinRoom
	assert.ErrorIs(t, DecodePayload(env, &join), ErrInvalidPayload)
}
