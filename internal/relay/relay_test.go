package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rohit030919/vr-typing-server/internal/protocol"
)

func TestEndpoint_Push(t *testing.T) {
	ep := NewEndpoint("c1", 4)
	require.NoError(t, ep.Push([]byte("hello")))

	frame := <-ep.Frames()
	assert.Equal(t, []byte("hello"), frame)
}

func TestEndpoint_PushClosed(t *testing.T) {
	ep := NewEndpoint("c1", 4)
	require.NoError(t, ep.Close())
	assert.True(t, ep.IsClosed())
	assert.Error(t, ep.Push([]byte("fail")))
}

func TestEndpoint_PushFull(t *testing.T) {
	ep := NewEndpoint("c1", 1)
	require.NoError(t, ep.Push([]byte("first")))
	err := ep.Push([]byte("overflow"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "buffer full")
}

func TestEndpoint_CloseIdempotent(t *testing.T) {
	ep := NewEndpoint("c1", 4)
	require.NoError(t, ep.Close())
	require.NoError(t, ep.Close())
	assert.True(t, ep.IsClosed())
}

func TestRelay_RegisterAndDeliver(t *testing.T) {
	r := New(zap.NewNop(), 8)
	ep := r.Register("c1")
	assert.Equal(t, 1, r.EndpointCount())

	r.Deliver(Delivery{
		ConnID: "c1",
		Event:  Event{Name: protocol.EventOpponentProgress, Payload: protocol.OpponentProgress{Index: 5, Timestamp: 1000}},
	})

	frame := <-ep.Frames()
	env, err := protocol.Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, protocol.EventOpponentProgress, env.Event)

	var p protocol.OpponentProgress
	require.NoError(t, protocol.DecodePayload(env, &p))
	assert.Equal(t, 5, p.Index)
}

func TestRelay_RegisterReplacesPrevious(t *testing.T) {
	r := New(zap.NewNop(), 8)
	old := r.Register("c1")
	fresh := r.Register("c1")

	assert.True(t, old.IsClosed())
	assert.False(t, fresh.IsClosed())
	assert.Equal(t, 1, r.EndpointCount())
}

func TestRelay_DeliverUnknownTarget(t *testing.T) {
	r := New(zap.NewNop(), 8)
	// Must not panic or block.
	r.Deliver(Delivery{ConnID: "ghost", Event: Event{Name: protocol.EventBothPlayersJoined}})
}

func TestRelay_DeliverFullBufferDrops(t *testing.T) {
	r := New(zap.NewNop(), 1)
	ep := r.Register("c1")

	ev := Event{Name: protocol.EventBothPlayersJoined}
	r.Deliver(Delivery{ConnID: "c1", Event: ev})
	r.Deliver(Delivery{ConnID: "c1", Event: ev}) // dropped, not blocked

	<-ep.Frames()
	select {
	case frame := <-ep.Frames():
		t.Fatalf("expected second frame to be dropped, got %s", frame)
	default:
	}
}

func TestRelay_Unregister(t *testing.T) {
	r := New(zap.NewNop(), 8)
	ep := r.Register("c1")
	r.Unregister("c1")

	assert.True(t, ep.IsClosed())
	assert.Equal(t, 0, r.EndpointCount())

	r.Unregister("c1") // no-op
}
