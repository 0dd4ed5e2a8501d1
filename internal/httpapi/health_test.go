package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rohit030919/vr-typing-server/internal/config"
	"github.com/Rohit030919/vr-typing-server/internal/game/room"
	"github.com/Rohit030919/vr-typing-server/internal/relay"
)

func newHealthServer(store *room.Store) *Server {
	cfg := config.HealthConfig{Host: "127.0.0.1", Port: 8080}
	return NewServer(cfg, store, zap.NewNop())
}

func TestHealthEmpty(t *testing.T) {
	s := newHealthServer(room.NewStore())

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, HealthStatus{Status: "ok"}, status)
}

func TestHealthCountsRoomsAndPlayers(t *testing.T) {
	store := room.NewStore()
	rel := &discardRelay{}
	rec := room.NewReclaimer(store, room.DefaultReclaimGrace, zap.NewNop())
	coord := room.NewCoordinator(store, rel, rec, zap.NewNop())

	require.NoError(t, coord.Join("r1", "c1", "Alice"))
	require.NoError(t, coord.Join("r1", "c2", "Bob"))
	require.NoError(t, coord.Join("r2", "c3", "Cara"))

	s := newHealthServer(store)
	w := httptest.NewRecorder()
	s.handleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var status HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, 2, status.Rooms)
	assert.Equal(t, 3, status.TotalPlayers)
}

func TestHealthRejectsNonGet(t *testing.T) {
	s := newHealthServer(room.NewStore())

	w := httptest.NewRecorder()
	s.handleHealth(w, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

type discardRelay struct{}

func (discardRelay) Deliver(...relay.Delivery) {}
