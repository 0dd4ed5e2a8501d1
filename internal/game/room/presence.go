package room

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Rohit030919/vr-typing-server/internal/protocol"
	"github.com/Rohit030919/vr-typing-server/internal/relay"
)

// ErrInvalidInput reports a join with an empty display name after trimming.
var ErrInvalidInput = errors.New("invalid input")

// ErrRoomFull reports a join against a room already holding two distinct,
// still-valid seats.
var ErrRoomFull = errors.New("room full")

// Deliverer delivers resolved outbound events. Satisfied by *relay.Relay.
type Deliverer interface {
	Deliver(deliveries ...relay.Delivery)
}

// Coordinator is the presence state machine. It admits joins, deduplicates
// reconnecting participants, relays progress and results, marks disconnects,
// and arms reclamation of abandoned rooms.
//
// Every entry point applies its room mutation atomically through the Store,
// resolves target connection identities while holding the room, and hands the
// resulting deliveries to the relay only after the mutation completes.
type Coordinator struct {
	store     *Store
	relay     Deliverer
	reclaimer *Reclaimer
	logger    *zap.Logger
	now       func() time.Time
}

// NewCoordinator creates a Coordinator.
//
// Precondition: store, rel, reclaimer, and logger must be non-nil.
func NewCoordinator(store *Store, rel Deliverer, reclaimer *Reclaimer, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		store:     store,
		relay:     rel,
		reclaimer: reclaimer,
		logger:    logger,
		now:       time.Now,
	}
}

// Join admits connID into roomID under displayName, creating the room if
// absent. A participant matching by connection identity or by display name is
// evicted first, so a rejoin replaces rather than duplicates the prior seat.
//
// Postcondition: On success the room holds the caller as a connected
// participant, every member received a room-update, and both-players-joined
// was broadcast iff the join transitioned the room from one seat to two.
// Returns ErrInvalidInput for an empty trimmed name, ErrRoomFull when two
// distinct valid seats already exist.
func (c *Coordinator) Join(roomID, connID, displayName string) error {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return fmt.Errorf("%w: display name must not be empty", ErrInvalidInput)
	}

	var (
		deliveries []relay.Delivery
		full       bool
	)
	c.store.MutateOrCreate(roomID, func(rm *Room) {
		seatsBefore := rm.Size()
		rm.removeMatching(connID, name)
		if rm.Size() >= MaxSeats {
			full = true
			return
		}

		rm.participants = append(rm.participants, &Participant{
			ConnID:    connID,
			Name:      name,
			Connected: true,
			JoinedAt:  c.now(),
		})

		update := protocol.RoomUpdate{Players: rm.Statuses()}
		for _, p := range rm.participants {
			deliveries = append(deliveries, relay.Delivery{
				ConnID: p.ConnID,
				Event:  relay.Event{Name: protocol.EventRoomUpdate, Payload: update},
			})
		}

		// Edge-triggered on the 1→2 seat transition. A rejoin that holds the
		// room at two seats does not re-fire.
		if seatsBefore == 1 && rm.Size() == MaxSeats {
			for _, p := range rm.participants {
				deliveries = append(deliveries, relay.Delivery{
					ConnID: p.ConnID,
					Event:  relay.Event{Name: protocol.EventBothPlayersJoined},
				})
			}
		}
	})

	if full {
		return fmt.Errorf("%w: room %q already has %d players", ErrRoomFull, roomID, MaxSeats)
	}

	c.logger.Info("player joined",
		zap.String("room_id", roomID),
		zap.String("conn_id", connID),
		zap.String("player", name),
	)
	c.relay.Deliver(deliveries...)
	return nil
}

// Progress relays a progress index from connID to every other connected
// member of roomID. No state is mutated. Unknown rooms and non-members are
// silent no-ops: this is a best-effort relay, not a guaranteed channel.
func (c *Coordinator) Progress(roomID, connID string, index int) {
	var deliveries []relay.Delivery
	c.store.View(roomID, func(rm *Room) {
		if rm.find(connID) == nil {
			return
		}
		payload := protocol.OpponentProgress{
			Index:     index,
			Timestamp: c.now().UnixMilli(),
		}
		for _, p := range rm.participants {
			if p.ConnID == connID || !p.Connected {
				continue
			}
			deliveries = append(deliveries, relay.Delivery{
				ConnID: p.ConnID,
				Event:  relay.Event{Name: protocol.EventOpponentProgress, Payload: payload},
			})
		}
	})
	c.relay.Deliver(deliveries...)
}

// Finish stores the caller's result payload and relays it to the opponent,
// but only while the opponent is connected. A disconnected opponent receives
// nothing now and the full room state on any future rejoin instead. Unknown
// rooms and non-members are silent no-ops.
func (c *Coordinator) Finish(roomID, connID string, result json.RawMessage) {
	var deliveries []relay.Delivery
	c.store.Mutate(roomID, func(rm *Room) {
		caller := rm.find(connID)
		if caller == nil {
			return
		}
		caller.Result = result

		opponent := rm.opponentOf(connID)
		if opponent == nil || !opponent.Connected {
			return
		}
		deliveries = append(deliveries, relay.Delivery{
			ConnID: opponent.ConnID,
			Event:  relay.Event{Name: protocol.EventOpponentFinished, Payload: result},
		})
	})

	if len(deliveries) > 0 {
		c.logger.Debug("result relayed",
			zap.String("room_id", roomID),
			zap.String("conn_id", connID),
		)
	}
	c.relay.Deliver(deliveries...)
}

// Disconnect marks connID disconnected in every room that holds it. The
// participant's seat, identity, and stored result are retained; the first
// remaining connected member in join order receives opponent-disconnected.
// Reclamation is armed for every affected room regardless of remaining
// connections; the check re-validates at fire time.
func (c *Coordinator) Disconnect(connID string) {
	var (
		deliveries []relay.Delivery
		affected   []string
	)
	c.store.ForEach(func(roomID string, rm *Room) {
		p := rm.find(connID)
		if p == nil || !p.Connected {
			return
		}
		p.Connected = false
		affected = append(affected, roomID)

		if remaining := rm.firstConnected(); remaining != nil {
			deliveries = append(deliveries, relay.Delivery{
				ConnID: remaining.ConnID,
				Event:  relay.Event{Name: protocol.EventOpponentDisconnected},
			})
		}
	})

	now := c.now()
	for _, roomID := range affected {
		c.reclaimer.Arm(roomID, now)
		c.logger.Info("player disconnected",
			zap.String("room_id", roomID),
			zap.String("conn_id", connID),
		)
	}
	c.relay.Deliver(deliveries...)
}

// SetClock overrides the coordinator's time source. Test hook.
func (c *Coordinator) SetClock(now func() time.Time) {
	c.now = now
}
