package room

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultReclaimGrace is how long a fully disconnected room survives before
// it becomes eligible for deletion.
const DefaultReclaimGrace = 30 * time.Second

// reclaimEntry is a single pending reclamation check.
type reclaimEntry struct {
	roomID  string
	readyAt time.Time
}

// Reclaimer schedules and executes abandoned-room reclamation. Each armed
// check re-reads current truth at fire time rather than trusting captured
// state, so overlapping arms for the same room are redundant and safe.
// All methods are safe for concurrent use.
type Reclaimer struct {
	store  *Store
	logger *zap.Logger
	grace  time.Duration

	mu      sync.Mutex
	pending []reclaimEntry
}

// NewReclaimer creates a Reclaimer deleting rooms grace after they empty.
//
// Precondition: store and logger must be non-nil.
// Postcondition: Returns a Reclaimer; grace <= 0 falls back to DefaultReclaimGrace.
func NewReclaimer(store *Store, grace time.Duration, logger *zap.Logger) *Reclaimer {
	if grace <= 0 {
		grace = DefaultReclaimGrace
	}
	return &Reclaimer{
		store:  store,
		logger: logger,
		grace:  grace,
	}
}

// Arm schedules a reclamation check for roomID to fire at now+grace.
//
// Precondition: roomID must be non-empty; now must be a valid time.
// Postcondition: An entry is queued; multiple arms for one room may coexist.
func (r *Reclaimer) Arm(roomID string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, reclaimEntry{
		roomID:  roomID,
		readyAt: now.Add(r.grace),
	})
}

// Tick executes all checks due at now. A due check deletes its room iff the
// room still exists and every participant in it is disconnected; a room with
// any reconnected participant survives, and a check against an absent room is
// a no-op.
//
// Postcondition: Returns the number of rooms deleted by this tick.
func (r *Reclaimer) Tick(now time.Time) int {
	r.mu.Lock()
	var due []reclaimEntry
	kept := r.pending[:0]
	for _, e := range r.pending {
		if e.readyAt.After(now) {
			kept = append(kept, e)
			continue
		}
		due = append(due, e)
	}
	r.pending = kept
	r.mu.Unlock()

	deleted := 0
	for _, e := range due {
		if r.store.DeleteIf(e.roomID, (*Room).allDisconnected) {
			deleted++
			r.logger.Info("reclaimed abandoned room",
				zap.String("room_id", e.roomID),
			)
		}
	}
	return deleted
}

// PendingCount returns the number of queued checks.
func (r *Reclaimer) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Start launches the sweep goroutine and returns a stop function.
// Calling stop() is idempotent.
//
// Precondition: interval > 0.
// Postcondition: Tick runs every interval until stop() is called.
func (r *Reclaimer) Start(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	var once sync.Once
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Tick(time.Now())
			case <-done:
				return
			}
		}
	}()
	return func() {
		once.Do(func() { close(done) })
	}
}
