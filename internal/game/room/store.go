package room

import "sync"

// Store owns the mapping from room identifier to Room. All room mutations are
// funneled through it so that two events targeting the same room never
// interleave their read-modify-write sequences.
// All methods are safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		rooms: make(map[string]*Room),
	}
}

// MutateOrCreate runs fn on the room for roomID under the store's write lock,
// creating an empty room first if absent. Never fails.
//
// Precondition: fn must not call back into the Store.
func (s *Store) MutateOrCreate(roomID string, fn func(*Room)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rm, ok := s.rooms[roomID]
	if !ok {
		rm = &Room{}
		s.rooms[roomID] = rm
	}
	fn(rm)
}

// Mutate runs fn on the room for roomID under the store's write lock.
// Returns false without calling fn when the room is absent.
//
// Precondition: fn must not call back into the Store.
func (s *Store) Mutate(roomID string, fn func(*Room)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rm, ok := s.rooms[roomID]
	if !ok {
		return false
	}
	fn(rm)
	return true
}

// View runs fn on the room for roomID under the store's read lock.
// Returns false without calling fn when the room is absent.
//
// Precondition: fn must not mutate the room or call back into the Store.
func (s *Store) View(roomID string, fn func(*Room)) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rm, ok := s.rooms[roomID]
	if !ok {
		return false
	}
	fn(rm)
	return true
}

// Contains reports whether roomID is present.
func (s *Store) Contains(roomID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[roomID]
	return ok
}

// Delete removes the room unconditionally. No-op if absent.
func (s *Store) Delete(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomID)
}

// DeleteIf removes the room iff it exists and pred returns true, atomically
// with respect to all other room mutations.
//
// Precondition: pred must not call back into the Store.
// Postcondition: Returns true iff the room was deleted.
func (s *Store) DeleteIf(roomID string, pred func(*Room) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rm, ok := s.rooms[roomID]
	if !ok || !pred(rm) {
		return false
	}
	delete(s.rooms, roomID)
	return true
}

// ForEach applies fn to every room, each under the store's write lock. The
// key set is snapshotted first, so rooms created or deleted mid-iteration are
// tolerated; rooms deleted before their visit are skipped.
//
// Precondition: fn must not call back into the Store; in particular it must
// not delete the room it is visiting.
func (s *Store) ForEach(fn func(roomID string, r *Room)) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.mu.Lock()
		rm, ok := s.rooms[id]
		if ok {
			fn(id, rm)
		}
		s.mu.Unlock()
	}
}

// Counts returns the number of rooms and the total number of participants.
// Read-only; used by the health surface.
func (s *Store) Counts() (rooms, participants int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms = len(s.rooms)
	for _, rm := range s.rooms {
		participants += len(rm.participants)
	}
	return rooms, participants
}
