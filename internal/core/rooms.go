package core

import (
	"sync"

	"github.com/rs/zerolog"
)

// Room groups the connection ids subscribed to one channel. Membership is
// a set keyed by connection id; the room never touches the transport.
type Room struct {
	ID string

	mu      sync.Mutex
	members map[string]struct{}
}

func newRoom(id string) *Room {
	return &Room{
		ID:      id,
		members: make(map[string]struct{}),
	}
}

// Directory owns the set of active in-memory rooms. A room exists exactly
// while it has at least one member; the last leave removes it.
type Directory struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	registry *Registry
	log      *zerolog.Logger
}

// NewDirectory builds an empty room directory delivering through reg.
func NewDirectory(reg *Registry, logger *zerolog.Logger) *Directory {
	return &Directory{
		rooms:    make(map[string]*Room),
		registry: reg,
		log:      logger,
	}
}

// ensureRoom returns the room, creating it atomically if absent.
func (d *Directory) ensureRoom(roomID string) *Room {
	d.mu.RLock()
	room, ok := d.rooms[roomID]
	d.mu.RUnlock()
	if ok {
		return room
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if room, ok = d.rooms[roomID]; ok {
		return room
	}
	room = newRoom(roomID)
	d.rooms[roomID] = room
	d.log.Debug().Str("room_id", roomID).Msg("room opened")
	return room
}

// Join adds the connection to the room, creating the room if needed.
// Re-joining is a no-op; the return value reports prior membership so the
// caller can acknowledge either way.
func (d *Directory) Join(roomID, connID string) (alreadyMember bool) {
	for {
		room := d.ensureRoom(roomID)

		room.mu.Lock()
		_, alreadyMember = room.members[connID]
		if !alreadyMember {
			room.members[connID] = struct{}{}
		}
		room.mu.Unlock()

		// A concurrent last-leave may have reaped the room between ensure
		// and the membership write; retry against a fresh room if so.
		d.mu.RLock()
		current := d.rooms[roomID] == room
		d.mu.RUnlock()
		if current {
			return alreadyMember
		}
	}
}

// Leave removes the connection from the room. Unknown rooms and unknown
// members are silent no-ops. The last member out deletes the room.
func (d *Directory) Leave(roomID, connID string) {
	d.mu.RLock()
	room, ok := d.rooms[roomID]
	d.mu.RUnlock()
	if !ok {
		return
	}

	room.mu.Lock()
	delete(room.members, connID)
	empty := len(room.members) == 0
	room.mu.Unlock()

	if empty {
		d.removeIfEmpty(roomID)
	}
}

// LeaveAll removes the connection from every room it belongs to, applying
// the same empty-room cleanup per room.
func (d *Directory) LeaveAll(connID string) {
	d.mu.RLock()
	snapshot := make([]*Room, 0, len(d.rooms))
	for _, room := range d.rooms {
		snapshot = append(snapshot, room)
	}
	d.mu.RUnlock()

	for _, room := range snapshot {
		room.mu.Lock()
		delete(room.members, connID)
		empty := len(room.members) == 0
		room.mu.Unlock()

		if empty {
			d.removeIfEmpty(room.ID)
		}
	}
}

// removeIfEmpty deletes the room from the directory if it still has no
// members. Re-checked under both locks so a concurrent join wins.
func (d *Directory) removeIfEmpty(roomID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[roomID]
	if !ok {
		return
	}

	room.mu.Lock()
	empty := len(room.members) == 0
	room.mu.Unlock()

	if empty {
		delete(d.rooms, roomID)
		d.log.Debug().Str("room_id", roomID).Msg("room closed")
	}
}

// Broadcast delivers an encoded frame to every member of the room through
// the registry. An unknown room is a silent no-op; it may have been
// deleted by a concurrent leave.
func (d *Directory) Broadcast(roomID string, payload []byte) {
	d.mu.RLock()
	room, ok := d.rooms[roomID]
	d.mu.RUnlock()
	if !ok {
		return
	}

	room.mu.Lock()
	members := make([]string, 0, len(room.members))
	for connID := range room.members {
		members = append(members, connID)
	}
	room.mu.Unlock()

	for _, connID := range members {
		d.registry.Send(connID, payload)
	}
}

// Contains reports whether the connection is a member of the room.
func (d *Directory) Contains(roomID, connID string) bool {
	d.mu.RLock()
	room, ok := d.rooms[roomID]
	d.mu.RUnlock()
	if !ok {
		return false
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	_, ok = room.members[connID]
	return ok
}

// RoomCount returns the number of active rooms.
func (d *Directory) RoomCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}
