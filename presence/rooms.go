// Package presence implements the shared-cursor feed: clients are grouped into small
// rooms, each client publishes its cursor hit point and receives the hit points of
// everyone in its room.
package presence

import (
	"errors"
	"fmt"
	"sync"
)

// DefaultRoomSize is the member cap of a room when none is configured.
const DefaultRoomSize = 3

// ErrRoomNotFound is returned when a room index or member id is not known.
var ErrRoomNotFound = errors.New("room not found")

// Rooms assigns members to rooms first-fit. Room indices are stable: a room emptied by
// departures keeps its index and is refilled before any new room is created.
// Safe for concurrent use.
type Rooms struct {
	mu       sync.Mutex
	capacity int
	rooms    [][]string
	members  map[string]int
}

// NewRooms creates an empty room set. A capacity below 1 falls back to DefaultRoomSize.
//
// Parameters:
//   - capacity: maximum members per room
//
// Returns:
//   - *Rooms: the room set
func NewRooms(capacity int) *Rooms {
	if capacity < 1 {
		capacity = DefaultRoomSize
	}
	return &Rooms{
		capacity: capacity,
		members:  make(map[string]int),
	}
}

// Capacity returns the member cap of each room.
func (r *Rooms) Capacity() int {
	return r.capacity
}

// Join places id into the lowest-indexed room with space, creating a room when all are
// full. Joining twice returns the existing placement.
//
// Parameters:
//   - id: the member id
//
// Returns:
//   - room: the room index
//   - ordinal: the member's position within the room at join time
func (r *Rooms) Join(id string) (room, ordinal int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.members[id]; ok {
		for i, m := range r.rooms[idx] {
			if m == id {
				return idx, i
			}
		}
	}

	room = len(r.rooms)
	for i, members := range r.rooms {
		if len(members) < r.capacity {
			room = i
			break
		}
	}
	if room == len(r.rooms) {
		r.rooms = append(r.rooms, make([]string, 0, r.capacity))
	}
	ordinal = len(r.rooms[room])
	r.rooms[room] = append(r.rooms[room], id)
	r.members[id] = room
	return room, ordinal
}

// Leave removes id from its room. Only that room changes.
//
// Parameters:
//   - id: the member id
//
// Returns:
//   - int: the room the member left
//   - error: ErrRoomNotFound if id is not a member of any room
func (r *Rooms) Leave(id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.members[id]
	if !ok {
		return 0, fmt.Errorf("%w: member %q", ErrRoomNotFound, id)
	}
	delete(r.members, id)
	members := r.rooms[room]
	for i, m := range members {
		if m == id {
			r.rooms[room] = append(members[:i], members[i+1:]...)
			break
		}
	}
	return room, nil
}

// RoomOf returns the room holding id.
func (r *Rooms) RoomOf(id string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.members[id]
	return room, ok
}

// Members returns a copy of the member ids of a room in join order.
//
// Parameters:
//   - room: the room index
//
// Returns:
//   - []string: member ids
//   - error: ErrRoomNotFound if the room was never created
func (r *Rooms) Members(room int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room < 0 || room >= len(r.rooms) {
		return nil, fmt.Errorf("%w: %d", ErrRoomNotFound, room)
	}
	return append([]string(nil), r.rooms[room]...), nil
}

// Occupancy returns the number of members in a room, 0 for unknown rooms.
func (r *Rooms) Occupancy(room int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room < 0 || room >= len(r.rooms) {
		return 0
	}
	return len(r.rooms[room])
}

// Total returns the number of members across all rooms.
func (r *Rooms) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Len returns the number of rooms ever created.
func (r *Rooms) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}
