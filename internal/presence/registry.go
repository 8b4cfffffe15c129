// Package presence tracks which live connections are joined to which rooms.
//
// The Registry is the only shared mutable state of the realtime layer. Every
// operation runs under a single mutex so no two mutations interleave, and it
// never performs I/O while holding it.
package presence

import (
	"slices"
	"sync"
)

// Participant is what other members of a room see about a connection.
type Participant struct {
	ConnectionID string `json:"connection_id"`
	UserID       uint   `json:"user_id,omitempty"`
	Name         string `json:"name,omitempty"`
	Avatar       string `json:"avatar,omitempty"`
}

// Departure describes a room a removed connection was part of.
type Departure struct {
	Room      string
	Remaining int
}

type roomEntry struct {
	order   []string
	members map[string]Participant
}

type Registry struct {
	mu    sync.Mutex
	rooms map[string]*roomEntry
	// reverse index: connection -> rooms it has joined
	joined map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]*roomEntry),
		joined: make(map[string]map[string]struct{}),
	}
}

// Join adds the connection to room, or overwrites its participant info if it is
// already there. A rejoin keeps the original position in the room's order.
func (r *Registry) Join(room, connectionID string, info Participant) {
	info.ConnectionID = connectionID

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rooms[room]
	if !ok {
		entry = &roomEntry{members: make(map[string]Participant)}
		r.rooms[room] = entry
	}
	if _, exists := entry.members[connectionID]; !exists {
		entry.order = append(entry.order, connectionID)
	}
	entry.members[connectionID] = info

	rooms, ok := r.joined[connectionID]
	if !ok {
		rooms = make(map[string]struct{})
		r.joined[connectionID] = rooms
	}
	rooms[room] = struct{}{}
}

// Leave removes the connection from room and reports how many members remain.
// An emptied room is dropped entirely.
func (r *Registry) Leave(room, connectionID string) (remaining int, removed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.leaveLocked(room, connectionID)
}

func (r *Registry) leaveLocked(room, connectionID string) (int, bool) {
	entry, ok := r.rooms[room]
	if !ok {
		return 0, false
	}
	if _, ok := entry.members[connectionID]; !ok {
		return len(entry.members), false
	}

	delete(entry.members, connectionID)
	entry.order = slices.DeleteFunc(entry.order, func(id string) bool { return id == connectionID })
	if len(entry.members) == 0 {
		delete(r.rooms, room)
	}

	if rooms, ok := r.joined[connectionID]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(r.joined, connectionID)
		}
	}

	return len(entry.members), true
}

// RemoveConnection drops the connection from every room it joined. The result is
// sorted by room key.
func (r *Registry) RemoveConnection(connectionID string) []Departure {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms := make([]string, 0, len(r.joined[connectionID]))
	for room := range r.joined[connectionID] {
		rooms = append(rooms, room)
	}
	slices.Sort(rooms)

	departures := make([]Departure, 0, len(rooms))
	for _, room := range rooms {
		remaining, removed := r.leaveLocked(room, connectionID)
		if removed {
			departures = append(departures, Departure{Room: room, Remaining: remaining})
		}
	}
	return departures
}

// Snapshot returns the room's participants in join order. Unknown rooms yield an empty slice.
func (r *Registry) Snapshot(room string) []Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rooms[room]
	if !ok {
		return []Participant{}
	}

	participants := make([]Participant, 0, len(entry.order))
	for _, id := range entry.order {
		participants = append(participants, entry.members[id])
	}
	return participants
}

// RoomsOf lists the rooms a connection is currently joined to, sorted.
func (r *Registry) RoomsOf(connectionID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms := make([]string, 0, len(r.joined[connectionID]))
	for room := range r.joined[connectionID] {
		rooms = append(rooms, room)
	}
	slices.Sort(rooms)
	return rooms
}

func (r *Registry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// Clear forgets every room. Used at shutdown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms = make(map[string]*roomEntry)
	r.joined = make(map[string]map[string]struct{})
}
