package core

import "time"

// Room groups the sessions that receive each other's messages.
// Members are session ids only; delivery handles live in the Hub.
type Room struct {
	ID        RoomID
	CreatedAt time.Time
	members   map[SessionID]struct{}
}

func newRoom(id RoomID, createdAt time.Time) *Room {
	return &Room{
		ID:        id,
		CreatedAt: createdAt,
		members:   make(map[SessionID]struct{}),
	}
}

// addMember inserts a session into the room. Returns true if newly added.
func (r *Room) addMember(id SessionID) bool {
	if _, exists := r.members[id]; exists {
		return false
	}
	r.members[id] = struct{}{}
	return true
}

// removeMember deletes a session from the room. Returns true if removed.
func (r *Room) removeMember(id SessionID) bool {
	if _, exists := r.members[id]; !exists {
		return false
	}
	delete(r.members, id)
	return true
}

// HasMember reports whether the session belongs to the room.
func (r *Room) HasMember(id SessionID) bool {
	_, ok := r.members[id]
	return ok
}

// Empty returns true if no sessions are in the room.
func (r *Room) Empty() bool {
	return len(r.members) == 0
}
