package core

import (
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/vovakirdan/roomrelay/internal/utils"
)

// Directory owns the active rooms. Rooms hold session ids only; the sessions
// themselves belong to the Registry.
type Directory struct {
	rooms map[RoomID]*Room
	ids   *issuer
	gen   func() string
	now   func() time.Time
}

// NewDirectory builds a standalone directory with short UUID-derived room ids.
func NewDirectory() *Directory {
	return newDirectory(newIssuer(), utils.NewRoomID, time.Now)
}

func newDirectory(ids *issuer, gen func() string, now func() time.Time) *Directory {
	return &Directory{
		rooms: make(map[RoomID]*Room),
		ids:   ids,
		gen:   gen,
		now:   now,
	}
}

// CreateRoom allocates an empty room under a fresh id.
func (d *Directory) CreateRoom() RoomID {
	id := RoomID(d.ids.issue(d.gen))
	d.rooms[id] = newRoom(id, d.now())
	return id
}

// JoinRoom adds the session to an existing room. It never creates rooms.
func (d *Directory) JoinRoom(room RoomID, session SessionID) error {
	r, ok := d.rooms[room]
	if !ok {
		return ErrRoomNotFound
	}
	r.addMember(session)
	return nil
}

// LeaveRoom removes the session from the room and deletes the room once it is empty.
// deleted reports whether the room was removed.
func (d *Directory) LeaveRoom(room RoomID, session SessionID) (deleted bool, err error) {
	r, ok := d.rooms[room]
	if !ok {
		return false, ErrRoomNotFound
	}
	if !r.removeMember(session) {
		return false, ErrNotAMember
	}
	if r.Empty() {
		delete(d.rooms, room)
		return true, nil
	}
	return false, nil
}

// MembersOf returns the room's members sorted by id.
func (d *Directory) MembersOf(room RoomID) ([]SessionID, error) {
	r, ok := d.rooms[room]
	if !ok {
		return nil, ErrRoomNotFound
	}
	members := lo.Keys(r.members)
	slices.Sort(members)
	return members, nil
}

// Exists reports whether the room is active.
func (d *Directory) Exists(room RoomID) bool {
	_, ok := d.rooms[room]
	return ok
}

// Len returns the number of active rooms.
func (d *Directory) Len() int {
	return len(d.rooms)
}

func (d *Directory) clear() {
	d.rooms = make(map[RoomID]*Room)
}
