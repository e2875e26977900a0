package core

import (
	"strings"
	"time"

	"github.com/vovakirdan/roomrelay/internal/utils"
)

// DefaultName is the display name of a session that never set one.
const DefaultName = "Anonymous"

// Session is the server-side record of one connected client.
type Session struct {
	ID          SessionID
	Name        string
	Room        RoomID // empty when not in a room
	ConnectedAt time.Time
}

// InRoom reports whether the session currently belongs to a room.
func (s Session) InRoom() bool {
	return s.Room != ""
}

// Registry owns the session records of all open connections.
//
// Registry does not touch room membership. Removing a session that is still in a
// room leaves a dangling member in the Directory, so callers leave the room first.
// Registry is not safe for concurrent use; the Hub serializes access.
type Registry struct {
	sessions map[SessionID]*Session
	ids      *issuer
	gen      func() string
	now      func() time.Time
}

// NewRegistry builds a standalone registry with UUID session ids.
func NewRegistry() *Registry {
	return newRegistry(newIssuer(), utils.NewSessionID, time.Now)
}

func newRegistry(ids *issuer, gen func() string, now func() time.Time) *Registry {
	return &Registry{
		sessions: make(map[SessionID]*Session),
		ids:      ids,
		gen:      gen,
		now:      now,
	}
}

// Register allocates a session with the default name and no room.
func (r *Registry) Register() SessionID {
	id := SessionID(r.ids.issue(r.gen))
	r.sessions[id] = &Session{
		ID:          id,
		Name:        DefaultName,
		ConnectedAt: r.now(),
	}
	return id
}

// SetName updates the display name. Surrounding whitespace is trimmed and a blank
// name is rejected without touching the session.
func (r *Registry) SetName(id SessionID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	sess, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.Name = name
	return nil
}

// Unregister removes the session. It returns false if the session was already gone.
func (r *Registry) Unregister(id SessionID) bool {
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Lookup returns a copy of the session record.
func (r *Registry) Lookup(id SessionID) (Session, error) {
	sess, ok := r.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return *sess, nil
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}

func (r *Registry) assignRoom(id SessionID, room RoomID) error {
	sess, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.Room = room
	return nil
}

func (r *Registry) clearRoom(id SessionID) {
	if sess, ok := r.sessions[id]; ok {
		sess.Room = ""
	}
}

// clear drops every session but keeps the issuer, so ids stay unique after a reset.
func (r *Registry) clear() {
	r.sessions = make(map[SessionID]*Session)
}
