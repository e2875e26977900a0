package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay/internal/utils"
)

// Router is the protocol state machine. It owns the Registry and the Directory and
// turns every command into delivery instructions without sending anything itself.
//
// Router is not safe for concurrent use. Each call runs to completion and leaves
// sessions and rooms consistent; Hub is the single goroutine that drives it.
type Router struct {
	sessions *Registry
	rooms    *Directory
	now      func() time.Time
	log      *zerolog.Logger

	newSessionID func() string
	newRoomID    func() string
}

// RouterOption customizes a Router.
type RouterOption func(*Router)

// WithLogger sets the router logger.
func WithLogger(logger *zerolog.Logger) RouterOption {
	return func(r *Router) {
		if logger != nil {
			r.log = logger
		}
	}
}

// WithClock replaces the clock used for event timestamps.
func WithClock(now func() time.Time) RouterOption {
	return func(r *Router) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerators replaces the session and room id generators.
func WithIDGenerators(session, room func() string) RouterOption {
	return func(r *Router) {
		if session != nil {
			r.newSessionID = session
		}
		if room != nil {
			r.newRoomID = room
		}
	}
}

// NewRouter creates a router with empty state.
func NewRouter(opts ...RouterOption) *Router {
	nop := zerolog.Nop()
	r := &Router{
		now:          time.Now,
		log:          &nop,
		newSessionID: utils.NewSessionID,
		newRoomID:    utils.NewRoomID,
	}
	for _, opt := range opts {
		opt(r)
	}

	ids := newIssuer()
	r.sessions = newRegistry(ids, r.newSessionID, r.now)
	r.rooms = newDirectory(ids, r.newRoomID, r.now)
	return r
}

// Connect registers a new session and greets it with its id.
func (r *Router) Connect() (SessionID, []Delivery) {
	id := r.sessions.Register()
	r.log.Debug().Str("session_id", string(id)).Msg("session registered")
	return id, reply(id, &Event{Kind: EventConnected, ClientID: id})
}

// Handle applies one command from the given session.
func (r *Router) Handle(id SessionID, cmd Command) []Delivery {
	sess, err := r.sessions.Lookup(id)
	if err != nil {
		// Repeated disconnects are expected; anything else from a stranger is noise.
		if _, ok := cmd.(Disconnect); !ok {
			r.log.Debug().Str("session_id", string(id)).Str("command", CommandName(cmd)).Msg("command from unknown session ignored")
		}
		return nil
	}

	switch c := cmd.(type) {
	case CreateRoom:
		return r.createRoom(sess, c)
	case JoinRoom:
		return r.joinRoom(sess, c)
	case LeaveRoom:
		return r.leaveRoom(sess)
	case SendMessage:
		return r.sendMessage(sess, c)
	case SetName:
		return r.setName(sess, c)
	case Disconnect:
		return r.disconnect(sess)
	default:
		r.log.Warn().Str("session_id", string(id)).Str("command", fmt.Sprintf("%T", cmd)).Msg("unknown command ignored")
		return nil
	}
}

func (r *Router) createRoom(sess Session, cmd CreateRoom) []Delivery {
	if sess.InRoom() {
		return reply(sess.ID, errorEvent(ErrCodeAlreadyInRoom, "Already in a room"))
	}

	sess = r.applySenderName(sess, cmd.SenderName)
	roomID := r.rooms.CreateRoom()
	if err := r.enter(sess.ID, roomID); err != nil {
		r.log.Error().Err(err).Str("session_id", string(sess.ID)).Str("room_id", string(roomID)).Msg("enter created room")
		return nil
	}

	r.log.Info().Str("session_id", string(sess.ID)).Str("room_id", string(roomID)).Msg("room created")
	return reply(sess.ID, &Event{Kind: EventRoomCreated, Room: roomID})
}

func (r *Router) joinRoom(sess Session, cmd JoinRoom) []Delivery {
	if !r.rooms.Exists(cmd.RoomID) {
		return reply(sess.ID, errorEvent(ErrCodeRoomNotFound, "Room not found"))
	}
	if sess.InRoom() {
		return reply(sess.ID, errorEvent(ErrCodeAlreadyInRoom, "Already in a room"))
	}

	members, err := r.rooms.MembersOf(cmd.RoomID)
	if err != nil {
		return reply(sess.ID, errorEvent(ErrCodeRoomNotFound, "Room not found"))
	}

	sess = r.applySenderName(sess, cmd.SenderName)
	if err := r.enter(sess.ID, cmd.RoomID); err != nil {
		r.log.Error().Err(err).Str("session_id", string(sess.ID)).Str("room_id", string(cmd.RoomID)).Msg("enter room")
		return nil
	}

	notice := &Event{
		Kind:       EventUserJoined,
		Room:       cmd.RoomID,
		SenderID:   sess.ID,
		SenderName: sess.Name,
		Message:    sess.Name + " joined the room",
		Timestamp:  r.now(),
	}

	out := make([]Delivery, 0, len(members)+1)
	out = append(out, Delivery{To: sess.ID, Event: &Event{Kind: EventRoomJoined, Room: cmd.RoomID}})
	out = append(out, fanout(members, notice, sess.ID)...)
	return out
}

func (r *Router) leaveRoom(sess Session) []Delivery {
	if !sess.InRoom() {
		return reply(sess.ID, errorEvent(ErrCodeNotInRoom, "Not in a room"))
	}
	return r.leave(sess, true)
}

func (r *Router) sendMessage(sess Session, cmd SendMessage) []Delivery {
	if !sess.InRoom() {
		return reply(sess.ID, errorEvent(ErrCodeNotInRoom, "Not in a room"))
	}
	if cmd.RoomID != sess.Room {
		return reply(sess.ID, errorEvent(ErrCodeNotInRoom, "Not a member of that room"))
	}
	if strings.TrimSpace(cmd.Text) == "" {
		r.log.Debug().Str("session_id", string(sess.ID)).Msg("blank chat message dropped")
		return nil
	}

	members, err := r.rooms.MembersOf(sess.Room)
	if err != nil {
		r.log.Error().Err(err).Str("session_id", string(sess.ID)).Str("room_id", string(sess.Room)).Msg("session points at missing room")
		return nil
	}

	return fanout(members, &Event{
		Kind:       EventChatMessage,
		Room:       sess.Room,
		SenderID:   sess.ID,
		SenderName: sess.Name,
		Message:    cmd.Text,
		Timestamp:  r.now(),
	}, sess.ID)
}

func (r *Router) setName(sess Session, cmd SetName) []Delivery {
	oldName := sess.Name
	if err := r.sessions.SetName(sess.ID, cmd.Name); err != nil {
		if errors.Is(err, ErrEmptyName) {
			return reply(sess.ID, errorEvent(ErrCodeInvalidName, "Name must not be empty"))
		}
		return nil
	}
	updated, err := r.sessions.Lookup(sess.ID)
	if err != nil {
		return nil
	}

	out := reply(sess.ID, &Event{Kind: EventNameSet, SenderName: updated.Name})
	if !updated.InRoom() {
		return out
	}

	members, err := r.rooms.MembersOf(updated.Room)
	if err != nil {
		return out
	}
	return append(out, fanout(members, &Event{
		Kind:       EventUserRenamed,
		Room:       updated.Room,
		SenderID:   updated.ID,
		SenderName: updated.Name,
		Message:    fmt.Sprintf("%s changed their name to %s", oldName, updated.Name),
		Timestamp:  r.now(),
	}, updated.ID)...)
}

func (r *Router) disconnect(sess Session) []Delivery {
	var out []Delivery
	if sess.InRoom() {
		out = r.leave(sess, false)
	}
	r.sessions.Unregister(sess.ID)
	r.log.Debug().Str("session_id", string(sess.ID)).Msg("session unregistered")
	return out
}

// leave removes the session from its room on both sides, notifies the remaining
// members and optionally confirms to the leaver.
func (r *Router) leave(sess Session, confirm bool) []Delivery {
	roomID := sess.Room
	deleted, err := r.rooms.LeaveRoom(roomID, sess.ID)
	if err != nil {
		r.log.Error().Err(err).Str("session_id", string(sess.ID)).Str("room_id", string(roomID)).Msg("leave room")
	}
	r.sessions.clearRoom(sess.ID)

	var out []Delivery
	if err == nil && !deleted {
		members, _ := r.rooms.MembersOf(roomID)
		out = fanout(members, &Event{
			Kind:       EventUserLeft,
			Room:       roomID,
			SenderID:   sess.ID,
			SenderName: sess.Name,
			Message:    sess.Name + " left the room",
			Timestamp:  r.now(),
		}, sess.ID)
	}
	if deleted {
		r.log.Info().Str("room_id", string(roomID)).Msg("room closed")
	}
	if confirm {
		out = append(out, Delivery{To: sess.ID, Event: &Event{Kind: EventRoomLeft, Room: roomID}})
	}
	return out
}

// enter adds the session to the room on both sides or on neither.
func (r *Router) enter(id SessionID, room RoomID) error {
	if err := r.rooms.JoinRoom(room, id); err != nil {
		return err
	}
	if err := r.sessions.assignRoom(id, room); err != nil {
		if deleted, leaveErr := r.rooms.LeaveRoom(room, id); leaveErr == nil && deleted {
			r.log.Debug().Str("room_id", string(room)).Msg("rolled back empty room")
		}
		return err
	}
	return nil
}

func (r *Router) applySenderName(sess Session, name string) Session {
	if strings.TrimSpace(name) == "" {
		return sess
	}
	if err := r.sessions.SetName(sess.ID, name); err != nil {
		return sess
	}
	if updated, err := r.sessions.Lookup(sess.ID); err == nil {
		return updated
	}
	return sess
}

// Stats is a point-in-time view of the router's state.
type Stats struct {
	Sessions int
	Rooms    int
}

// Stats returns the current session and room counts.
func (r *Router) Stats() Stats {
	return Stats{Sessions: r.sessions.Len(), Rooms: r.rooms.Len()}
}

// Session returns a copy of a session record.
func (r *Router) Session(id SessionID) (Session, error) {
	return r.sessions.Lookup(id)
}

// Members returns the members of an active room.
func (r *Router) Members(room RoomID) ([]SessionID, error) {
	return r.rooms.MembersOf(room)
}

// Reset drops all sessions and rooms. Issued ids stay reserved.
func (r *Router) Reset() {
	r.sessions.clear()
	r.rooms.clear()
}

// CheckConsistency verifies that sessions and rooms agree with each other and that
// no empty room is retained.
func (r *Router) CheckConsistency() error {
	var errs []error
	for id, sess := range r.sessions.sessions {
		if !sess.InRoom() {
			continue
		}
		room, ok := r.rooms.rooms[sess.Room]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: session %s points at missing room %s", ErrInconsistent, id, sess.Room))
			continue
		}
		if !room.HasMember(id) {
			errs = append(errs, fmt.Errorf("%w: session %s not listed in room %s", ErrInconsistent, id, sess.Room))
		}
	}
	for id, room := range r.rooms.rooms {
		if room.Empty() {
			errs = append(errs, fmt.Errorf("%w: room %s is empty", ErrInconsistent, id))
		}
		for member := range room.members {
			sess, ok := r.sessions.sessions[member]
			if !ok {
				errs = append(errs, fmt.Errorf("%w: room %s lists unknown session %s", ErrInconsistent, id, member))
				continue
			}
			if sess.Room != id {
				errs = append(errs, fmt.Errorf("%w: room %s lists session %s which is in %q", ErrInconsistent, id, member, sess.Room))
			}
		}
	}
	return errors.Join(errs...)
}
