package core

import "time"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventConnected hands a new client its session id.
	EventConnected EventKind = iota
	// EventRoomCreated confirms a created room to its creator.
	EventRoomCreated
	// EventRoomJoined confirms a join to the joiner.
	EventRoomJoined
	// EventRoomLeft confirms a leave to the leaver.
	EventRoomLeft
	// EventNameSet confirms a rename to the renamed client.
	EventNameSet
	// EventChatMessage carries a chat message to the other room members.
	EventChatMessage
	// EventUserJoined notifies room members about a new member.
	EventUserJoined
	// EventUserLeft notifies room members about a member that left or disconnected.
	EventUserLeft
	// EventUserRenamed notifies room members about a member's new name.
	EventUserRenamed
	// EventError notifies a client about a rejected request.
	EventError
)

var eventKindNames = [...]string{
	EventConnected:   "connected",
	EventRoomCreated: "room_created",
	EventRoomJoined:  "room_joined",
	EventRoomLeft:    "room_left",
	EventNameSet:     "name_set",
	EventChatMessage: "chat_message",
	EventUserJoined:  "user_joined",
	EventUserLeft:    "user_left",
	EventUserRenamed: "user_renamed",
	EventError:       "error",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return "unknown"
	}
	return eventKindNames[k]
}

// Event is sent to clients to describe what happened in the system.
// A broadcast shares one *Event between all recipients; it must not be modified
// after the Router returned it.
type Event struct {
	Kind       EventKind
	ClientID   SessionID // EventConnected
	Room       RoomID
	SenderID   SessionID
	SenderName string
	Message    string
	Timestamp  time.Time
	Error      *CoreError // EventError
}

// Delivery instructs the transport to hand Event to the session To.
type Delivery struct {
	To    SessionID
	Event *Event
}

func reply(to SessionID, ev *Event) []Delivery {
	return []Delivery{{To: to, Event: ev}}
}

func errorEvent(code, msg string) *Event {
	return &Event{Kind: EventError, Error: coreError(code, msg)}
}

// fanout addresses ev to every member except the excluded session.
func fanout(members []SessionID, ev *Event, except SessionID) []Delivery {
	out := make([]Delivery, 0, len(members))
	for _, id := range members {
		if id == except {
			continue
		}
		out = append(out, Delivery{To: id, Event: ev})
	}
	return out
}
