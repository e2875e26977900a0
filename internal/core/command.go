package core

// Command is an action requested by a client. The set of commands is closed:
// only the types in this file implement it.
type Command interface {
	commandName() string
}

// CreateRoom opens a new room and puts the sender in it.
type CreateRoom struct {
	SenderName string // optional display name applied before entering
}

// JoinRoom enters an existing room.
type JoinRoom struct {
	RoomID     RoomID
	SenderName string // optional display name applied before entering
}

// LeaveRoom exits the sender's current room.
type LeaveRoom struct{}

// SendMessage relays a chat message to the other members of the sender's room.
type SendMessage struct {
	RoomID RoomID
	Text   string
}

// SetName changes the sender's display name.
type SetName struct {
	Name string
}

// Disconnect reports that the client's connection is gone.
type Disconnect struct{}

func (CreateRoom) commandName() string  { return "create_room" }
func (JoinRoom) commandName() string    { return "join_room" }
func (LeaveRoom) commandName() string   { return "leave_room" }
func (SendMessage) commandName() string { return "chat_message" }
func (SetName) commandName() string     { return "set_name" }
func (Disconnect) commandName() string  { return "disconnect" }

// CommandName returns the protocol name of the command, for logs and metrics.
func CommandName(cmd Command) string {
	if cmd == nil {
		return "unknown"
	}
	return cmd.commandName()
}
