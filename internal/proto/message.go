package proto

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Inbound message types.
const (
	InboundTypeCreateRoom  = "create_room"
	InboundTypeJoinRoom    = "join_room"
	InboundTypeLeaveRoom   = "leave_room"
	InboundTypeChatMessage = "chat_message"
	InboundTypeSetName     = "set_name"
)

// Outbound message types.
const (
	OutboundTypeConnected   = "connected"
	OutboundTypeRoomCreated = "room_created"
	OutboundTypeRoomJoined  = "room_joined"
	OutboundTypeRoomLeft    = "room_left"
	OutboundTypeError       = "error"
	OutboundTypeNameSet     = "name_set"
	OutboundTypeChatMessage = "chat_message"
	OutboundTypeUserJoined  = "user_joined"
	OutboundTypeUserLeft    = "user_left"
	OutboundTypeUserRenamed = "user_renamed"
)

var (
	// ErrMalformed marks frames that are not valid JSON or miss required fields.
	ErrMalformed = errors.New("malformed message")
	// ErrUnknownType marks well-formed frames with an unrecognized type tag.
	ErrUnknownType = errors.New("unknown message type")
)

// Inbound is a client frame. Only the fields relevant to Type are read;
// clients use it to build requests.
type Inbound struct {
	Type       string `json:"type"`
	RoomID     string `json:"roomId,omitempty"`
	SenderName string `json:"senderName,omitempty"`
	Message    string `json:"message,omitempty"`
}

// CreateRoomData opens a room; SenderName optionally renames the creator.
type CreateRoomData struct {
	SenderName string `json:"senderName"`
}

// JoinRoomData requests to join an existing room.
type JoinRoomData struct {
	RoomID     string `json:"roomId" validate:"required"`
	SenderName string `json:"senderName"`
}

// LeaveRoomData carries no payload.
type LeaveRoomData struct{}

// ChatMessageData is a chat message for the sender's current room. Its length
// is bounded only by the connection read limit.
type ChatMessageData struct {
	RoomID  string `json:"roomId" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// SetNameData changes the sender's display name. Blank names are rejected by
// the core with an invalid_name error, not here.
type SetNameData struct {
	SenderName string `json:"senderName"`
}

// Outbound is a server frame. Fields not used by Type are omitted.
type Outbound struct {
	Type       string `json:"type"`
	ClientID   string `json:"clientId,omitempty"`
	RoomID     string `json:"roomId,omitempty"`
	SenderID   string `json:"senderId,omitempty"`
	SenderName string `json:"senderName,omitempty"`
	Message    string `json:"message,omitempty"`
	Timestamp  int64  `json:"timestamp,omitempty"` // Unix milliseconds
	Code       string `json:"code,omitempty"`      // error frames only
}

var validate = validator.New()

// Decode parses one client frame into a pointer to its payload struct.
// Extra fields are ignored. Errors wrap ErrMalformed or ErrUnknownType.
func Decode(data []byte) (any, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var payload any
	switch envelope.Type {
	case InboundTypeCreateRoom:
		payload = &CreateRoomData{}
	case InboundTypeJoinRoom:
		payload = &JoinRoomData{}
	case InboundTypeLeaveRoom:
		payload = &LeaveRoomData{}
	case InboundTypeChatMessage:
		payload = &ChatMessageData{}
	case InboundTypeSetName:
		payload = &SetNameData{}
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, envelope.Type)
	}

	if err := json.Unmarshal(data, payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, envelope.Type, err)
	}
	if err := validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, envelope.Type, err)
	}
	return payload, nil
}
