package http

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/roomrelay/internal/core"
	"github.com/vovakirdan/roomrelay/internal/proto"
)

func inboundToCommand(data []byte) (core.Command, error) {
	payload, err := proto.Decode(data)
	if err != nil {
		return nil, err
	}

	switch p := payload.(type) {
	case *proto.CreateRoomData:
		return core.CreateRoom{SenderName: p.SenderName}, nil
	case *proto.JoinRoomData:
		return core.JoinRoom{RoomID: core.RoomID(p.RoomID), SenderName: p.SenderName}, nil
	case *proto.LeaveRoomData:
		return core.LeaveRoom{}, nil
	case *proto.ChatMessageData:
		return core.SendMessage{RoomID: core.RoomID(p.RoomID), Text: p.Message}, nil
	case *proto.SetNameData:
		return core.SetName{Name: p.SenderName}, nil
	default:
		return nil, fmt.Errorf("%w: %T", proto.ErrUnknownType, payload)
	}
}

// rejectReason labels a decode failure for metrics.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, proto.ErrUnknownType):
		return "unknown_type"
	case errors.Is(err, proto.ErrMalformed):
		return "malformed"
	default:
		return "other"
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventConnected:
		return proto.Outbound{Type: proto.OutboundTypeConnected, ClientID: string(event.ClientID)}
	case core.EventRoomCreated:
		return proto.Outbound{Type: proto.OutboundTypeRoomCreated, RoomID: string(event.Room)}
	case core.EventRoomJoined:
		return proto.Outbound{Type: proto.OutboundTypeRoomJoined, RoomID: string(event.Room)}
	case core.EventRoomLeft:
		return proto.Outbound{Type: proto.OutboundTypeRoomLeft, RoomID: string(event.Room)}
	case core.EventNameSet:
		return proto.Outbound{Type: proto.OutboundTypeNameSet, SenderName: event.SenderName}
	case core.EventChatMessage:
		return roomNotice(proto.OutboundTypeChatMessage, event)
	case core.EventUserJoined:
		return roomNotice(proto.OutboundTypeUserJoined, event)
	case core.EventUserLeft:
		return roomNotice(proto.OutboundTypeUserLeft, event)
	case core.EventUserRenamed:
		return roomNotice(proto.OutboundTypeUserRenamed, event)
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Code: "unknown", Message: "unknown error"}
		}
		return proto.Outbound{
			Type:    proto.OutboundTypeError,
			Code:    event.Error.Code,
			Message: event.Error.Message,
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Code: "unknown", Message: "unknown event"}
	}
}

func roomNotice(typ string, event *core.Event) proto.Outbound {
	return proto.Outbound{
		Type:       typ,
		RoomID:     string(event.Room),
		SenderID:   string(event.SenderID),
		SenderName: event.SenderName,
		Message:    event.Message,
		Timestamp:  event.Timestamp.UnixMilli(),
	}
}
