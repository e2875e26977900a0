package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gookit/color"

	"github.com/vovakirdan/roomrelay/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

// session tracks the room the server last confirmed.
type session struct {
	mu   sync.Mutex
	room string
}

func (s *session) setRoom(room string) {
	s.mu.Lock()
	s.room = room
	s.mu.Unlock()
}

func (s *session) currentRoom() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	name := flag.String("name", "", "display name")
	room := flag.String("room", "", "room to join; a new room is created when empty")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(msg proto.Inbound) {
		if writeErr := wsjson.Write(ctx, conn, msg); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	if *room == "" {
		send(proto.Inbound{Type: proto.InboundTypeCreateRoom, SenderName: *name})
	} else {
		send(proto.Inbound{Type: proto.InboundTypeJoinRoom, RoomID: *room, SenderName: *name})
	}

	fmt.Printf("Connected to %s\n", *addr)
	fmt.Println("Type messages and press Enter to send. Commands: /name <name>, /join <room>, /create, /leave. Ctrl+C to exit.")

	state := &session{}
	go func() {
		defer cancel()
		readLoop(ctx, conn, state)
	}()

	writeLoop(ctx, state, send)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn, state *session) {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch outbound.Type {
		case proto.OutboundTypeConnected:
			color.Gray.Printf("session %s\n", outbound.ClientID)
		case proto.OutboundTypeRoomCreated:
			state.setRoom(outbound.RoomID)
			color.Green.Printf("created room %s, share it to invite others\n", outbound.RoomID)
		case proto.OutboundTypeRoomJoined:
			state.setRoom(outbound.RoomID)
			color.Green.Printf("joined room %s\n", outbound.RoomID)
		case proto.OutboundTypeRoomLeft:
			state.setRoom("")
			color.Green.Printf("left room %s\n", outbound.RoomID)
		case proto.OutboundTypeNameSet:
			color.Green.Printf("you are now %s\n", outbound.SenderName)
		case proto.OutboundTypeChatMessage:
			fmt.Printf("%s %s: %s\n", stamp(outbound.Timestamp), color.Cyan.Sprint(outbound.SenderName), outbound.Message)
		case proto.OutboundTypeUserJoined, proto.OutboundTypeUserLeft, proto.OutboundTypeUserRenamed:
			color.Yellow.Printf("%s * %s\n", stamp(outbound.Timestamp), outbound.Message)
		case proto.OutboundTypeError:
			color.Red.Printf("error %s: %s\n", outbound.Code, outbound.Message)
		default:
			fmt.Printf("type=%s %+v\n", outbound.Type, outbound)
		}
	}
}

func stamp(ms int64) string {
	if ms == 0 {
		return ""
	}
	return color.Gray.Sprint(time.UnixMilli(ms).Format("15:04:05"))
}

func writeLoop(ctx context.Context, state *session, send func(proto.Inbound)) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			send(parseLine(text, state.currentRoom()))
		}
	}
}

func parseLine(text, room string) proto.Inbound {
	cmd, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/name":
		return proto.Inbound{Type: proto.InboundTypeSetName, SenderName: arg}
	case "/join":
		return proto.Inbound{Type: proto.InboundTypeJoinRoom, RoomID: arg}
	case "/create":
		return proto.Inbound{Type: proto.InboundTypeCreateRoom}
	case "/leave":
		return proto.Inbound{Type: proto.InboundTypeLeaveRoom}
	default:
		return proto.Inbound{Type: proto.InboundTypeChatMessage, RoomID: room, Message: text}
	}
}
