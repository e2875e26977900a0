package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/roomrelay/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

type peer struct {
	name string
	conn *websocket.Conn
	id   string
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	alice, err := connect(ctx, *addr, "alice")
	if err != nil {
		return err
	}
	defer alice.conn.Close(websocket.StatusNormalClosure, "bye")

	bob, err := connect(ctx, *addr, "bob")
	if err != nil {
		return err
	}
	defer bob.conn.Close(websocket.StatusNormalClosure, "bye")

	if err := alice.send(ctx, proto.Inbound{Type: proto.InboundTypeCreateRoom, SenderName: alice.name}); err != nil {
		return err
	}
	created, err := alice.await(ctx, proto.OutboundTypeRoomCreated)
	if err != nil {
		return err
	}
	room := created.RoomID

	if err := bob.send(ctx, proto.Inbound{Type: proto.InboundTypeJoinRoom, RoomID: room, SenderName: bob.name}); err != nil {
		return err
	}
	if _, err := bob.await(ctx, proto.OutboundTypeRoomJoined); err != nil {
		return err
	}
	if _, err := alice.await(ctx, proto.OutboundTypeUserJoined); err != nil {
		return err
	}

	if err := bob.send(ctx, proto.Inbound{Type: proto.InboundTypeChatMessage, RoomID: room, Message: *text}); err != nil {
		return err
	}
	msg, err := alice.await(ctx, proto.OutboundTypeChatMessage)
	if err != nil {
		return err
	}
	if msg.SenderID != bob.id || msg.Message != *text {
		return fmt.Errorf("unexpected chat message: %+v", msg)
	}

	if err := bob.conn.Close(websocket.StatusNormalClosure, "bye"); err != nil {
		return fmt.Errorf("close bob: %w", err)
	}
	if _, err := alice.await(ctx, proto.OutboundTypeUserLeft); err != nil {
		return err
	}

	fmt.Println("smoke test passed")
	return nil
}

func connect(ctx context.Context, addr, name string) (*peer, error) {
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", name, err)
	}
	p := &peer{name: name, conn: conn}
	hello, err := p.await(ctx, proto.OutboundTypeConnected)
	if err != nil {
		conn.Close(websocket.StatusNormalClosure, "bye")
		return nil, err
	}
	p.id = hello.ClientID
	return p, nil
}

func (p *peer) send(ctx context.Context, msg proto.Inbound) error {
	if err := wsjson.Write(ctx, p.conn, msg); err != nil {
		return fmt.Errorf("%s send %s: %w", p.name, msg.Type, err)
	}
	return nil
}

// await reads frames until one of type typ arrives. An error frame aborts.
func (p *peer) await(ctx context.Context, typ string) (proto.Outbound, error) {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, p.conn, &outbound); err != nil {
			return outbound, fmt.Errorf("%s read: %w", p.name, err)
		}
		fmt.Printf("%s <- type=%s room=%s sender=%s message=%q\n",
			p.name, outbound.Type, outbound.RoomID, outbound.SenderName, outbound.Message)

		switch outbound.Type {
		case typ:
			return outbound, nil
		case proto.OutboundTypeError:
			return outbound, fmt.Errorf("%s got error %s: %s", p.name, outbound.Code, outbound.Message)
		}
	}
}
